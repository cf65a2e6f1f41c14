package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"redpen/api/internal/issue"
	"redpen/api/internal/util"
)

// HTTPDetector talks to a grammar-checking API over JSON/HTTP.
type HTTPDetector struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPDetector creates a client for the detector service at baseURL.
// apiKey may be empty for unauthenticated deployments.
func NewHTTPDetector(baseURL, apiKey string) *HTTPDetector {
	return &HTTPDetector{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type checkRequest struct {
	Text    string  `json:"text"`
	Options Options `json:"options"`
}

type checkMatch struct {
	Category   string   `json:"category"`
	Offset     int      `json:"offset"`
	Length     int      `json:"length"`
	Message    string   `json:"message"`
	Context    string   `json:"context"`
	Confidence float64  `json:"confidence"`
	Rule       struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	} `json:"rule"`
	Replacements []struct {
		Value string `json:"value"`
	} `json:"replacements"`
}

type checkResponse struct {
	Matches []checkMatch `json:"matches"`
	Stats   *Stats       `json:"stats"`
}

// Detect sends text to the service and maps its matches to issues. Issue
// IDs are minted fresh on every call; cross-run identity belongs to
// fingerprints, not to these IDs.
func (d *HTTPDetector) Detect(ctx context.Context, text string, opts Options) (Report, error) {
	payload, err := json.Marshal(checkRequest{Text: text, Options: opts})
	if err != nil {
		return Report{}, fmt.Errorf("encode check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/check", bytes.NewReader(payload))
	if err != nil {
		return Report{}, fmt.Errorf("build check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("detector request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Report{}, fmt.Errorf("detector returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Report{}, fmt.Errorf("decode check response: %w", err)
	}

	report := Report{Stats: decoded.Stats, Issues: make([]issue.Issue, 0, len(decoded.Matches))}
	for _, m := range decoded.Matches {
		report.Issues = append(report.Issues, mapMatch(m, text))
	}
	return report, nil
}

func mapMatch(m checkMatch, text string) issue.Issue {
	start := m.Offset
	end := m.Offset + m.Length
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if end < start {
		end = start
	}

	suggestions := make([]string, 0, len(m.Replacements))
	for _, r := range m.Replacements {
		suggestions = append(suggestions, r.Value)
	}

	return issue.Issue{
		ID:          util.NewID("iss"),
		Type:        categoryToType(m.Category),
		Position:    issue.Position{Start: start, End: end},
		Message:     m.Message,
		Context:     m.Context,
		Suggestions: suggestions,
		Confidence:  m.Confidence,
		Rule: issue.RuleInfo{
			ID:          m.Rule.ID,
			Description: m.Rule.Description,
			Category:    m.Category,
		},
	}
}

func categoryToType(category string) issue.Type {
	switch strings.ToLower(category) {
	case "spelling", "typos", "typo":
		return issue.TypeSpelling
	case "style", "redundancy", "wordiness", "clarity":
		return issue.TypeStyle
	default:
		return issue.TypeGrammar
	}
}
