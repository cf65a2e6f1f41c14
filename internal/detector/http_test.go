package detector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"redpen/api/internal/issue"
)

func TestDetectMapsMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/check" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing api key header")
		}
		var req checkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Text != "the compay is fine" {
			t.Errorf("unexpected text %q", req.Text)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{
					"category":   "typos",
					"offset":     4,
					"length":     6,
					"message":    "Possible spelling mistake",
					"confidence": 0.92,
					"rule":       map[string]any{"id": "MORFOLOGIK_RULE", "description": "spell check"},
					"replacements": []map[string]any{
						{"value": "company"}, {"value": "compact"},
					},
				},
			},
			"stats": map[string]any{"wordCount": 4, "spellingCount": 1},
		})
	}))
	defer server.Close()

	d := NewHTTPDetector(server.URL, "secret")
	report, err := d.Detect(context.Background(), "the compay is fine", Options{Spelling: true, Language: "en-US"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(report.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(report.Issues))
	}

	iss := report.Issues[0]
	if iss.Type != issue.TypeSpelling {
		t.Errorf("type = %s, want spelling", iss.Type)
	}
	if iss.Position.Start != 4 || iss.Position.End != 10 {
		t.Errorf("position = %+v, want [4,10)", iss.Position)
	}
	if len(iss.Suggestions) != 2 || iss.Suggestions[0] != "company" {
		t.Errorf("suggestions = %v", iss.Suggestions)
	}
	if iss.ID == "" {
		t.Error("issue id should be minted")
	}
	if report.Stats == nil || report.Stats.SpellingCount != 1 {
		t.Errorf("stats = %+v", report.Stats)
	}
}

func TestDetectClampsOffsets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"category": "grammar", "offset": 3, "length": 100, "message": "m"},
			},
		})
	}))
	defer server.Close()

	d := NewHTTPDetector(server.URL, "")
	report, err := d.Detect(context.Background(), "short", Options{Grammar: true})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if report.Issues[0].Position.End != 5 {
		t.Errorf("end = %d, want clamped to 5", report.Issues[0].Position.End)
	}
}

func TestDetectServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	d := NewHTTPDetector(server.URL, "")
	if _, err := d.Detect(context.Background(), "text", Options{}); err == nil {
		t.Error("expected error for 503 response")
	}
}

func TestDetectUnreachable(t *testing.T) {
	d := NewHTTPDetector("http://127.0.0.1:1", "")
	if _, err := d.Detect(context.Background(), "text", Options{}); err == nil {
		t.Error("expected error for unreachable detector")
	}
}
