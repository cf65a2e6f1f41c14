package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthRoute(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}, &fakeDetector{}), "*")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected JSON content type, got %q", rr.Header().Get("Content-Type"))
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request ID header")
	}
}

func TestOpenSessionRouteValidatesBody(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}, &fakeDetector{}), "*")

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	svc := newTestService(storeWithDocument(sessionTestDoc), misspellingDetector())
	server := NewHTTPServer(svc, "*")
	handler := server.Handler()

	do := func(method, path, body string) *httptest.ResponseRecorder {
		t.Helper()
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/api/sessions", `{"documentId":"doc_1"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("open session: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var opened SessionView
	if err := json.Unmarshal(rr.Body.Bytes(), &opened); err != nil {
		t.Fatalf("parse open response: %v", err)
	}
	base := "/api/sessions/" + opened.SessionID

	rr = do(http.MethodPost, base+"/analyze", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("analyze: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var snap struct {
		Issues []struct {
			ID string `json:"id"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("parse analyze response: %v", err)
	}
	if len(snap.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(snap.Issues))
	}

	rr = do(http.MethodPost, base+"/issues/"+snap.Issues[0].ID+"/apply", `{"suggestionIndex":0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("apply: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(http.MethodPost, base+"/issues/"+snap.Issues[1].ID+"/dismiss", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dismiss: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(http.MethodGet, base+"/issues", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("issues: expected 200, got %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("parse issues response: %v", err)
	}
	if len(snap.Issues) != 0 {
		t.Fatalf("expected no issues left, got %d", len(snap.Issues))
	}

	rr = do(http.MethodDelete, base, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = do(http.MethodGet, base+"/issues", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("closed session: expected 404, got %d", rr.Code)
	}
}

func TestCreateDocumentFromMarkdownRoute(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}, &fakeDetector{}), "*")

	req := httptest.NewRequest(http.MethodPost, "/api/documents",
		strings.NewReader(`{"title":"Imported","markdown":"# Hello\n\nA *short* note."}`))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var document struct {
		PlainText string `json:"plainText"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &document); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if document.PlainText != "Hello A short note." {
		t.Errorf("plainText = %q", document.PlainText)
	}
}

func TestDeleteDocumentRoute(t *testing.T) {
	var deleted string
	fs := &fakeStore{}
	fs.deleteFn = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}
	server := NewHTTPServer(newTestService(fs, &fakeDetector{}), "*")

	req := httptest.NewRequest(http.MethodDelete, "/api/documents/doc_1", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if deleted != "doc_1" {
		t.Errorf("deleted %q, want doc_1", deleted)
	}
}

func TestUnknownRoute(t *testing.T) {
	server := NewHTTPServer(newTestService(&fakeStore{}, &fakeDetector{}), "*")

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}
