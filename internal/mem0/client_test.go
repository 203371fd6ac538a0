package mem0

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rcliao/mem0-hooks/internal/transcript"
)

func testClient(url string) *Client {
	return NewClient(Options{
		BaseURL:   url,
		APIKey:    "test-key",
		UserID:    "test-user",
		TopK:      5,
		Threshold: 0.3,
	})
}

func TestSearch_WrappedResults(t *testing.T) {
	var gotAuth string
	var gotBody searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/memories/search/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		io.WriteString(w, `{"results": [
			{"memory": "likes dark mode", "categories": ["preferences"], "score": 0.9},
			{"memory": "low relevance", "categories": [], "score": 0.1}
		]}`)
	}))
	defer srv.Close()

	records, err := testClient(srv.URL).Search(context.Background(), "editor theme")
	if err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Token test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Query != "editor theme" || gotBody.UserID != "test-user" || gotBody.Limit != 5 {
		t.Errorf("request = %+v", gotBody)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record above threshold, got %d", len(records))
	}
	if records[0].Memory != "likes dark mode" || records[0].Score != 0.9 {
		t.Errorf("records[0] = %+v", records[0])
	}
}

func TestSearch_BareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"memory": "a", "score": 0.5}, {"memory": "b", "score": 0.4}]`)
	}))
	defer srv.Close()

	records, err := testClient(srv.URL).Search(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestSearch_TopKCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"memory": "1", "score": 0.9}, {"memory": "2", "score": 0.8},
			{"memory": "3", "score": 0.7}, {"memory": "4", "score": 0.6}
		]`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, TopK: 2, Threshold: 0.3})
	records, err := c.Search(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected top-k cap of 2, got %d", len(records))
	}
	if records[0].Memory != "1" || records[1].Memory != "2" {
		t.Errorf("ordering lost: %+v", records)
	}
}

func TestSearch_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"scalar", `"nope"`},
		{"number", `42`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).Search(context.Background(), "q")
			if !errors.Is(err, ErrUnexpectedShape) {
				t.Errorf("err = %v, want ErrUnexpectedShape", err)
			}
		})
	}
}

func TestSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Search(context.Background(), "q"); err == nil {
		t.Error("expected error on 429 response")
	}
}

func TestAdd(t *testing.T) {
	var gotBody addRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/memories/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		io.WriteString(w, `{"results": []}`)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Add(context.Background(), []transcript.Message{
		{Role: "user", Content: "remember this"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotBody.UserID != "test-user" {
		t.Errorf("user_id = %q", gotBody.UserID)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Content != "remember this" {
		t.Errorf("messages = %+v", gotBody.Messages)
	}
}

func TestAdd_EmptyIsNoop(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	if err := testClient(srv.URL).Add(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("expected no request for empty messages, got %d", calls)
	}
}

func TestAdd_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := testClient(srv.URL).Add(context.Background(), []transcript.Message{{Role: "user", Content: "x"}})
	if err == nil {
		t.Error("expected error on 401 response")
	}
}
