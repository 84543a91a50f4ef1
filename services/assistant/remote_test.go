package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ruach/models"
)

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"method":      r.Method,
			"query":       r.URL.RawQuery,
			"body":        string(body),
			"contentType": r.Header.Get("Content-Type"),
		})
	}))
}

func echoField(t *testing.T, result, field string) string {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal([]byte(result), &decoded); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, result)
	}
	value, _ := decoded[field].(string)
	return value
}

func passthrough(body any, input string, conv models.ConversationContext) (string, error) {
	encoded, err := json.Marshal(body)
	return string(encoded), err
}

func TestExecuteEmptyEndpointFailsFast(t *testing.T) {
	exec := NewRemoteExecutor(time.Second)
	ra := &models.RemoteAction{
		EndpointFunc: func(input string, conv models.ConversationContext) string { return "  " },
	}
	if _, err := exec.Execute(context.Background(), ra, "x", models.ConversationContext{}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestExecuteMergesQueryString(t *testing.T) {
	srv := newEchoServer(t)
	defer srv.Close()
	exec := NewRemoteExecutor(time.Second)

	ra := &models.RemoteAction{
		Endpoint:          srv.URL + "/search?fixed=1",
		Query:             map[string]any{"page": 2, "skipped": nil},
		TransformResponse: passthrough,
	}
	result, err := exec.Execute(context.Background(), ra, "x", models.ConversationContext{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	query := echoField(t, result, "query")
	if !strings.Contains(query, "fixed=1") || !strings.Contains(query, "page=2") {
		t.Fatalf("query not merged with '&': %q", query)
	}
	if strings.Contains(query, "skipped") {
		t.Fatalf("nil query value was not skipped: %q", query)
	}
}

func TestExecuteBodyLateBinding(t *testing.T) {
	srv := newEchoServer(t)
	defer srv.Close()
	exec := NewRemoteExecutor(time.Second)

	var sawInput string
	var sawConv models.ConversationContext
	ra := &models.RemoteAction{
		Endpoint: srv.URL,
		Method:   http.MethodPost,
		BodyFunc: func(input string, conv models.ConversationContext) any {
			sawInput = input
			sawConv = conv
			return map[string]string{"q": input, "page": conv.Page}
		},
		TransformResponse: passthrough,
	}

	convA := models.ConversationContext{Page: "home", UserID: "u1"}
	if _, err := exec.Execute(context.Background(), ra, "first input", convA); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if sawInput != "first input" || sawConv.Page != "home" {
		t.Fatalf("resolver saw stale values: input=%q conv=%+v", sawInput, sawConv)
	}

	convB := models.ConversationContext{Page: "checkout", UserID: "u2"}
	result, err := exec.Execute(context.Background(), ra, "second input", convB)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if sawInput != "second input" || sawConv.Page != "checkout" {
		t.Fatalf("resolver saw stale values on second call: input=%q conv=%+v", sawInput, sawConv)
	}
	if body := echoField(t, result, "body"); !strings.Contains(body, "second input") {
		t.Fatalf("server did not receive the fresh body: %q", body)
	}
}

func TestExecuteJSONBodyContentType(t *testing.T) {
	srv := newEchoServer(t)
	defer srv.Close()
	exec := NewRemoteExecutor(time.Second)

	ra := &models.RemoteAction{
		Endpoint:          srv.URL,
		Method:            http.MethodPost,
		Body:              map[string]string{"a": "b"},
		TransformResponse: passthrough,
	}
	result, err := exec.Execute(context.Background(), ra, "x", models.ConversationContext{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if ct := echoField(t, result, "contentType"); ct != "application/json" {
		t.Fatalf("implicit JSON content type missing, got %q", ct)
	}

	// A caller-specified header always wins.
	ra.Headers = map[string]string{"Content-Type": "application/vnd.ruach+json"}
	result, err = exec.Execute(context.Background(), ra, "x", models.ConversationContext{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if ct := echoField(t, result, "contentType"); ct != "application/vnd.ruach+json" {
		t.Fatalf("caller header was overridden, got %q", ct)
	}
}

func TestExecuteStringBodyPassesThrough(t *testing.T) {
	srv := newEchoServer(t)
	defer srv.Close()
	exec := NewRemoteExecutor(time.Second)

	ra := &models.RemoteAction{
		Endpoint:          srv.URL,
		Method:            http.MethodPost,
		Body:              "plain payload",
		TransformResponse: passthrough,
	}
	result, err := exec.Execute(context.Background(), ra, "x", models.ConversationContext{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if body := echoField(t, result, "body"); body != "plain payload" {
		t.Fatalf("string body was altered: %q", body)
	}
	if ct := echoField(t, result, "contentType"); ct == "application/json" {
		t.Fatalf("string body must not get an implicit JSON content type")
	}
}

func TestExecuteNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()
	exec := NewRemoteExecutor(time.Second)

	ra := &models.RemoteAction{Endpoint: srv.URL}
	_, err := exec.Execute(context.Background(), ra, "x", models.ConversationContext{})
	var statusErr *RemoteStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected RemoteStatusError, got %v", err)
	}
	if statusErr.Status != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", statusErr.Status)
	}
}

func TestExecuteDefaultFormatting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"answer":42}`))
			return
		}
		_, _ = w.Write([]byte("raw text answer"))
	}))
	defer srv.Close()
	exec := NewRemoteExecutor(time.Second)

	result, err := exec.Execute(context.Background(), &models.RemoteAction{Endpoint: srv.URL + "/json"}, "x", models.ConversationContext{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(result, "\"answer\": 42") {
		t.Fatalf("JSON body was not pretty-printed: %q", result)
	}

	result, err = exec.Execute(context.Background(), &models.RemoteAction{Endpoint: srv.URL + "/text"}, "x", models.ConversationContext{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result != "raw text answer" {
		t.Fatalf("text body was altered: %q", result)
	}
}
