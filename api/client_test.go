package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/obiajulu/comply/model"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, zerolog.Nop()), server
}

func TestEmbedSendsMultipartBatch(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		parts := r.MultipartForm.File["files"]
		if len(parts) != 2 {
			t.Fatalf("expected 2 files, got %d", len(parts))
		}
		if parts[0].Filename != "policy.pdf" || parts[1].Filename != "claims.docx" {
			t.Errorf("unexpected filenames: %s, %s", parts[0].Filename, parts[1].Filename)
		}

		f, err := parts[0].Open()
		if err != nil {
			t.Fatalf("failed to open part: %v", err)
		}
		defer f.Close()
		content, _ := io.ReadAll(f)
		if string(content) != "pdf bytes" {
			t.Errorf("unexpected file content %q", content)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"success","message":"Successfully embedded 2 documents (14 chunks)","files_processed":["policy.pdf","claims.docx"],"total_chunks":14}`)
	}))

	result, err := client.Embed(context.Background(), []EmbedFile{
		{Name: "policy.pdf", Reader: strings.NewReader("pdf bytes")},
		{Name: "claims.docx", Reader: strings.NewReader("docx bytes")},
	})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if result.Status != StatusSuccess {
		t.Errorf("expected success status, got %q", result.Status)
	}
	if len(result.FilesProcessed) != 2 || result.TotalChunks != 14 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestEmbedRejectsEmptyBatch(t *testing.T) {
	requests := 0
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	if _, err := client.Embed(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
	if requests != 0 {
		t.Errorf("expected no request for empty batch, got %d", requests)
	}
}

func TestEmbedPartialSuccess(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"partial_success","message":"Successfully embedded 1 documents (3 chunks)","files_processed":["good.pdf"],"total_chunks":3,"errors":["Error processing bad.pdf: corrupt file"]}`)
	}))

	result, err := client.Embed(context.Background(), []EmbedFile{
		{Name: "good.pdf", Reader: strings.NewReader("ok")},
		{Name: "bad.pdf", Reader: strings.NewReader("broken")},
	})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if result.Status != StatusPartialSuccess {
		t.Errorf("expected partial_success, got %q", result.Status)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 backend error, got %v", result.Errors)
	}
}

func TestEmbedServerError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "vector store unavailable", http.StatusInternalServerError)
	}))

	_, err := client.Embed(context.Background(), []EmbedFile{
		{Name: "a.pdf", Reader: strings.NewReader("x")},
	})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "vector store unavailable") {
		t.Errorf("error should carry status and body, got %v", err)
	}
}

func TestChatStreamDeliversEvents(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "coverage limits") {
			t.Errorf("unexpected request body %s", body)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		lines := []string{
			`data: {"type":"agent_start","agent":"RootAgent","message":"Analyzing query..."}`,
			`data: {"type":"tool_call","agent":"RAGAgent","tool":"search_internal_docs","args":{"query":"coverage"}}`,
			`data: {"type":"agent_text","agent":"AnalyzerAgent","content":"Coverage is capped"}`,
			`data: {"type":"agent_text","agent":"AnalyzerAgent","content":" at $1M."}`,
			`data: {"type":"agent_complete","agent":"RootAgent","message":"Compliance analysis complete"}`,
		}
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
			flusher.Flush()
		}
	}))

	s, err := client.Chat(context.Background(), "what are the coverage limits?")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	defer s.Close()

	var events []model.Event
	for {
		ev, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv failed: %v", err)
		}
		events = append(events, ev)
	}

	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	if events[0].Type != model.EventAgentStart {
		t.Errorf("unexpected first event %+v", events[0])
	}
	text := ""
	for _, ev := range events {
		if ev.IsText() {
			text += ev.Content
		}
	}
	if text != "Coverage is capped at $1M." {
		t.Errorf("unexpected accumulated text %q", text)
	}
}

func TestChatStreamSkipsMalformedLines(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: not json at all\n\n")
		fmt.Fprint(w, "data: {\"type\":\"agent_complete\",\"agent\":\"RootAgent\"}\n\n")
	}))

	s, err := client.Chat(context.Background(), "q")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	defer s.Close()

	ev, err := s.Recv()
	if err != nil {
		t.Fatalf("Recv failed: %v", err)
	}
	if ev.Type != model.EventAgentComplete {
		t.Errorf("expected the valid event, got %+v", ev)
	}
	if _, err := s.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestChatErrorStatus(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))

	if _, err := client.Chat(context.Background(), "q"); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestChatContextCancellation(t *testing.T) {
	release := make(chan struct{})
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"agent_start\",\"agent\":\"RootAgent\"}\n\n")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := client.Chat(ctx, "q")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Recv(); err != nil {
		t.Fatalf("first Recv failed: %v", err)
	}

	cancel()
	if _, err := s.Recv(); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("expected transport error after cancel, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"healthy","agents":["RootAgent","RAGAgent","WebSearchAgent","AnalyzerAgent","ComplianceWorkflow"]}`)
	}))

	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Status != "healthy" || len(health.Agents) != 5 {
		t.Errorf("unexpected health response: %+v", health)
	}
}

func TestInfo(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"online","service":"Compliance Analysis System","version":"2.0","framework":"Google ADK"}`)
	}))

	info, err := client.Info(context.Background())
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Service != "Compliance Analysis System" || info.Version != "2.0" {
		t.Errorf("unexpected info: %+v", info)
	}
}
