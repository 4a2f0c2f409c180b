package llm

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

type stubProvider struct {
	response string
	err      error
}

func (s *stubProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return s.response, s.err
}

func TestAuditedProviderLogsEachCall(t *testing.T) {
	var buf bytes.Buffer
	provider := NewAuditedProvider(&stubProvider{response: "a trip plan"}, log.New(&buf, "", 0))

	out, err := provider.Generate(context.Background(), "plan three days in Kyoto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a trip plan" {
		t.Errorf("decorator must pass the response through, got %q", out)
	}

	if _, err := provider.Chat(context.Background(), []Message{{Role: "user", Content: "hello"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one audit line per call, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[GENERATE]") || !strings.Contains(lines[0], "prompt_bytes=24") {
		t.Errorf("generate line missing call shape: %q", lines[0])
	}
	if !strings.Contains(lines[1], "[CHAT]") || !strings.Contains(lines[1], "prompt_bytes=5") {
		t.Errorf("chat line missing call shape: %q", lines[1])
	}
	if strings.Contains(buf.String(), "Kyoto") {
		t.Error("audit log must never contain prompt text")
	}
}

func TestAuditedProviderLogsErrors(t *testing.T) {
	var buf bytes.Buffer
	provider := NewAuditedProvider(&stubProvider{err: errors.New("model unavailable")}, log.New(&buf, "", 0))

	if _, err := provider.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("decorator must pass the error through")
	}
	if !strings.Contains(buf.String(), "error=model unavailable") {
		t.Errorf("failed call should be audited with its error: %q", buf.String())
	}
}
