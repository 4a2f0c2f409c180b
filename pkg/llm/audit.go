package llm

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"
)

// auditedProvider wraps another provider and appends one line per model call
// to an audit log. The line carries the call shape and latency, never the
// prompt text itself.
type auditedProvider struct {
	inner LLMProvider
	log   *log.Logger
}

// NewAuditedProvider decorates a provider with call auditing.
func NewAuditedProvider(inner LLMProvider, logger *log.Logger) LLMProvider {
	return &auditedProvider{inner: inner, log: logger}
}

// NewFileAuditLogger opens an append-only audit log at the given path,
// creating the directory if needed. Falls back to stdout when the file
// cannot be opened.
func NewFileAuditLogger(logPath string) *log.Logger {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (a *auditedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	started := time.Now()
	out, err := a.inner.Chat(ctx, history, options...)
	a.record("CHAT", promptSize(history), len(out), started, err)
	return out, err
}

func (a *auditedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	started := time.Now()
	out, err := a.inner.Generate(ctx, prompt, options...)
	a.record("GENERATE", len(prompt), len(out), started, err)
	return out, err
}

func (a *auditedProvider) record(op string, promptBytes, responseBytes int, started time.Time, err error) {
	latency := time.Since(started).Milliseconds()
	if err != nil {
		a.log.Printf("[%s] prompt_bytes=%d latency_ms=%d error=%v", op, promptBytes, latency, err)
		return
	}
	a.log.Printf("[%s] prompt_bytes=%d response_bytes=%d latency_ms=%d", op, promptBytes, responseBytes, latency)
}

func promptSize(history []Message) int {
	total := 0
	for _, msg := range history {
		total += len(msg.Content)
	}
	return total
}
