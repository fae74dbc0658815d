package llm

import (
	"context"
	"testing"

	"github.com/stellarlinkco/code-solver/internal/claude"
)

func TestToClaudeRequest(t *testing.T) {
	t.Parallel()

	if _, err := toClaudeRequest(nil); err == nil {
		t.Fatalf("toClaudeRequest(nil): expected error")
	}

	got, err := toClaudeRequest(&Request{
		System:      "sys",
		MaxTokens:   7,
		Temperature: 0.5,
		Messages: []Message{
			{Role: " ", Content: "a"},
			{Role: "assistant", Content: "b"},
		},
	})
	if err != nil {
		t.Fatalf("toClaudeRequest: %v", err)
	}
	if got.System != "sys" || got.MaxTokens != 7 || got.Temperature != 0.5 {
		t.Fatalf("request: got %#v", got)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("len(Messages): got %d want %d", len(got.Messages), 2)
	}
	if got.Messages[0].Role != "user" {
		t.Fatalf("Messages[0].Role: got %q want %q", got.Messages[0].Role, "user")
	}
	if got.Messages[1].Role != "assistant" || got.Messages[1].Content != "b" {
		t.Fatalf("Messages[1]: got %#v", got.Messages[1])
	}
}

func TestFromClaudeResponse(t *testing.T) {
	t.Parallel()

	if got := fromClaudeResponse(nil); got != nil {
		t.Fatalf("fromClaudeResponse(nil): got %#v", got)
	}

	got := fromClaudeResponse(&claude.Response{
		StopReason: "end_turn",
		Usage:      claude.Usage{InputTokens: 3, OutputTokens: 4},
		Content: []claude.ContentBlock{
			{Type: "text", Text: "a"},
			{Type: "other", Text: "skip"},
			{Type: "text", Text: "b"},
		},
	})
	if got.StopReason != "end_turn" {
		t.Fatalf("StopReason: got %q want %q", got.StopReason, "end_turn")
	}
	if got.Usage.InputTokens != 3 || got.Usage.OutputTokens != 4 {
		t.Fatalf("usage: got %#v", got.Usage)
	}
	if len(got.Content) != 2 {
		t.Fatalf("len(Content): got %d want %d", len(got.Content), 2)
	}
	if Text(got) != "ab" {
		t.Fatalf("Text: got %q want %q", Text(got), "ab")
	}
}

func TestClaudeProvider_NilClient(t *testing.T) {
	t.Parallel()

	var p *ClaudeProvider
	if _, err := p.Complete(context.Background(), &Request{}); err == nil {
		t.Fatalf("Complete(nil provider): expected error")
	}

	bad := &ClaudeProvider{}
	if _, err := bad.Complete(context.Background(), &Request{}); err == nil {
		t.Fatalf("Complete(nil client): expected error")
	}
}

func TestClaudeProvider_Name(t *testing.T) {
	t.Parallel()

	p := NewClaudeProvider("k", "", "")
	if p.Name() != "claude" {
		t.Fatalf("Name: got %q want %q", p.Name(), "claude")
	}
}
