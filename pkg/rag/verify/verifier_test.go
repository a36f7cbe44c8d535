package verify

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"ai-docchat-be/pkg/llm"
	"ai-docchat-be/pkg/store"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func newVerifier(fake *fakeLLM) *Verifier {
	return NewVerifier(fake, log.New(io.Discard, "", 0))
}

var selected = []store.Candidate{
	{ID: "a", Content: "The benchmark results show a 30% latency reduction.", DocumentName: "paper.pdf", PageNumber: 4},
}

func TestVerifyPositive(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{"plain yes", "Yes", true},
		{"lowercase yes", "yes.", true},
		{"yes with prose", "Yes, it does", true},
		{"plain no", "No", false},
		{"no with prose", "No, nothing relevant", false},
		{"unparseable", "maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newVerifier(&fakeLLM{response: tt.response})
			if got := v.Verify(context.Background(), "query", selected); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyDefaultsTrueOnError(t *testing.T) {
	v := newVerifier(&fakeLLM{err: errors.New("model down")})

	if !v.Verify(context.Background(), "query", selected) {
		t.Error("verification error must not block the answer")
	}
}

func TestVerifyEmptySelection(t *testing.T) {
	fake := &fakeLLM{response: "Yes"}
	v := newVerifier(fake)

	if v.Verify(context.Background(), "query", nil) {
		t.Error("empty selection can never be relevant")
	}
	if fake.calls != 0 {
		t.Errorf("empty selection made %d model calls, want 0", fake.calls)
	}
}
