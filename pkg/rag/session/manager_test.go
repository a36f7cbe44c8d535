package session

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-docchat-be/pkg/memoryservice"
)

type fakeMemory struct {
	sc       *memoryservice.SessionContext
	err      error
	appended []memoryservice.Turn
}

func (f *fakeMemory) EnsureContext(ctx context.Context, sessionID, userID string, recentLimit int) (*memoryservice.SessionContext, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sc, nil
}

func (f *fakeMemory) AddMessages(ctx context.Context, sessionID string, turns []memoryservice.Turn) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, turns...)
	return nil
}

func newManager(client MemoryClient) *Manager {
	return NewManager(client, 10, log.New(io.Discard, "", 0))
}

func TestResolveDegradesOnFailure(t *testing.T) {
	m := newManager(&fakeMemory{err: errors.New("service down")})

	sc := m.Resolve(context.Background(), "s1", "u1")

	if sc == nil {
		t.Fatal("Resolve must never return nil")
	}
	if sc.SessionID != "s1" || sc.UserID != "u1" {
		t.Error("degraded context should keep the identifiers")
	}
	if !sc.IsNewSession {
		t.Error("unknown session state should be treated as new")
	}
}

func TestResolveWithoutIdentifiers(t *testing.T) {
	fake := &fakeMemory{sc: &memoryservice.SessionContext{MemoryContext: "should not load"}}
	m := newManager(fake)

	sc := m.Resolve(context.Background(), "", "")

	if sc.MemoryContext != "" {
		t.Error("missing identifiers must skip the memory service")
	}
}

func TestRecordTurn(t *testing.T) {
	fake := &fakeMemory{}
	m := newManager(fake)

	m.RecordTurn(context.Background(), "s1", "user", "hello")
	m.RecordTurn(context.Background(), "s1", "assistant", "hi there")

	if len(fake.appended) != 2 {
		t.Fatalf("recorded %d turns, want 2", len(fake.appended))
	}
	if fake.appended[0].Role != "user" || fake.appended[1].Role != "assistant" {
		t.Error("turn roles not preserved")
	}
}

func TestContextBlock(t *testing.T) {
	m := newManager(&fakeMemory{})

	block := m.ContextBlock(&memoryservice.SessionContext{
		MemoryContext: "The user studies retrieval systems.",
		RecentHistory: []memoryservice.Turn{
			{Role: "user", Content: "summarize the paper"},
			{Role: "assistant", Content: "It describes a temporal graph."},
		},
	})

	if !strings.Contains(block, "CONVERSATION CONTEXT:") {
		t.Error("block should include the memory context header")
	}
	if !strings.Contains(block, "User: summarize the paper") {
		t.Error("block should include recent turns")
	}
}
