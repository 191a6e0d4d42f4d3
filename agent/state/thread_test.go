package state

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestThreadAppendAndTrim(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	thread := NewConversationThread("conv-1", now)
	for i := 0; i < MaxMessages+1; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		thread.Append(role, fmt.Sprintf("mensaje %d", i), now)
	}

	if !thread.NeedsTrim() {
		t.Fatalf("history of %d turns should need a trim", len(thread.History))
	}

	thread.Trim("la familia busca cupo para Inicial")

	if len(thread.History) != RecentMessages {
		t.Fatalf("history after trim = %d turns, want %d", len(thread.History), RecentMessages)
	}
	if thread.History[len(thread.History)-1].Content != fmt.Sprintf("mensaje %d", MaxMessages) {
		t.Fatalf("trim dropped the wrong end: last = %q", thread.History[len(thread.History)-1].Content)
	}
	if thread.Summary != "la familia busca cupo para Inicial" {
		t.Fatalf("summary = %q", thread.Summary)
	}
	if thread.NeedsTrim() {
		t.Fatal("trimmed thread should not need another trim")
	}
}

func TestThreadTrimOverwritesSummary(t *testing.T) {
	t.Parallel()

	thread := NewConversationThread("conv-1", time.Now().UTC())
	thread.Summary = "resumen viejo"
	thread.Trim("resumen nuevo")
	if thread.Summary != "resumen nuevo" {
		t.Fatalf("summary = %q, want replacement not accumulation", thread.Summary)
	}
}

func TestThreadShouldExtract(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	thread := NewConversationThread("conv-1", now)
	if thread.ShouldExtract() {
		t.Fatal("empty thread must not extract")
	}

	want := map[int]bool{1: false, 2: false, 3: true, 4: false, 5: false, 6: true}
	for i := 1; i <= 6; i++ {
		thread.Append(RoleUser, "hola", now)
		if got := thread.ShouldExtract(); got != want[i] {
			t.Fatalf("ShouldExtract() at %d turns = %v, want %v", i, got, want[i])
		}
	}
}

func TestThreadRecentWindow(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	thread := NewConversationThread("conv-1", now)
	for i := 0; i < 5; i++ {
		thread.Append(RoleUser, fmt.Sprintf("m%d", i), now)
	}

	window := thread.RecentWindow(2)
	if len(window) != 2 || window[0].Content != "m3" || window[1].Content != "m4" {
		t.Fatalf("RecentWindow(2) = %#v", window)
	}
	if got := thread.RecentWindow(10); len(got) != 5 {
		t.Fatalf("RecentWindow(10) = %d turns, want all 5", len(got))
	}
	if got := thread.RecentWindow(0); got != nil {
		t.Fatalf("RecentWindow(0) = %#v, want nil", got)
	}
}

func TestThreadValidate(t *testing.T) {
	t.Parallel()

	thread := NewConversationThread("", time.Now().UTC())
	if err := thread.Validate(); !errors.Is(err, ErrInvalidConversation) {
		t.Fatalf("Validate() error = %v, want ErrInvalidConversation", err)
	}

	thread = NewConversationThread("conv-1", time.Now().UTC())
	thread.History = []Turn{{Role: "system", Content: "x"}}
	if err := thread.Validate(); err == nil {
		t.Fatal("unknown role must fail validation")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	thread := NewConversationThread("conv-1", time.Now().UTC())
	thread.Append(RoleUser, "hola", time.Now().UTC())
	if err := store.Save(ctx, thread); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Mutating the caller's copy must not leak into the store.
	thread.History[0].Content = "mutado"

	loaded, err := store.Load(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.History[0].Content != "hola" {
		t.Fatalf("stored turn = %q, want isolation from caller", loaded.History[0].Content)
	}

	if err := store.Delete(ctx, "conv-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "conv-1"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("Load() after delete error = %v, want ErrThreadNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Nanosecond)
	ctx := context.Background()

	if err := store.Save(ctx, NewConversationThread("conv-ttl", time.Now().UTC())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := store.Load(ctx, "conv-ttl"); !errors.Is(err, ErrThreadNotFound) {
		t.Fatalf("Load() error = %v, want expiry", err)
	}
}
