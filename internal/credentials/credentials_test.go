package credentials

import (
	"context"
	"testing"
)

func TestMemoryStore_RoundTripsWithKey(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	store, err := NewMemoryStore(key)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	c := &Credential{ID: "cred-1", Type: "slackApi", Name: "Slack", Data: map[string]string{"token": "xoxb-secret"}}
	if err := store.Put(ctx, c); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "cred-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Data["token"] != "xoxb-secret" {
		t.Errorf("expected the token to round-trip, got %q", got.Data["token"])
	}
}

func TestMemoryStore_MasksAtRest(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	store, err := NewMemoryStore(key)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	c := &Credential{ID: "cred-1", Type: "slackApi", Data: map[string]string{"token": "xoxb-secret"}}
	store.Put(ctx, c)

	store.mu.RLock()
	stored := store.byID["cred-1"]
	store.mu.RUnlock()
	if stored.Data["token"] == "xoxb-secret" {
		t.Errorf("expected the stored value to be masked, not plaintext")
	}
}

func TestMemoryStore_NoOpModeWithoutKey(t *testing.T) {
	store, err := NewMemoryStore(nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	c := &Credential{ID: "cred-1", Type: "slackApi", Data: map[string]string{"token": "plain"}}
	store.Put(ctx, c)

	got, err := store.Get(ctx, "cred-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Data["token"] != "plain" {
		t.Errorf("expected no-op mode to preserve plaintext, got %q", got.Data["token"])
	}
}

func TestMemoryStore_GetUnknownFails(t *testing.T) {
	store, _ := NewMemoryStore(nil)
	if _, err := store.Get(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_RejectsWrongKeyLength(t *testing.T) {
	if _, err := NewMemoryStore([]byte("too-short")); err == nil {
		t.Errorf("expected an error for a non-32-byte key")
	}
}
