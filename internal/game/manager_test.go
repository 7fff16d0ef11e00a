package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewManager(Deps{Logger: zerolog.Nop()}, time.Minute)

	s, err := m.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}

	got, err := m.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}

	m.Remove(s.ID())
	if _, err := m.Get(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after Remove: err = %v, want ErrSessionNotFound", err)
	}
}

func TestManager_CreateDefaults(t *testing.T) {
	m := NewManager(Deps{Logger: zerolog.Nop()}, 0)
	if m.ttl != DefaultSessionTTL {
		t.Errorf("ttl = %v, want %v", m.ttl, DefaultSessionTTL)
	}

	s, err := m.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if s.Player() != DefaultPlayer {
		t.Errorf("Player = %q, want %q", s.Player(), DefaultPlayer)
	}

	if _, err := m.Create(context.Background(), "bad/name"); !errors.Is(err, ErrInvalidPlayer) {
		t.Errorf("err = %v, want ErrInvalidPlayer", err)
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}
}

func TestManager_SessionsShareProfiles(t *testing.T) {
	ctx := context.Background()
	m := NewManager(Deps{Logger: zerolog.Nop()}, time.Minute)

	s1, _ := m.Create(ctx, "alice")
	s1.ToggleSound(ctx)

	s2, _ := m.Create(ctx, "alice")
	if s2.Snapshot().SoundEnabled {
		t.Error("second session did not see the stored sound flag")
	}
	if s1.ID() == s2.ID() {
		t.Error("sessions share an id")
	}
}

func TestManager_CleanupIdle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(Deps{Logger: zerolog.Nop(), Now: func() time.Time { return now }}, 10*time.Minute)

	idle, _ := m.Create(ctx, "idle")
	active, _ := m.Create(ctx, "active")

	now = now.Add(8 * time.Minute)
	if _, err := active.NextRound(ctx); err != nil {
		t.Fatal(err)
	}

	now = now.Add(5 * time.Minute)
	if n := m.CleanupIdle(); n != 1 {
		t.Errorf("CleanupIdle() = %d, want 1", n)
	}
	if _, err := m.Get(idle.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session survived cleanup")
	}
	if _, err := m.Get(active.ID()); err != nil {
		t.Error("active session removed")
	}
}
