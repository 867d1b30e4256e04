package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

func TestManager_Create(t *testing.T) {
	manager := NewManager()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session")
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Engine == nil {
			t.Error("Expected engine to be initialized")
		}
		if got := engine.CountEmpty(session.Engine.GetGrid()); got != engine.Size*engine.Size-engine.InitialTileCount {
			t.Errorf("Expected a fresh board, got %d empty cells", got)
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("")
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if _, err := uuid.Parse(session.ID); err != nil {
			t.Errorf("Expected a UUID session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session")
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION")
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		for _, id := range []string{" padded", "a/b", "what?"} {
			if _, err := manager.Create(id); !errors.Is(err, ErrInvalidSessionID) {
				t.Errorf("%q: expected ErrInvalidSessionID, got %v", id, err)
			}
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("Get-Test")

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("Get-Test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the same session instance")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session.ID != "Get-Test" {
			t.Errorf("Expected original ID to be kept, got %s", session.ID)
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()

	created, err := manager.GetOrCreate("goc")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	again, err := manager.GetOrCreate("GOC")
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if created != again {
		t.Error("Expected GetOrCreate to return the existing session")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	manager.Create("delete-me")

	if err := manager.Delete("DELETE-ME"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("delete-me"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected session to be deleted")
	}
	if err := manager.Delete("delete-me"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	for i := 0; i < 3; i++ {
		manager.Create(fmt.Sprintf("list-%d", i))
	}

	sessions := manager.List()
	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}

	found := make(map[string]bool)
	for _, s := range sessions {
		found[s.ID] = true
	}
	for i := 0; i < 3; i++ {
		if !found[fmt.Sprintf("list-%d", i)] {
			t.Errorf("Session list-%d not found in list", i)
		}
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()

	active, _ := manager.Create("active")
	expired, _ := manager.Create("expired")

	// Simulate expired session
	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	deleted := manager.CleanupExpiredSessions(1 * time.Hour)
	if deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}

	if _, err := manager.Get("expired"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected expired session to be deleted")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()

	session, _ := manager.Create("access-test")
	originalTime := session.LastAccessedAt

	// Wait a bit to ensure time difference
	time.Sleep(10 * time.Millisecond)

	if err := manager.UpdateLastAccessed("access-test"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}

	updated, _ := manager.Get("access-test")
	if !updated.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}

	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_FixedSeed(t *testing.T) {
	manager := NewManager(WithSeed(99))

	a, _ := manager.Create("a")
	b, _ := manager.Create("b")

	if a.Seed != 99 || b.Seed != 99 {
		t.Errorf("Expected seed 99, got %d and %d", a.Seed, b.Seed)
	}
	if a.Engine.GetGrid() != b.Engine.GetGrid() {
		t.Error("Sessions with the same seed should open identically")
	}

	a.Engine.Move(engine.Left)
	b.Engine.Move(engine.Left)
	if a.Engine.GetState() != b.Engine.GetState() {
		t.Error("Sessions with the same seed should stay in lockstep")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("")
			if err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(session.ID); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 100 {
		t.Errorf("Expected 100 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager(WithSeed(7))

	session1, _ := manager.Create("iso-1")
	session2, _ := manager.Create("iso-2")
	before := session2.Engine.GetState()

	for _, dir := range engine.Directions {
		session1.Engine.Move(dir)
	}

	if session2.Engine.GetState() != before {
		t.Error("Session 2 should not be affected by session 1 moves")
	}
	if len(session2.Engine.GetMoveHistory()) != 0 {
		t.Error("Session 2 should have no history")
	}
}

func TestManager_ConcurrentServiceReads(t *testing.T) {
	svc := service.NewGameService(NewManager())
	ctx := context.Background()

	info, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := svc.GetSession(ctx, info.ID); err != nil {
					errs <- err
					return
				}
				if _, err := svc.ListSessions(ctx); err != nil {
					errs <- err
					return
				}
				if _, err := svc.GetGameState(ctx, info.ID); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent reads: %v", err)
	}
}
