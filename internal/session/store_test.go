package session

import (
	"sync"
	"testing"
)

func TestWithUserCreatesEmptySession(t *testing.T) {
	s := NewStore()
	s.WithUser(1, func(sess *Session) {
		if sess.UserID != 1 {
			t.Fatalf("user id = %d", sess.UserID)
		}
		if len(sess.Cart) != 0 || sess.Wizard != WizardNone || sess.Draft != nil {
			t.Fatalf("new session not empty: %+v", sess)
		}
	})
}

func TestCartSnapshotIsCopy(t *testing.T) {
	s := NewStore()
	s.WithUser(1, func(sess *Session) {
		sess.Cart["P1"] = 2
	})

	snap := s.CartSnapshot(1)
	snap["P1"] = 99
	snap["P2"] = 1

	if got := s.CartSnapshot(1); got["P1"] != 2 || got["P2"] != 0 {
		t.Fatalf("stored cart mutated through snapshot: %v", got)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	s := NewStore()
	s.WithUser(1, func(sess *Session) { sess.Cart["P1"] = 1 })
	s.SetWizardState(1, WizardState("awaiting_id"))

	if got := s.CartSnapshot(2); len(got) != 0 {
		t.Fatalf("user 2 sees user 1 cart: %v", got)
	}
	if s.InProgress(2) {
		t.Fatal("user 2 inherited user 1 wizard state")
	}
}

func TestClearWizard(t *testing.T) {
	s := NewStore()
	s.SetWizardState(1, WizardState("awaiting_price"))
	s.SetDraft(1, "draft")

	s.ClearWizard(1)

	if s.InProgress(1) {
		t.Fatal("wizard still in progress after clear")
	}
	if s.Draft(1) != nil {
		t.Fatal("draft survived clear")
	}
}

func TestConcurrentIncrements(t *testing.T) {
	s := NewStore()
	const n = 200

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.WithUser(7, func(sess *Session) {
				sess.Cart["P1"]++
			})
		}()
	}
	wg.Wait()

	if got := s.CartSnapshot(7)["P1"]; got != n {
		t.Fatalf("quantity = %d, expected %d", got, n)
	}
}
