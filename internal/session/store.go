// Package session holds per-user conversation state: the cart and the
// add-product wizard progress. State lives in process memory only; a restart
// drops all carts and running wizards by design.
package session

import (
	"sync"
)

// WizardState identifies a step of the add-product dialogue.
type WizardState string

// WizardNone means no wizard is active for the user.
const WizardNone WizardState = ""

// Session stores one user's cart and wizard progress. Fields are accessed
// through Store methods or WithUser; never hold a Session across updates.
type Session struct {
	UserID int64
	Cart   map[string]int
	Wizard WizardState
	// Draft is the wizard's partially-entered product; the wizard package
	// owns its concrete type.
	Draft any
}

// Store is an in-memory session registry keyed by user id. All accessors
// serialize per user: two updates for the same user never interleave their
// session mutations, while distinct users are fully independent.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	sess *Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*entry)}
}

func (s *Store) getOrCreate(userID int64) *entry {
	s.mu.RLock()
	e, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.sessions[userID]; ok {
		return e
	}
	e = &entry{sess: &Session{
		UserID: userID,
		Cart:   make(map[string]int),
	}}
	s.sessions[userID] = e
	return e
}

// WithUser runs fn with exclusive access to the user's session, creating an
// empty session on first access.
func (s *Store) WithUser(userID int64, fn func(*Session)) {
	e := s.getOrCreate(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.sess)
}

// CartSnapshot returns a copy of the user's cart.
func (s *Store) CartSnapshot(userID int64) map[string]int {
	var snap map[string]int
	s.WithUser(userID, func(sess *Session) {
		snap = make(map[string]int, len(sess.Cart))
		for id, qty := range sess.Cart {
			snap[id] = qty
		}
	})
	return snap
}

// ClearCart empties the user's cart.
func (s *Store) ClearCart(userID int64) {
	s.WithUser(userID, func(sess *Session) {
		sess.Cart = make(map[string]int)
	})
}

// SetWizardState moves the user's wizard to the given step.
func (s *Store) SetWizardState(userID int64, st WizardState) {
	s.WithUser(userID, func(sess *Session) {
		sess.Wizard = st
	})
}

// WizardState reports the user's current wizard step.
func (s *Store) WizardState(userID int64) WizardState {
	var st WizardState
	s.WithUser(userID, func(sess *Session) {
		st = sess.Wizard
	})
	return st
}

// SetDraft stores the wizard draft for the user.
func (s *Store) SetDraft(userID int64, draft any) {
	s.WithUser(userID, func(sess *Session) {
		sess.Draft = draft
	})
}

// Draft returns the wizard draft for the user, or nil.
func (s *Store) Draft(userID int64) any {
	var d any
	s.WithUser(userID, func(sess *Session) {
		d = sess.Draft
	})
	return d
}

// ClearWizard resets the wizard to none and discards the draft.
func (s *Store) ClearWizard(userID int64) {
	s.WithUser(userID, func(sess *Session) {
		sess.Wizard = WizardNone
		sess.Draft = nil
	})
}

// InProgress reports whether the user has an active wizard. The text router
// uses it to give a running wizard first claim on free-text input.
func (s *Store) InProgress(userID int64) bool {
	return s.WizardState(userID) != WizardNone
}
