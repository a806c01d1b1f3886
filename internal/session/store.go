// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeranaias/comercia-tui/internal/util"
)

// =============================================================================
// SESSION STORE
// =============================================================================

const (
	// sessionFile is the sealed session payload inside the state dir.
	sessionFile = "session.bin"

	// masterKeyFile is the random secret the session file is sealed with.
	masterKeyFile = "session.key"
)

// Store holds the current session in memory and mirrors it to a sealed file
// so it survives restarts. All access is serialized by one mutex; the three
// termination triggers (logout, revoked request, idle expiry) all funnel
// through Clear and are idempotent with respect to each other.
type Store struct {
	mu        sync.Mutex
	dir       string
	masterKey []byte

	hydrated bool
	current  *Session

	subs []func(authenticated bool)
}

// NewStore creates a store rooted at the given state directory. Nothing is
// read from disk until Hydrate.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// persisted is the sealed file payload: both fields live in one file so a
// reader can never observe a token without its matching profile.
type persisted struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// =============================================================================
// HYDRATION
// =============================================================================

// Hydrate loads the persisted session, accepting it only if the token is
// present and the profile is structurally valid. Anything else (missing
// file, corrupt seal, tampered payload, a profile without a permisos array)
// yields an empty store, and invalid persisted state is purged on the spot.
// Structural problems are logged, never surfaced: corrupt storage is not a
// user-facing error.
//
// Returns true when a session was restored.
func (s *Store) Hydrate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hydrated = true
	s.current = nil

	path := filepath.Join(s.dir, sessionFile)
	sealed, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false
	}
	if err != nil {
		logSessionEvent("HYDRATE_READ_FAILED", fmt.Sprintf("error=%v", err))
		return false
	}

	key, err := s.masterKeyLocked()
	if err != nil {
		logSessionEvent("HYDRATE_KEY_FAILED", fmt.Sprintf("error=%v", err))
		s.purgeLocked()
		return false
	}

	plaintext, err := unseal(key, sealed)
	if err != nil {
		logSessionEvent("HYDRATE_DISCARDED", "reason=corrupt_seal")
		s.purgeLocked()
		return false
	}

	var p persisted
	if err := json.Unmarshal(plaintext, &p); err != nil {
		logSessionEvent("HYDRATE_DISCARDED", "reason=malformed_payload")
		s.purgeLocked()
		return false
	}

	restored := Session{Token: p.Token, User: p.User}
	if err := restored.Validate(); err != nil {
		logSessionEvent("HYDRATE_DISCARDED", "reason=invalid_profile")
		s.purgeLocked()
		return false
	}

	s.current = &restored
	logSessionEvent("HYDRATED", fmt.Sprintf("user=%d rol=%s", restored.User.ID, restored.User.Rol))
	return true
}

// Hydrated reports whether Hydrate has run. Until then the gate treats every
// navigation as LOADING.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// =============================================================================
// READ / WRITE / CLEAR
// =============================================================================

// Current returns a copy of the session, if one is present.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Token returns the stored bearer token, or "" when no session is present.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Set validates, persists, and then commits the session. The sealed file is
// written before the in-memory state changes, so a successful return means
// the session is durable; on any error the store is untouched.
func (s *Store) Set(sess Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	key, err := s.masterKeyLocked()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to load session key: %w", err)
	}

	plaintext, err := json.Marshal(persisted{Token: sess.Token, User: sess.User})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to encode session: %w", err)
	}

	sealed, err := seal(key, plaintext)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to seal session: %w", err)
	}

	if err := util.AtomicWriteFilePrivate(filepath.Join(s.dir, sessionFile), sealed); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.current = &sess
	s.hydrated = true
	subs := append([]func(bool){}, s.subs...)
	s.mu.Unlock()

	logSessionEvent("STORED", fmt.Sprintf("user=%d rol=%s", sess.User.ID, sess.User.Rol))
	for _, fn := range subs {
		fn(true)
	}
	return nil
}

// Clear removes the session from memory and disk. Idempotent: clearing an
// already-empty store is a no-op and notifies nobody. It never fails: a
// stubborn session file is logged and the in-memory state is dropped anyway,
// so every termination trigger still converges on "no session".
func (s *Store) Clear() {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.purgeLocked()
	var subs []func(bool)
	if had {
		subs = append([]func(bool){}, s.subs...)
	}
	s.mu.Unlock()

	if had {
		logSessionEvent("CLEARED", "")
		for _, fn := range subs {
			fn(false)
		}
	}
}

// Subscribe registers a callback invoked synchronously after every
// authenticated-state transition: true after a session is stored, false
// after a present session is cleared.
func (s *Store) Subscribe(fn func(authenticated bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// =============================================================================
// INTERNAL
// =============================================================================

// purgeLocked removes the persisted session file. Callers hold s.mu.
func (s *Store) purgeLocked() {
	path := filepath.Join(s.dir, sessionFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logSessionEvent("PURGE_FAILED", fmt.Sprintf("error=%v", err))
	}
}

// masterKeyLocked lazily loads (or creates) the master secret. Callers hold
// s.mu.
func (s *Store) masterKeyLocked() ([]byte, error) {
	if s.masterKey != nil {
		return s.masterKey, nil
	}
	key, err := loadOrCreateMasterKey(filepath.Join(s.dir, masterKeyFile))
	if err != nil {
		return nil, err
	}
	s.masterKey = key
	return key, nil
}

// logSessionEvent logs a session lifecycle event. Tokens and profile
// contents are never logged.
func logSessionEvent(eventType, details string) {
	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05 UTC")
	if details == "" {
		log.Printf("%s | SESSION_%s", timestamp, eventType)
		return
	}
	log.Printf("%s | SESSION_%s | %s", timestamp, eventType, details)
}
