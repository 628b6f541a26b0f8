package services

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Tracker hands out increasing request tokens per surface so a slow
// response cannot overwrite the result of a newer request
type Tracker struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	latest  map[string]ulid.ULID
}

func NewTracker() *Tracker {
	return &Tracker{
		entropy: ulid.Monotonic(rand.Reader, 0),
		latest:  map[string]ulid.ULID{},
	}
}

// Begin issues a fresh token and makes it the latest for surface
func (t *Tracker) Begin(surface string) ulid.ULID {
	t.mu.Lock()
	defer t.mu.Unlock()
	token := ulid.MustNew(ulid.Timestamp(time.Now()), t.entropy)
	t.latest[surface] = token
	return token
}

// IsCurrent reports whether token is still the latest for surface
func (t *Tracker) IsCurrent(surface string, token ulid.ULID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[surface] == token
}
