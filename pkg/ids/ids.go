// Package ids issues the opaque identifiers used for every persisted entity.
package ids

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator issues unique string identifiers.
type Generator interface {
	NewID() string
}

// UUID issues canonical 36-character UUIDv4 strings.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence issues "<prefix>-<n>" identifiers in order. It is meant for tests
// that need predictable ids.
type Sequence struct {
	Prefix string
	n      atomic.Int64
}

func (s *Sequence) NewID() string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, s.n.Add(1))
}
