package appcore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// sequenceCtxKey is the context key under which the current Sequence travels.
type sequenceCtxKey struct{}

// Sequence is an owner token for sequence confinement. An Application
// captures one Sequence at construction; every mutating operation must run
// with a context carrying that same token.
//
// The host's run loop attaches the token once via Context and then executes
// all mutating lifecycle calls with the derived context. There is no hidden
// goroutine-local state: confinement is checked purely by token identity.
type Sequence struct {
	id string
}

// NewSequence creates a new owner token.
func NewSequence() *Sequence {
	return &Sequence{id: uuid.NewString()}
}

// ID returns the unique identifier of this sequence, used in diagnostics.
func (s *Sequence) ID() string {
	return s.id
}

// Context returns a derived context carrying this sequence token.
func (s *Sequence) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, sequenceCtxKey{}, s)
}

// SequenceFromContext extracts the sequence token from ctx, or nil when the
// context carries none.
func SequenceFromContext(ctx context.Context) *Sequence {
	seq, _ := ctx.Value(sequenceCtxKey{}).(*Sequence)
	return seq
}

// Check verifies that ctx carries this sequence token. It returns an error
// wrapping ErrOffOwningSequence when the context belongs to a different
// sequence or carries none.
func (s *Sequence) Check(ctx context.Context) error {
	current := SequenceFromContext(ctx)
	if current == nil {
		return fmt.Errorf("%w: context carries no sequence token (owner %s)", ErrOffOwningSequence, s.id)
	}
	if current != s {
		return fmt.Errorf("%w: context sequence %s, owner %s", ErrOffOwningSequence, current.id, s.id)
	}
	return nil
}
