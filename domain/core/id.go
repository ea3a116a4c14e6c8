package core

import (
	"github.com/google/uuid"
)

// ID represents a domain identifier.
type ID string

// NewID creates a unique identifier using UUID v7 for time-ordered
// generation, falling back to v4 when v7 is unavailable.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation.
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty.
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types.
type (
	EvaluationID ID
	RunID        ID
)

func (id EvaluationID) String() string { return ID(id).String() }
func (id RunID) String() string        { return ID(id).String() }
