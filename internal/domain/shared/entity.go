package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and audit timestamps every marketplace
// aggregate embeds. A record that was never modified has CreatedAt equal
// to UpdatedAt.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity mints a fresh identity with both timestamps set to the
// same instant
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch records a state change on the entity
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// TouchAt records a state change observed at a known instant, for
// transitions that also store that instant (answered-at, paid-at) and
// want the audit column to agree with it
func (e *BaseEntity) TouchAt(at time.Time) {
	e.UpdatedAt = at
}
