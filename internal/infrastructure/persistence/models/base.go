package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bidboard/backend/internal/domain/shared"
)

func baseEntity(id uuid.UUID, createdAt, updatedAt time.Time) shared.BaseEntity {
	return shared.BaseEntity{
		ID:        id,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
