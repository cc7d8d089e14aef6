package model

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeItem struct {
	ID        uuid.UUID
	Title     string
	Content   string
	UpdatedAt time.Time
}
