package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsSource — настроенный источник (сайт или лента).
// Для конвейера только для чтения.
type NewsSource struct {
	ID        uuid.UUID
	Name      string
	Language  string
	Website   string
	FeedURL   *string
	IsActive  bool
	CreatedAt time.Time
}
