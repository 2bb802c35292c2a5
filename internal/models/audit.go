package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction — тег действия администратора.
type AuditAction string

const (
	AuditIngest     AuditAction = "NEWS_INGEST"
	AuditSync       AuditAction = "NEWS_SYNC"
	AuditEdit       AuditAction = "NEWS_EDIT"
	AuditHide       AuditAction = "NEWS_HIDE"
	AuditUnhide     AuditAction = "NEWS_UNHIDE"
	AuditFeature    AuditAction = "NEWS_FEATURE"
	AuditUnfeature  AuditAction = "NEWS_UNFEATURE"
	AuditReprocess  AuditAction = "NEWS_REPROCESS"
	AuditDelete     AuditAction = "NEWS_DELETE"
	AuditDeleteAll  AuditAction = "NEWS_DELETE_ALL"
)

const (
	AuditEntityNews = "news"
	AuditEntityAll  = "ALL"
)

// AuditEntry — запись журнала действий. Только добавляется.
// EntityID может «висеть» после удаления сущности.
type AuditEntry struct {
	ID          uuid.UUID
	ActorUserID string
	Action      AuditAction
	EntityType  string
	EntityID    string
	Detail      string
	Metadata    map[string]any
	CreatedAt   time.Time
}
