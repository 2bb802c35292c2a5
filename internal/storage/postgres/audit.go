package postgres

import (
	"context"
	"fmt"

	"github.com/pribylovaa/news-digest/internal/models"
)

// AppendAudit добавляет запись в журнал. Записи не изменяются и не удаляются.
func (s *Storage) AppendAudit(ctx context.Context, e models.AuditEntry) error {
	const op = "storage.postgres.AppendAudit"

	var metadata any
	if len(e.Metadata) > 0 {
		metadata = e.Metadata
	}

	_, err := s.db.Exec(ctx, `
	INSERT INTO audit_log (actor_user_id, action, entity_type, entity_id, detail, metadata)
	VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ActorUserID, string(e.Action), e.EntityType, e.EntityID, e.Detail, metadata)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
