package service

import (
	"context"
	"encoding/json"

	"xclub/internal/entity"
	"xclub/internal/repository"

	"gorm.io/datatypes"
)

// writeAudit persists an audit event. Callers ignore the returned error on
// purpose: auditing must never fail the operation it describes.
func writeAudit(
	ctx context.Context,
	audit repository.AuditLogRepository,
	action entity.AuditAction,
	openID string,
	userID *int64,
	metadata map[string]any,
) error {
	if audit == nil {
		return nil
	}
	var payload datatypes.JSON
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(raw)
	}
	return audit.Create(ctx, &entity.AuditLog{
		UserID:   userID,
		OpenID:   openID,
		Action:   action,
		Metadata: payload,
	})
}
