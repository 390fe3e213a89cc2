package audit

import (
	"encoding/json"
	"fmt"

	"forestry-backend/internal/database"
	"forestry-backend/internal/models"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog appends one entry to the audit trail. The trail is append-only;
// there is no undo path because ledger pools can only be moved through the
// coordinator, not by replaying raw row states.
func WriteLog(opts LogOptions) error {
	// jsonb columns want the JSON literal "null", not an empty string.
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("could not write audit log: %w", err)
	}

	return nil
}

// Record is a fire-and-forget wrapper for handlers: audit failures are not
// allowed to fail the business operation.
func Record(userID uint, userName, entityType string, entityID uint, action models.AuditAction, description string, before, after any) {
	_ = WriteLog(LogOptions{
		UserID:      userID,
		UserName:    userName,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	})
}
