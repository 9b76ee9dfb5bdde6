package audit

import (
	"encoding/json"
	"log"

	"gorm.io/gorm"

	"spokestack/internal/ids"
	"spokestack/internal/models"
)

// Entry describes one auditable event. OrganizationID and Action are
// required; everything else is optional context.
type Entry struct {
	OrganizationID string
	UserID         string
	Action         string // e.g. "clients.create", "access.denied"
	ResourceType   string
	ResourceID     string
	RequestID      string
	IP             string
	UserAgent      string
	Metadata       map[string]any
}

// Record writes an audit log row. Audit writes are best-effort: a failure is
// logged but never fails the request that triggered it.
func Record(db *gorm.DB, e Entry) {
	row := models.AuditLog{
		ID:             ids.New(),
		OrganizationID: e.OrganizationID,
		UserID:         e.UserID,
		Action:         e.Action,
		ResourceType:   e.ResourceType,
		ResourceID:     e.ResourceID,
		RequestID:      e.RequestID,
		IP:             e.IP,
		UserAgent:      e.UserAgent,
	}
	if e.Metadata != nil {
		data, err := json.Marshal(e.Metadata)
		if err == nil {
			row.Metadata = data
		}
	}
	if err := db.Create(&row).Error; err != nil {
		log.Printf("audit write failed: %v", err)
	}
}
