package tuning

import (
	"time"

	"github.com/google/uuid"
)

// Audit action constants. One entry is appended per mutating action on
// a tuning file; the log itself is append-only.
const (
	AuditActionCreated        = "created"
	AuditActionStatusChange   = "status_change"
	AuditActionAdminOverride  = "admin_override"
	AuditActionEstimatedTime  = "estimated_time"
	AuditActionPriceChange    = "price_change"
	AuditActionPaymentChange  = "payment_change"
	AuditActionNotesChange    = "notes_change"
	AuditActionModifiedUpload = "modified_file_uploaded"
)

// AuditEntry records one mutating action on a tuning file
type AuditEntry struct {
	ID        uuid.UUID
	FileID    uuid.UUID
	Action    string
	OldValue  string
	NewValue  string
	ActorID   *uuid.UUID
	Timestamp time.Time
}

// NewAuditEntry creates an audit entry stamped now
func NewAuditEntry(fileID uuid.UUID, action, oldValue, newValue string, actorID *uuid.UUID) AuditEntry {
	return AuditEntry{
		ID:        uuid.New(),
		FileID:    fileID,
		Action:    action,
		OldValue:  oldValue,
		NewValue:  newValue,
		ActorID:   actorID,
		Timestamp: time.Now(),
	}
}
