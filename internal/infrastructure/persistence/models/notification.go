package models

import (
	"encoding/json"
	"time"

	"github.com/compucar/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationModel is the persistence model for inbox notifications
type NotificationModel struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_user_read"`
	Type        string    `gorm:"type:varchar(30);not null"`
	Priority    string    `gorm:"type:varchar(10);not null"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Message     string    `gorm:"type:text"`
	PayloadJSON string    `gorm:"column:payload;type:jsonb;default:'{}'"`
	Read        bool      `gorm:"not null;default:false;index:idx_notifications_user_read"`
	ReadAt      *time.Time
}

// TableName returns the table name for NotificationModel
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	n := &notification.Notification{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Type:       notification.Type(m.Type),
		Priority:   notification.Priority(m.Priority),
		Title:      m.Title,
		Message:    m.Message,
		Read:       m.Read,
		ReadAt:     m.ReadAt,
	}

	if m.PayloadJSON != "" {
		var payload map[string]any
		if err := json.Unmarshal([]byte(m.PayloadJSON), &payload); err == nil {
			n.Payload = payload
		}
	}

	return n
}

// NotificationModelFromDomain converts a domain notification to its persistence model
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		UserID:   n.UserID,
		Type:     string(n.Type),
		Priority: string(n.Priority),
		Title:    n.Title,
		Message:  n.Message,
		Read:     n.Read,
		ReadAt:   n.ReadAt,
	}
	m.FromDomainBaseEntity(n.BaseEntity)

	m.PayloadJSON = "{}"
	if len(n.Payload) > 0 {
		if jsonBytes, err := json.Marshal(n.Payload); err == nil {
			m.PayloadJSON = string(jsonBytes)
		}
	}

	return m
}
