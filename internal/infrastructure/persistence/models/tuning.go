package models

import (
	"encoding/json"
	"time"

	"github.com/compucar/backend/internal/domain/tuning"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TuningFileModel is the persistence model for tuning files
type TuningFileModel struct {
	AggregateModel
	OwnerUserID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShortID           string          `gorm:"type:varchar(8);not null;uniqueIndex"`
	OriginalFilename  string          `gorm:"type:varchar(255);not null"`
	FileSize          int64           `gorm:"not null"`
	FileType          string          `gorm:"type:varchar(100)"`
	StorageKey        string          `gorm:"type:varchar(500);not null"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PaymentStatus     string          `gorm:"type:varchar(20);not null"`
	EstimatedMinutes  *int
	EstimatedSetAt    *time.Time
	AdminNotes        string `gorm:"type:text"`
	CustomerComment   string `gorm:"type:text"`
	ModificationsJSON string `gorm:"column:modifications;type:jsonb;default:'[]'"`
	ModifiedFilename  string `gorm:"type:varchar(255)"`
	ModifiedFileSize  int64
	ModifiedKey       string `gorm:"type:varchar(500)"`
	ModifiedAt        *time.Time
}

// TableName returns the table name for TuningFileModel
func (TuningFileModel) TableName() string {
	return "tuning_files"
}

// ToDomain converts the persistence model to a domain tuning file
func (m *TuningFileModel) ToDomain() *tuning.TuningFile {
	f := &tuning.TuningFile{
		OwnerUserID:      m.OwnerUserID,
		OriginalFilename: m.OriginalFilename,
		FileSize:         m.FileSize,
		FileType:         m.FileType,
		StorageKey:       m.StorageKey,
		Status:           tuning.FileStatus(m.Status),
		Price:            m.Price,
		PaymentStatus:    tuning.PaymentStatus(m.PaymentStatus),
		EstimatedMinutes: m.EstimatedMinutes,
		EstimatedSetAt:   m.EstimatedSetAt,
		AdminNotes:       m.AdminNotes,
		CustomerComment:  m.CustomerComment,
		ModifiedFilename: m.ModifiedFilename,
		ModifiedFileSize: m.ModifiedFileSize,
		ModifiedKey:      m.ModifiedKey,
		ModifiedAt:       m.ModifiedAt,
	}
	m.PopulateAggregateRoot(&f.BaseAggregateRoot)

	if m.ModificationsJSON != "" {
		var mods []tuning.ModificationRequest
		if err := json.Unmarshal([]byte(m.ModificationsJSON), &mods); err == nil {
			f.Modifications = mods
		}
	}

	return f
}

// TuningFileModelFromDomain converts a domain tuning file to its persistence model
func TuningFileModelFromDomain(f *tuning.TuningFile) *TuningFileModel {
	m := &TuningFileModel{
		OwnerUserID:      f.OwnerUserID,
		ShortID:          f.ShortID(),
		OriginalFilename: f.OriginalFilename,
		FileSize:         f.FileSize,
		FileType:         f.FileType,
		StorageKey:       f.StorageKey,
		Status:           string(f.Status),
		Price:            f.Price,
		PaymentStatus:    string(f.PaymentStatus),
		EstimatedMinutes: f.EstimatedMinutes,
		EstimatedSetAt:   f.EstimatedSetAt,
		AdminNotes:       f.AdminNotes,
		CustomerComment:  f.CustomerComment,
		ModifiedFilename: f.ModifiedFilename,
		ModifiedFileSize: f.ModifiedFileSize,
		ModifiedKey:      f.ModifiedKey,
		ModifiedAt:       f.ModifiedAt,
	}
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)

	m.ModificationsJSON = "[]"
	if len(f.Modifications) > 0 {
		if jsonBytes, err := json.Marshal(f.Modifications); err == nil {
			m.ModificationsJSON = string(jsonBytes)
		}
	}

	return m
}

// AuditEntryModel is the persistence model for tuning file audit entries.
// Rows are insert-only.
type AuditEntryModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	FileID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Action    string     `gorm:"type:varchar(50);not null"`
	OldValue  string     `gorm:"type:text"`
	NewValue  string     `gorm:"type:text"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	Timestamp time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for AuditEntryModel
func (AuditEntryModel) TableName() string {
	return "tuning_file_audit"
}

// ToDomain converts the persistence model to a domain audit entry
func (m *AuditEntryModel) ToDomain() tuning.AuditEntry {
	return tuning.AuditEntry{
		ID:        m.ID,
		FileID:    m.FileID,
		Action:    m.Action,
		OldValue:  m.OldValue,
		NewValue:  m.NewValue,
		ActorID:   m.ActorID,
		Timestamp: m.Timestamp,
	}
}

// AuditEntryModelFromDomain converts a domain audit entry to its persistence model
func AuditEntryModelFromDomain(e tuning.AuditEntry) *AuditEntryModel {
	return &AuditEntryModel{
		ID:        e.ID,
		FileID:    e.FileID,
		Action:    e.Action,
		OldValue:  e.OldValue,
		NewValue:  e.NewValue,
		ActorID:   e.ActorID,
		Timestamp: e.Timestamp,
	}
}
