package tuning

import (
	"github.com/compucar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeTuningFile is the aggregate type constant for TuningFile
const AggregateTypeTuningFile = "TuningFile"

// Event type constants for TuningFile
const (
	EventTypeFileReceived         = "TuningFileReceived"
	EventTypeFileStatusChanged    = "TuningFileStatusChanged"
	EventTypeEstimatedTimeSet     = "TuningFileEstimatedTimeSet"
	EventTypePriceSet             = "TuningFilePriceSet"
	EventTypePaymentStatusChanged = "TuningFilePaymentStatusChanged"
	EventTypeModifiedFileUploaded = "TuningFileModifiedUploaded"
)

// FileReceivedEvent is published when a customer uploads a new file
type FileReceivedEvent struct {
	shared.BaseDomainEvent
	FileID      uuid.UUID `json:"file_id"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
}

// NewFileReceivedEvent creates a new FileReceivedEvent
func NewFileReceivedEvent(f *TuningFile) *FileReceivedEvent {
	return &FileReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFileReceived, AggregateTypeTuningFile, f.ID),
		FileID:          f.ID,
		OwnerUserID:     f.OwnerUserID,
		FileName:        f.OriginalFilename,
		FileSize:        f.FileSize,
	}
}

// FileStatusChangedEvent is published after every committed status change
type FileStatusChangedEvent struct {
	shared.BaseDomainEvent
	FileID      uuid.UUID  `json:"file_id"`
	OwnerUserID uuid.UUID  `json:"owner_user_id"`
	FileName    string     `json:"file_name"`
	OldStatus   FileStatus `json:"old_status"`
	NewStatus   FileStatus `json:"new_status"`
}

// NewFileStatusChangedEvent creates a new FileStatusChangedEvent
func NewFileStatusChangedEvent(f *TuningFile, oldStatus FileStatus) *FileStatusChangedEvent {
	return &FileStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFileStatusChanged, AggregateTypeTuningFile, f.ID),
		FileID:          f.ID,
		OwnerUserID:     f.OwnerUserID,
		FileName:        f.OriginalFilename,
		OldStatus:       oldStatus,
		NewStatus:       f.Status,
	}
}

// EstimatedTimeSetEvent is published when an admin sets the processing
// time estimate; TimeText carries the human-readable bucket
type EstimatedTimeSetEvent struct {
	shared.BaseDomainEvent
	FileID           uuid.UUID  `json:"file_id"`
	OwnerUserID      uuid.UUID  `json:"owner_user_id"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	TimeText         string     `json:"time_text"`
	Status           FileStatus `json:"status"`
}

// NewEstimatedTimeSetEvent creates a new EstimatedTimeSetEvent
func NewEstimatedTimeSetEvent(f *TuningFile, minutes int) *EstimatedTimeSetEvent {
	return &EstimatedTimeSetEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeEstimatedTimeSet, AggregateTypeTuningFile, f.ID),
		FileID:           f.ID,
		OwnerUserID:      f.OwnerUserID,
		EstimatedMinutes: minutes,
		TimeText:         FormatEstimatedTime(minutes),
		Status:           f.Status,
	}
}

// PriceSetEvent is published when an admin sets or changes the price
type PriceSetEvent struct {
	shared.BaseDomainEvent
	FileID      uuid.UUID       `json:"file_id"`
	OwnerUserID uuid.UUID       `json:"owner_user_id"`
	FileName    string          `json:"file_name"`
	OldPrice    decimal.Decimal `json:"old_price"`
	NewPrice    decimal.Decimal `json:"new_price"`
}

// NewPriceSetEvent creates a new PriceSetEvent
func NewPriceSetEvent(f *TuningFile, oldPrice decimal.Decimal) *PriceSetEvent {
	return &PriceSetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePriceSet, AggregateTypeTuningFile, f.ID),
		FileID:          f.ID,
		OwnerUserID:     f.OwnerUserID,
		FileName:        f.OriginalFilename,
		OldPrice:        oldPrice,
		NewPrice:        f.Price,
	}
}

// PaymentStatusChangedEvent is published when the payment axis flips
type PaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	FileID      uuid.UUID     `json:"file_id"`
	OwnerUserID uuid.UUID     `json:"owner_user_id"`
	FileName    string        `json:"file_name"`
	OldStatus   PaymentStatus `json:"old_status"`
	NewStatus   PaymentStatus `json:"new_status"`
}

// NewPaymentStatusChangedEvent creates a new PaymentStatusChangedEvent
func NewPaymentStatusChangedEvent(f *TuningFile, oldStatus PaymentStatus) *PaymentStatusChangedEvent {
	return &PaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentStatusChanged, AggregateTypeTuningFile, f.ID),
		FileID:          f.ID,
		OwnerUserID:     f.OwnerUserID,
		FileName:        f.OriginalFilename,
		OldStatus:       oldStatus,
		NewStatus:       f.PaymentStatus,
	}
}

// ModifiedFileUploadedEvent is published when the processed output file
// is attached
type ModifiedFileUploadedEvent struct {
	shared.BaseDomainEvent
	FileID           uuid.UUID `json:"file_id"`
	OwnerUserID      uuid.UUID `json:"owner_user_id"`
	FileName         string    `json:"file_name"`
	ModifiedFilename string    `json:"modified_filename"`
	ModifiedFileSize int64     `json:"modified_file_size"`
}

// NewModifiedFileUploadedEvent creates a new ModifiedFileUploadedEvent
func NewModifiedFileUploadedEvent(f *TuningFile) *ModifiedFileUploadedEvent {
	return &ModifiedFileUploadedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeModifiedFileUploaded, AggregateTypeTuningFile, f.ID),
		FileID:           f.ID,
		OwnerUserID:      f.OwnerUserID,
		FileName:         f.OriginalFilename,
		ModifiedFilename: f.ModifiedFilename,
		ModifiedFileSize: f.ModifiedFileSize,
	}
}
