package tuning

import (
	"fmt"
	"strings"
	"time"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxTuningFileSize is the maximum allowed upload size (50MB). ECU dumps
// are rarely above a few megabytes; anything bigger is a wrong file.
const MaxTuningFileSize = 50 * 1024 * 1024

// FileStatus represents the processing state of a tuning file
type FileStatus string

const (
	StatusReceived FileStatus = "RECEIVED"
	StatusPending  FileStatus = "PENDING"
	StatusReady    FileStatus = "READY"
)

// IsValid checks if the file status is valid
func (s FileStatus) IsValid() bool {
	switch s {
	case StatusReceived, StatusPending, StatusReady:
		return true
	default:
		return false
	}
}

// PaymentStatus represents the payment state, orthogonal to FileStatus
type PaymentStatus string

const (
	PaymentNotPaid PaymentStatus = "NOT_PAID"
	PaymentPaid    PaymentStatus = "PAID"
)

// IsValid checks if the payment status is valid
func (p PaymentStatus) IsValid() bool {
	return p == PaymentNotPaid || p == PaymentPaid
}

// workflowTransitions is the customer-facing happy path. Admins may
// bypass it through OverrideStatus, which is recorded separately in the
// audit log so skipped steps stay visible.
var workflowTransitions = map[FileStatus][]FileStatus{
	StatusReceived: {StatusPending},
	StatusPending:  {StatusReady},
	StatusReady:    {},
}

// CanTransition reports whether moving from one status to another is
// part of the normal workflow
func CanTransition(from, to FileStatus) bool {
	for _, next := range workflowTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ModificationRequest is one tuning option the customer asked for
// (e.g. EGR off, DPF removal, stage 1 remap)
type ModificationRequest struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// TuningFile is a customer-submitted ECU file moving through the manual
// processing workflow RECEIVED → PENDING → READY
type TuningFile struct {
	shared.BaseAggregateRoot
	OwnerUserID      uuid.UUID
	OriginalFilename string
	FileSize         int64
	FileType         string
	StorageKey       string
	Status           FileStatus
	Price            decimal.Decimal
	PaymentStatus    PaymentStatus
	EstimatedMinutes *int
	EstimatedSetAt   *time.Time
	AdminNotes       string
	CustomerComment  string
	Modifications    []ModificationRequest
	ModifiedFilename string
	ModifiedFileSize int64
	ModifiedKey      string
	ModifiedAt       *time.Time
	AuditLog         []AuditEntry

	pendingAudit []AuditEntry
}

// NewTuningFile creates a tuning file in RECEIVED status for an upload
func NewTuningFile(
	ownerUserID uuid.UUID,
	filename string,
	fileSize int64,
	fileType string,
	storageKey string,
	comment string,
	modifications []ModificationRequest,
) (*TuningFile, error) {
	if ownerUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner user ID cannot be empty")
	}
	if err := validateFilename(filename); err != nil {
		return nil, err
	}
	if fileSize <= 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size must be greater than 0")
	}
	if fileSize > MaxTuningFileSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "File size cannot exceed 50MB")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	f := &TuningFile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerUserID:       ownerUserID,
		OriginalFilename:  filename,
		FileSize:          fileSize,
		FileType:          fileType,
		StorageKey:        storageKey,
		Status:            StatusReceived,
		Price:             decimal.Zero,
		PaymentStatus:     PaymentNotPaid,
		CustomerComment:   comment,
		Modifications:     modifications,
	}

	f.appendAudit(AuditActionCreated, "", string(StatusReceived), &ownerUserID)
	f.AddDomainEvent(NewFileReceivedEvent(f))

	return f, nil
}

// OwnedBy reports whether the given user owns this file
func (f *TuningFile) OwnedBy(userID uuid.UUID) bool {
	return f.OwnerUserID == userID
}

// ShortID returns the compact file identifier used in Telegram
// callback data (first 8 hex chars of the UUID)
func (f *TuningFile) ShortID() string {
	return strings.ReplaceAll(f.ID.String(), "-", "")[:8]
}

// ChangeStatus moves the file along the normal workflow. Transitions
// outside the happy path must go through OverrideStatus.
func (f *TuningFile) ChangeStatus(newStatus FileStatus, actor *uuid.UUID) error {
	if !newStatus.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown file status")
	}
	if newStatus == f.Status {
		return shared.NewDomainError("STATUS_UNCHANGED", fmt.Sprintf("File is already %s", newStatus))
	}
	if !CanTransition(f.Status, newStatus) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot move from %s to %s in the normal workflow", f.Status, newStatus))
	}
	f.applyStatus(newStatus, AuditActionStatusChange, actor)
	return nil
}

// OverrideStatus lets an admin force any status regardless of the
// workflow. The audit action differs from a normal status change so
// skipped bookkeeping (e.g. READY without estimated time) is traceable.
func (f *TuningFile) OverrideStatus(newStatus FileStatus, actor *uuid.UUID) error {
	if !newStatus.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown file status")
	}
	if newStatus == f.Status {
		return shared.NewDomainError("STATUS_UNCHANGED", fmt.Sprintf("File is already %s", newStatus))
	}
	f.applyStatus(newStatus, AuditActionAdminOverride, actor)
	return nil
}

func (f *TuningFile) applyStatus(newStatus FileStatus, auditAction string, actor *uuid.UUID) {
	oldStatus := f.Status
	f.Status = newStatus
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.appendAudit(auditAction, string(oldStatus), string(newStatus), actor)
	f.AddDomainEvent(NewFileStatusChangedEvent(f, oldStatus))
}

// SetEstimatedTime records the admin's processing time estimate. Only
// meaningful while the file is PENDING; the countdown the customer sees
// is derived from EstimatedSetAt + EstimatedMinutes.
func (f *TuningFile) SetEstimatedTime(minutes int, actor *uuid.UUID) error {
	if f.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Estimated time can only be set while the file is PENDING")
	}
	if minutes <= 0 {
		return shared.NewDomainError("INVALID_ESTIMATED_TIME", "Estimated time must be greater than 0 minutes")
	}

	var old string
	if f.EstimatedMinutes != nil {
		old = fmt.Sprintf("%d", *f.EstimatedMinutes)
	}
	now := time.Now()
	f.EstimatedMinutes = &minutes
	f.EstimatedSetAt = &now
	f.UpdatedAt = now
	f.IncrementVersion()

	f.appendAudit(AuditActionEstimatedTime, old, fmt.Sprintf("%d", minutes), actor)
	f.AddDomainEvent(NewEstimatedTimeSetEvent(f, minutes))
	return nil
}

// StartProcessing is the usual admin action: RECEIVED → PENDING with an
// optional estimate in one step
func (f *TuningFile) StartProcessing(estimatedMinutes *int, actor *uuid.UUID) error {
	if err := f.ChangeStatus(StatusPending, actor); err != nil {
		return err
	}
	if estimatedMinutes != nil {
		return f.SetEstimatedTime(*estimatedMinutes, actor)
	}
	return nil
}

// AttachModifiedFile records the processed output and moves the file to
// READY from whatever state it was in. The original upload stays
// downloadable independently.
func (f *TuningFile) AttachModifiedFile(filename string, fileSize int64, storageKey string, actor *uuid.UUID) error {
	if err := validateFilename(filename); err != nil {
		return err
	}
	if fileSize <= 0 {
		return shared.NewDomainError("INVALID_FILE_SIZE", "Modified file size must be greater than 0")
	}
	if storageKey == "" {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	now := time.Now()
	f.ModifiedFilename = filename
	f.ModifiedFileSize = fileSize
	f.ModifiedKey = storageKey
	f.ModifiedAt = &now
	f.appendAudit(AuditActionModifiedUpload, "", filename, actor)
	f.AddDomainEvent(NewModifiedFileUploadedEvent(f))

	if f.Status != StatusReady {
		f.applyStatus(StatusReady, AuditActionStatusChange, actor)
	} else {
		f.UpdatedAt = now
		f.IncrementVersion()
	}
	return nil
}

// SetPrice sets the processing price. Independent of status.
func (f *TuningFile) SetPrice(price decimal.Decimal, actor *uuid.UUID) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	old := f.Price
	f.Price = price
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.appendAudit(AuditActionPriceChange, old.String(), price.String(), actor)
	f.AddDomainEvent(NewPriceSetEvent(f, old))
	return nil
}

// SetPaymentStatus flips the payment axis. Independent of status.
func (f *TuningFile) SetPaymentStatus(status PaymentStatus, actor *uuid.UUID) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_STATUS", "Unknown payment status")
	}
	if status == f.PaymentStatus {
		return shared.NewDomainError("PAYMENT_UNCHANGED", fmt.Sprintf("Payment status is already %s", status))
	}
	old := f.PaymentStatus
	f.PaymentStatus = status
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.appendAudit(AuditActionPaymentChange, string(old), string(status), actor)
	f.AddDomainEvent(NewPaymentStatusChangedEvent(f, old))
	return nil
}

// SetAdminNotes replaces the internal admin notes
func (f *TuningFile) SetAdminNotes(notes string, actor *uuid.UUID) error {
	if len(notes) > 2000 {
		return shared.NewDomainError("NOTES_TOO_LONG", "Admin notes cannot exceed 2000 characters")
	}
	old := f.AdminNotes
	f.AdminNotes = notes
	f.UpdatedAt = time.Now()
	f.IncrementVersion()

	f.appendAudit(AuditActionNotesChange, old, notes, actor)
	return nil
}

// RemainingMinutes derives the customer-facing countdown. Clamped at
// zero: an elapsed estimate reads as overdue, never negative.
func (f *TuningFile) RemainingMinutes(now time.Time) int {
	if f.EstimatedMinutes == nil || f.EstimatedSetAt == nil {
		return 0
	}
	target := f.EstimatedSetAt.Add(time.Duration(*f.EstimatedMinutes) * time.Minute)
	remaining := target.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Minutes())
}

// FormatEstimatedTime renders minutes into the human buckets shown to
// customers: known round values get a friendly label, everything else
// falls back to "{n} minutes"
func FormatEstimatedTime(minutes int) string {
	switch minutes {
	case 1440:
		return "1 day"
	case 240:
		return "4 hours"
	case 120:
		return "2 hours"
	case 60:
		return "1 hour"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}

// PendingAuditEntries returns audit entries appended since load,
// awaiting persistence alongside the aggregate
func (f *TuningFile) PendingAuditEntries() []AuditEntry {
	return f.pendingAudit
}

// ClearPendingAuditEntries clears the unpersisted audit entries
func (f *TuningFile) ClearPendingAuditEntries() {
	f.pendingAudit = nil
}

func (f *TuningFile) appendAudit(action, oldValue, newValue string, actor *uuid.UUID) {
	entry := NewAuditEntry(f.ID, action, oldValue, newValue, actor)
	f.AuditLog = append(f.AuditLog, entry)
	f.pendingAudit = append(f.pendingAudit, entry)
}

func validateFilename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return shared.NewDomainError("INVALID_FILE_NAME", "File name contains invalid characters")
		}
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot contain path separators")
	}
	return nil
}
