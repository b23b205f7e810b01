package tuning

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/tuning"
)

// UploadFileRequest carries a customer upload. Data is the raw file
// contents read from the multipart part.
type UploadFileRequest struct {
	Filename      string
	FileType      string
	Comment       string
	Modifications []ModificationInput
	Data          []byte
}

// ModificationInput is one requested tuning option
type ModificationInput struct {
	Code  string `json:"code" binding:"required,max=64"`
	Label string `json:"label" binding:"required,max=128"`
}

// ListFilesRequest paginates a customer's file list
type ListFilesRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AdminListFilesRequest filters the admin queue by status
type AdminListFilesRequest struct {
	Status   string `form:"status" binding:"required,oneof=RECEIVED PENDING READY"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// StartProcessingRequest moves a file to PENDING, optionally with an
// estimate in the same step
type StartProcessingRequest struct {
	EstimatedMinutes *int `json:"estimated_minutes" binding:"omitempty,min=1"`
	ExpectedVersion  *int `json:"expected_version" binding:"omitempty,min=1"`
}

// SetEstimatedTimeRequest sets the processing time estimate
type SetEstimatedTimeRequest struct {
	Minutes         int  `json:"minutes" binding:"required,min=1"`
	ExpectedVersion *int `json:"expected_version" binding:"omitempty,min=1"`
}

// ChangeStatusRequest moves a file along the workflow; Override forces
// the transition outside the normal path
type ChangeStatusRequest struct {
	Status          string `json:"status" binding:"required,oneof=RECEIVED PENDING READY"`
	Override        bool   `json:"override"`
	ExpectedVersion *int   `json:"expected_version" binding:"omitempty,min=1"`
}

// SetPriceRequest sets the processing price
type SetPriceRequest struct {
	Price           decimal.Decimal `json:"price" binding:"required"`
	ExpectedVersion *int            `json:"expected_version" binding:"omitempty,min=1"`
}

// SetPaymentStatusRequest flips the payment axis
type SetPaymentStatusRequest struct {
	Status          string `json:"status" binding:"required,oneof=NOT_PAID PAID"`
	ExpectedVersion *int   `json:"expected_version" binding:"omitempty,min=1"`
}

// SetAdminNotesRequest replaces the internal notes
type SetAdminNotesRequest struct {
	Notes           string `json:"notes" binding:"max=2000"`
	ExpectedVersion *int   `json:"expected_version" binding:"omitempty,min=1"`
}

// AttachModifiedFileRequest carries the processed output upload
type AttachModifiedFileRequest struct {
	Filename string
	Data     []byte
}

// FileResponse is the customer view of a tuning file
type FileResponse struct {
	ID                string              `json:"id"`
	ShortID           string              `json:"short_id"`
	Filename          string              `json:"filename"`
	FileSize          int64               `json:"file_size"`
	FileType          string              `json:"file_type,omitempty"`
	Status            string              `json:"status"`
	Price             decimal.Decimal     `json:"price"`
	PaymentStatus     string              `json:"payment_status"`
	EstimatedMinutes  *int                `json:"estimated_minutes,omitempty"`
	EstimatedTimeText string              `json:"estimated_time_text,omitempty"`
	RemainingMinutes  int                 `json:"remaining_minutes"`
	Comment           string              `json:"comment,omitempty"`
	Modifications     []ModificationInput `json:"modifications,omitempty"`
	ModifiedFilename  string              `json:"modified_filename,omitempty"`
	ModifiedAt        *time.Time          `json:"modified_at,omitempty"`
	HasModifiedFile   bool                `json:"has_modified_file"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Version           int                 `json:"version"`
}

// AdminFileResponse adds the admin-only fields
type AdminFileResponse struct {
	FileResponse
	OwnerUserID string `json:"owner_user_id"`
	AdminNotes  string `json:"admin_notes,omitempty"`
}

// AuditEntryResponse is one audit log line
type AuditEntryResponse struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	OldValue  string    `json:"old_value,omitempty"`
	NewValue  string    `json:"new_value,omitempty"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DownloadURLResponse is a time-limited direct download link
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileCountsResponse is the admin dashboard breakdown by status
type FileCountsResponse struct {
	Received int64 `json:"received"`
	Pending  int64 `json:"pending"`
	Ready    int64 `json:"ready"`
	Total    int64 `json:"total"`
}

// ToFileResponse converts a tuning file to its customer view
func ToFileResponse(f *tuning.TuningFile, now time.Time) FileResponse {
	resp := FileResponse{
		ID:               f.ID.String(),
		ShortID:          f.ShortID(),
		Filename:         f.OriginalFilename,
		FileSize:         f.FileSize,
		FileType:         f.FileType,
		Status:           string(f.Status),
		Price:            f.Price,
		PaymentStatus:    string(f.PaymentStatus),
		EstimatedMinutes: f.EstimatedMinutes,
		RemainingMinutes: f.RemainingMinutes(now),
		Comment:          f.CustomerComment,
		ModifiedFilename: f.ModifiedFilename,
		ModifiedAt:       f.ModifiedAt,
		HasModifiedFile:  f.ModifiedKey != "",
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
		Version:          f.Version,
	}
	if f.EstimatedMinutes != nil {
		resp.EstimatedTimeText = tuning.FormatEstimatedTime(*f.EstimatedMinutes)
	}
	for _, m := range f.Modifications {
		resp.Modifications = append(resp.Modifications, ModificationInput{Code: m.Code, Label: m.Label})
	}
	return resp
}

// ToAdminFileResponse converts a tuning file to its admin view
func ToAdminFileResponse(f *tuning.TuningFile, now time.Time) AdminFileResponse {
	return AdminFileResponse{
		FileResponse: ToFileResponse(f, now),
		OwnerUserID:  f.OwnerUserID.String(),
		AdminNotes:   f.AdminNotes,
	}
}

// ToFileListResponse converts a page of files to the customer view
func ToFileListResponse(items []tuning.TuningFile, total int64, filter shared.Filter, now time.Time) shared.Paginated[FileResponse] {
	responses := make([]FileResponse, len(items))
	for i := range items {
		responses[i] = ToFileResponse(&items[i], now)
	}
	return shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
}

// ToAdminFileListResponse converts a page of files to the admin view
func ToAdminFileListResponse(items []tuning.TuningFile, total int64, filter shared.Filter, now time.Time) shared.Paginated[AdminFileResponse] {
	responses := make([]AdminFileResponse, len(items))
	for i := range items {
		responses[i] = ToAdminFileResponse(&items[i], now)
	}
	return shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
}

// ToAuditEntryResponse converts one audit entry
func ToAuditEntryResponse(e tuning.AuditEntry) AuditEntryResponse {
	resp := AuditEntryResponse{
		ID:        e.ID.String(),
		Action:    e.Action,
		OldValue:  e.OldValue,
		NewValue:  e.NewValue,
		Timestamp: e.Timestamp,
	}
	if e.ActorID != nil {
		actor := e.ActorID.String()
		resp.ActorID = &actor
	}
	return resp
}
