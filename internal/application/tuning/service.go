package tuning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/tuning"
	"github.com/compucar/backend/internal/infrastructure/telemetry"
)

// DefaultDownloadURLExpiry bounds how long a presigned download link
// stays valid
const DefaultDownloadURLExpiry = 15 * time.Minute

// shortIDRetries bounds how often an upload regenerates its identity
// after drawing a short ID already held by another file.
const shortIDRetries = 3

// Service handles the tuning file workflow: customer uploads, the
// admin queue, and download links. Notifications ride on the domain
// events published after each successful save.
type Service struct {
	repo           tuning.TuningFileRepository
	storage        ObjectStorageService
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
	logger         *zap.Logger
}

// NewService creates a tuning file service
func NewService(repo tuning.TuningFileRepository, storage ObjectStorageService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, storage: storage, logger: logger}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics wires the business metrics recorder
func (s *Service) SetMetrics(metrics *telemetry.BusinessMetrics) {
	s.metrics = metrics
}

// Upload stores a customer's file and creates the aggregate in
// RECEIVED status. The object is written before the row: an orphaned
// object is harmless, a row without its object is not.
func (s *Service) Upload(ctx context.Context, ownerUserID uuid.UUID, req UploadFileRequest) (FileResponse, error) {
	modifications := make([]tuning.ModificationRequest, len(req.Modifications))
	for i, m := range req.Modifications {
		modifications[i] = tuning.ModificationRequest{Code: m.Code, Label: m.Label}
	}

	storageKey := fmt.Sprintf("tuning/%s/original/%s", uuid.NewString(), req.Filename)
	file, err := tuning.NewTuningFile(ownerUserID, req.Filename, int64(len(req.Data)), req.FileType, storageKey, req.Comment, modifications)
	if err != nil {
		return FileResponse{}, err
	}

	if err := s.storage.Upload(ctx, storageKey, req.Data, req.FileType); err != nil {
		return FileResponse{}, fmt.Errorf("upload tuning file: %w", err)
	}

	// The short ID is derived from the file UUID, so two files can draw
	// the same eight characters. On a collision the row never lands;
	// retry with a fresh aggregate identity against the same object.
	for attempt := 0; ; attempt++ {
		err = s.repo.Save(ctx, file)
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrAlreadyExists) && attempt < shortIDRetries {
			s.logger.Warn("short id already taken, regenerating",
				zap.String("short_id", file.ShortID()),
				zap.Int("attempt", attempt+1),
			)
			file, err = tuning.NewTuningFile(ownerUserID, req.Filename, int64(len(req.Data)), req.FileType, storageKey, req.Comment, modifications)
			if err == nil {
				continue
			}
		}
		if delErr := s.storage.DeleteObject(ctx, storageKey); delErr != nil {
			s.logger.Warn("orphaned upload object left behind",
				zap.String("storage_key", storageKey),
				zap.Error(delErr),
			)
		}
		return FileResponse{}, fmt.Errorf("save tuning file: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordFileUploaded(ctx)
	}
	s.publishEvents(ctx, file)

	s.logger.Info("tuning file received",
		zap.String("file_id", file.ID.String()),
		zap.String("owner_user_id", ownerUserID.String()),
		zap.Int64("file_size", file.FileSize),
	)
	return ToFileResponse(file, time.Now()), nil
}

// Get returns one of the caller's files. Files of other users read as
// not found so IDs cannot be probed.
func (s *Service) Get(ctx context.Context, userID, fileID uuid.UUID) (FileResponse, error) {
	file, err := s.findOwned(ctx, userID, fileID)
	if err != nil {
		return FileResponse{}, err
	}
	return ToFileResponse(file, time.Now()), nil
}

// List returns a page of the caller's files, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, req ListFilesRequest) (shared.Paginated[FileResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	items, err := s.repo.FindByOwner(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[FileResponse]{}, fmt.Errorf("list tuning files: %w", err)
	}
	total, err := s.repo.CountByOwner(ctx, userID)
	if err != nil {
		return shared.Paginated[FileResponse]{}, fmt.Errorf("count tuning files: %w", err)
	}
	return ToFileListResponse(items, total, filter, time.Now()), nil
}

// DownloadOriginal returns a time-limited link to the caller's
// original upload
func (s *Service) DownloadOriginal(ctx context.Context, userID, fileID uuid.UUID) (DownloadURLResponse, error) {
	file, err := s.findOwned(ctx, userID, fileID)
	if err != nil {
		return DownloadURLResponse{}, err
	}
	return s.downloadURL(ctx, file.StorageKey)
}

// DownloadModified returns a time-limited link to the processed output
func (s *Service) DownloadModified(ctx context.Context, userID, fileID uuid.UUID) (DownloadURLResponse, error) {
	file, err := s.findOwned(ctx, userID, fileID)
	if err != nil {
		return DownloadURLResponse{}, err
	}
	if file.ModifiedKey == "" {
		return DownloadURLResponse{}, shared.NewDomainError("NO_MODIFIED_FILE", "No processed file is available yet")
	}
	return s.downloadURL(ctx, file.ModifiedKey)
}

// AdminGet returns any file with the admin-only fields
func (s *Service) AdminGet(ctx context.Context, fileID uuid.UUID) (AdminFileResponse, error) {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return AdminFileResponse{}, err
	}
	return ToAdminFileResponse(file, time.Now()), nil
}

// AdminGetByShortID resolves the compact identifier used in Telegram
// callbacks
func (s *Service) AdminGetByShortID(ctx context.Context, shortID string) (AdminFileResponse, error) {
	file, err := s.repo.FindByShortID(ctx, shortID)
	if err != nil {
		return AdminFileResponse{}, err
	}
	return ToAdminFileResponse(file, time.Now()), nil
}

// AdminList returns the queue for one status
func (s *Service) AdminList(ctx context.Context, req AdminListFilesRequest) (shared.Paginated[AdminFileResponse], error) {
	status := tuning.FileStatus(req.Status)
	if !status.IsValid() {
		return shared.Paginated[AdminFileResponse]{}, shared.NewDomainError("INVALID_STATUS", "Unknown file status")
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	items, err := s.repo.FindByStatus(ctx, status, filter)
	if err != nil {
		return shared.Paginated[AdminFileResponse]{}, fmt.Errorf("list tuning files by status: %w", err)
	}
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return shared.Paginated[AdminFileResponse]{}, fmt.Errorf("count tuning files by status: %w", err)
	}
	return ToAdminFileListResponse(items, counts[status], filter, time.Now()), nil
}

// Counts returns the dashboard breakdown by status
func (s *Service) Counts(ctx context.Context) (FileCountsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return FileCountsResponse{}, fmt.Errorf("count tuning files by status: %w", err)
	}
	resp := FileCountsResponse{
		Received: counts[tuning.StatusReceived],
		Pending:  counts[tuning.StatusPending],
		Ready:    counts[tuning.StatusReady],
	}
	resp.Total = resp.Received + resp.Pending + resp.Ready
	return resp, nil
}

// Audit returns the append-only audit log of a file
func (s *Service) Audit(ctx context.Context, fileID uuid.UUID) ([]AuditEntryResponse, error) {
	if _, err := s.repo.FindByID(ctx, fileID); err != nil {
		return nil, err
	}
	entries, err := s.repo.FindAuditByFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("load audit log: %w", err)
	}
	responses := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToAuditEntryResponse(e)
	}
	return responses, nil
}

// StartProcessing moves a file to PENDING, optionally setting an
// estimate in the same step
func (s *Service) StartProcessing(ctx context.Context, fileID uuid.UUID, actorID *uuid.UUID, req StartProcessingRequest) (AdminFileResponse, error) {
	return s.mutate(ctx, fileID, req.ExpectedVersion, func(f *tuning.TuningFile) error {
		return f.StartProcessing(req.EstimatedMinutes, actorID)
	})
}

// StartProcessingByShortID is StartProcessing keyed by the Telegram
// callback identifier
func (s *Service) StartProcessingByShortID(ctx context.Context, shortID string, actorID *uuid.UUID, req StartProcessingRequest) (AdminFileResponse, error) {
	file, err := s.repo.FindByShortID(ctx, shortID)
	if err != nil {
		return AdminFileResponse{}, err
	}
	return s.StartProcessing(ctx, file.ID, actorID, req)
}

// SetEstimatedTime records the processing time estimate
func (s *Service) SetEstimatedTime(ctx context.Context, fileID uuid.UUID, actorID *uuid.UUID, req SetEstimatedTimeRequest) (AdminFileResponse, error) {
	return s.mutate(ctx, fileID, req.ExpectedVersion, func(f *tuning.TuningFile) error {
		return f.SetEstimatedTime(req.Minutes, actorID)
	})
}

// SetEstimatedTimeByShortID is SetEstimatedTime keyed by the Telegram
// callback identifier
func (s *Service) SetEstimatedTimeByShortID(ctx context.Context, shortID string, actorID *uuid.UUID, req SetEstimatedTimeRequest) (AdminFileResponse, error) {
	file, err := s.repo.FindByShortID(ctx, shortID)
	if err != nil {
		return AdminFileResponse{}, err
	}
	return s.SetEstimatedTime(ctx, file.ID, actorID, req)
}

// ChangeStatus moves a file along the workflow; with Override set it
// forces the transition and records an admin_override audit entry
func (s *Service) ChangeStatus(ctx context.Context, fileID uuid.UUID, actorID *uuid.UUID, req ChangeStatusRequest) (AdminFileResponse, error) {
	return s.mutate(ctx, fileID, req.ExpectedVersion, func(f *tuning.TuningFile) error {
		status := tuning.FileStatus(req.Status)
		if req.Override {
			return f.OverrideStatus(status, actorID)
		}
		return f.ChangeStatus(status, actorID)
	})
}

// ChangeStatusByShortID is ChangeStatus keyed by the Telegram callback
// identifier
func (s *Service) ChangeStatusByShortID(ctx context.Context, shortID string, actorID *uuid.UUID, req ChangeStatusRequest) (AdminFileResponse, error) {
	file, err := s.repo.FindByShortID(ctx, shortID)
	if err != nil {
		return AdminFileResponse{}, err
	}
	return s.ChangeStatus(ctx, file.ID, actorID, req)
}

// AttachModifiedFile uploads the processed output and moves the file
// to READY
func (s *Service) AttachModifiedFile(ctx context.Context, fileID uuid.UUID, actorID *uuid.UUID, req AttachModifiedFileRequest) (AdminFileResponse, error) {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return AdminFileResponse{}, err
	}

	storageKey := fmt.Sprintf("tuning/%s/modified/%s", file.ID, req.Filename)
	if err := file.AttachModifiedFile(req.Filename, int64(len(req.Data)), storageKey, actorID); err != nil {
		return AdminFileResponse{}, err
	}

	if err := s.storage.Upload(ctx, storageKey, req.Data, file.FileType); err != nil {
		return AdminFileResponse{}, fmt.Errorf("upload modified file: %w", err)
	}

	if err := s.repo.Save(ctx, file); err != nil {
		return AdminFileResponse{}, fmt.Errorf("save tuning file: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordFileStatusChange(ctx, string(file.Status))
	}
	s.publishEvents(ctx, file)
	return ToAdminFileResponse(file, time.Now()), nil
}

// SetPrice sets the processing price
func (s *Service) SetPrice(ctx context.Context, fileID uuid.UUID, actorID *uuid.UUID, req SetPriceRequest) (AdminFileResponse, error) {
	return s.mutate(ctx, fileID, req.ExpectedVersion, func(f *tuning.TuningFile) error {
		return f.SetPrice(req.Price, actorID)
	})
}

// SetPaymentStatus flips the payment axis
func (s *Service) SetPaymentStatus(ctx context.Context, fileID uuid.UUID, actorID *uuid.UUID, req SetPaymentStatusRequest) (AdminFileResponse, error) {
	return s.mutate(ctx, fileID, req.ExpectedVersion, func(f *tuning.TuningFile) error {
		return f.SetPaymentStatus(tuning.PaymentStatus(req.Status), actorID)
	})
}

// SetAdminNotes replaces the internal notes
func (s *Service) SetAdminNotes(ctx context.Context, fileID uuid.UUID, actorID *uuid.UUID, req SetAdminNotesRequest) (AdminFileResponse, error) {
	return s.mutate(ctx, fileID, req.ExpectedVersion, func(f *tuning.TuningFile) error {
		return f.SetAdminNotes(req.Notes, actorID)
	})
}

// Delete removes a file and its stored objects
func (s *Service) Delete(ctx context.Context, fileID uuid.UUID) error {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("delete tuning file: %w", err)
	}

	// Object cleanup is best effort; the row is already gone
	for _, key := range []string{file.StorageKey, file.ModifiedKey} {
		if key == "" {
			continue
		}
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("stored object cleanup failed",
				zap.String("storage_key", key),
				zap.Error(err),
			)
		}
	}
	return nil
}

// mutate loads, applies, saves and publishes. The optimistic version
// check catches a stale admin screen before the domain call runs.
func (s *Service) mutate(ctx context.Context, fileID uuid.UUID, expectedVersion *int, apply func(*tuning.TuningFile) error) (AdminFileResponse, error) {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return AdminFileResponse{}, err
	}
	if expectedVersion != nil && *expectedVersion != file.Version {
		return AdminFileResponse{}, shared.ErrConcurrencyConflict
	}

	oldStatus := file.Status
	if err := apply(file); err != nil {
		return AdminFileResponse{}, err
	}

	if err := s.repo.Save(ctx, file); err != nil {
		return AdminFileResponse{}, fmt.Errorf("save tuning file: %w", err)
	}

	if s.metrics != nil && file.Status != oldStatus {
		s.metrics.RecordFileStatusChange(ctx, string(file.Status))
	}
	s.publishEvents(ctx, file)
	return ToAdminFileResponse(file, time.Now()), nil
}

func (s *Service) findOwned(ctx context.Context, userID, fileID uuid.UUID) (*tuning.TuningFile, error) {
	file, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !file.OwnedBy(userID) {
		return nil, shared.ErrNotFound
	}
	return file, nil
}

func (s *Service) downloadURL(ctx context.Context, storageKey string) (DownloadURLResponse, error) {
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, storageKey, DefaultDownloadURLExpiry)
	if err != nil {
		return DownloadURLResponse{}, fmt.Errorf("generate download url: %w", err)
	}
	return DownloadURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

// publishEvents hands the pending domain events to the bus. Handler
// failures are logged, never surfaced: the state change is already
// committed.
func (s *Service) publishEvents(ctx context.Context, file *tuning.TuningFile) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range file.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("event publish failed",
				zap.String("event_type", event.EventType()),
				zap.String("file_id", file.ID.String()),
				zap.Error(err),
			)
		}
	}
	file.ClearDomainEvents()
}
