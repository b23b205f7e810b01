package tuning

import (
	"context"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TuningFileReader defines read access to tuning files
type TuningFileReader interface {
	// FindByID finds a file by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*TuningFile, error)

	// FindByShortID resolves the compact identifier used in Telegram
	// callback data
	FindByShortID(ctx context.Context, shortID string) (*TuningFile, error)

	// FindByOwner lists a customer's files
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID, filter shared.Filter) ([]TuningFile, error)

	// FindByStatus lists files in a given status for the admin queue
	FindByStatus(ctx context.Context, status FileStatus, filter shared.Filter) ([]TuningFile, error)

	// CountByOwner counts a customer's files
	CountByOwner(ctx context.Context, ownerUserID uuid.UUID) (int64, error)

	// CountByStatus counts files per status
	CountByStatus(ctx context.Context) (map[FileStatus]int64, error)
}

// TuningFileWriter defines write access to tuning files. Save persists
// the aggregate and its pending audit entries atomically, guarded by
// the optimistic version column; a stale version yields
// shared.ErrConcurrencyConflict and no partial update.
type TuningFileWriter interface {
	Save(ctx context.Context, file *TuningFile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditReader reads the append-only audit log of a file
type AuditReader interface {
	FindAuditByFile(ctx context.Context, fileID uuid.UUID) ([]AuditEntry, error)
}

// TuningFileRepository is the full persistence interface for tuning files
type TuningFileRepository interface {
	TuningFileReader
	TuningFileWriter
	AuditReader
}
