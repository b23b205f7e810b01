package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/compucar/backend/internal/domain/shared"
	"github.com/compucar/backend/internal/domain/tuning"
	"github.com/compucar/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// pgUniqueViolation is the Postgres error code for a unique constraint
// breach (SQLSTATE 23505).
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgUniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}

// GormTuningFileRepository implements tuning.TuningFileRepository using GORM
type GormTuningFileRepository struct {
	db *gorm.DB
}

// NewGormTuningFileRepository creates a new GormTuningFileRepository
func NewGormTuningFileRepository(db *gorm.DB) *GormTuningFileRepository {
	return &GormTuningFileRepository{db: db}
}

// FindByID finds a tuning file by its ID, audit log included
func (r *GormTuningFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*tuning.TuningFile, error) {
	var model models.TuningFileModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.loadWithAudit(ctx, &model)
}

// FindByShortID resolves the compact identifier used in Telegram callback data
func (r *GormTuningFileRepository) FindByShortID(ctx context.Context, shortID string) (*tuning.TuningFile, error) {
	if shortID == "" {
		return nil, shared.NewDomainError("INVALID_SHORT_ID", "Short ID cannot be empty")
	}
	var model models.TuningFileModel
	if err := r.db.WithContext(ctx).
		Where("short_id = ?", strings.ToLower(shortID)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.loadWithAudit(ctx, &model)
}

func (r *GormTuningFileRepository) loadWithAudit(ctx context.Context, model *models.TuningFileModel) (*tuning.TuningFile, error) {
	file := model.ToDomain()
	audit, err := r.FindAuditByFile(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	file.AuditLog = audit
	return file, nil
}

// FindByOwner lists a customer's files
func (r *GormTuningFileRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID, filter shared.Filter) ([]tuning.TuningFile, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TuningFileModel{}).
			Where("owner_user_id = ?", ownerUserID),
		filter,
	)

	var fileModels []models.TuningFileModel
	if err := query.Find(&fileModels).Error; err != nil {
		return nil, err
	}

	files := make([]tuning.TuningFile, len(fileModels))
	for i, model := range fileModels {
		files[i] = *model.ToDomain()
	}
	return files, nil
}

// FindByStatus lists files in a given status for the admin queue
func (r *GormTuningFileRepository) FindByStatus(ctx context.Context, status tuning.FileStatus, filter shared.Filter) ([]tuning.TuningFile, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.TuningFileModel{}).
			Where("status = ?", status),
		filter,
	)

	var fileModels []models.TuningFileModel
	if err := query.Find(&fileModels).Error; err != nil {
		return nil, err
	}

	files := make([]tuning.TuningFile, len(fileModels))
	for i, model := range fileModels {
		files[i] = *model.ToDomain()
	}
	return files, nil
}

// CountByOwner counts a customer's files
func (r *GormTuningFileRepository) CountByOwner(ctx context.Context, ownerUserID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TuningFileModel{}).
		Where("owner_user_id = ?", ownerUserID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts files per status
func (r *GormTuningFileRepository) CountByStatus(ctx context.Context) (map[tuning.FileStatus]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.TuningFileModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[tuning.FileStatus]int64, len(rows))
	for _, row := range rows {
		counts[tuning.FileStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// Save persists the aggregate and its pending audit entries in one
// transaction. Updates are guarded by the version column: a stale
// aggregate yields shared.ErrConcurrencyConflict with no partial write.
func (r *GormTuningFileRepository) Save(ctx context.Context, file *tuning.TuningFile) error {
	model := models.TuningFileModelFromDomain(file)
	pending := file.PendingAuditEntries()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A single unit of work may advance the version more than once
		// (e.g. start processing with an estimate), so the guard is
		// "strictly older than what we are writing" rather than
		// exactly version-1.
		result := tx.Model(&models.TuningFileModel{}).
			Where("id = ? AND version < ?", file.ID, file.Version).
			Select("*").
			Omit("id", "created_at").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.TuningFileModel{}).
				Where("id = ?", file.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return shared.ErrConcurrencyConflict
			}
			if err := tx.Create(model).Error; err != nil {
				// The short ID is a prefix of the file UUID under a
				// unique index, so a fresh insert can collide with an
				// existing row. Surface a typed error the caller can
				// retry with a new identity.
				if isUniqueViolation(err) {
					return shared.ErrAlreadyExists
				}
				return err
			}
		}

		if len(pending) > 0 {
			auditModels := make([]*models.AuditEntryModel, len(pending))
			for i, entry := range pending {
				auditModels[i] = models.AuditEntryModelFromDomain(entry)
			}
			if err := tx.Create(auditModels).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	file.ClearPendingAuditEntries()
	return nil
}

// Delete removes a tuning file and its audit log
func (r *GormTuningFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.TuningFileModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&models.AuditEntryModel{}, "file_id = ?", id).Error
	})
}

// FindAuditByFile reads the audit log of a file, oldest first
func (r *GormTuningFileRepository) FindAuditByFile(ctx context.Context, fileID uuid.UUID) ([]tuning.AuditEntry, error) {
	var auditModels []models.AuditEntryModel
	if err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Order("timestamp ASC").
		Find(&auditModels).Error; err != nil {
		return nil, err
	}

	entries := make([]tuning.AuditEntry, len(auditModels))
	for i, model := range auditModels {
		entries[i] = model.ToDomain()
	}
	return entries, nil
}

func (r *GormTuningFileRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("original_filename ILIKE ? OR short_id ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TuningFileSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}
