// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package repositories

import (
	"errors"

	"weblynx/internal/database/models"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxRecordsPerBatch keeps a single INSERT under SQLite's bound variable limit.
const MaxRecordsPerBatch = 100

// RecordFilter narrows record listings. Zero values do not filter.
type RecordFilter struct {
	SourceName string
	Family     string
	Domain     string
	IsBot      *bool
}

// RequestRecordRepository stores analyzed requests
type RequestRecordRepository interface {
	Create(record *models.RequestRecord) error
	CreateBatch(records []*models.RequestRecord) (int, error)
	FindByID(id uint) (*models.RequestRecord, error)
	Latest(limit int, offset int, filter RecordFilter) ([]*models.RequestRecord, error)
	Count(filter RecordFilter) (int64, error)
	HasExistingData() (bool, error)
}

type requestRecordRepo struct {
	db     *gorm.DB
	logger *pterm.Logger
}

// NewRequestRecordRepository creates a new request record repository
func NewRequestRecordRepository(db *gorm.DB, logger *pterm.Logger) RequestRecordRepository {
	return &requestRecordRepo{db: db, logger: logger}
}

// Create inserts a single record
func (r *requestRecordRepo) Create(record *models.RequestRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		r.logger.WithCaller().Error("Failed to create request record", r.logger.Args("error", err))
		return err
	}
	r.logger.Trace("Created request record", r.logger.Args("id", record.ID, "source", record.SourceName))
	return nil
}

// CreateBatch inserts records in chunks, skipping duplicates by request hash.
// It returns the number of rows actually inserted.
func (r *requestRecordRepo) CreateBatch(records []*models.RequestRecord) (int, error) {
	if len(records) == 0 {
		r.logger.Debug("Empty batch, skipping insert")
		return 0, nil
	}

	total := 0
	for i := 0; i < len(records); i += MaxRecordsPerBatch {
		end := min(i+MaxRecordsPerBatch, len(records))

		inserted, err := r.insertSubBatch(records[i:end])
		if err != nil {
			r.logger.WithCaller().Error("Failed to insert sub-batch",
				r.logger.Args("batch_num", (i/MaxRecordsPerBatch)+1, "count", end-i, "error", err))
			return total, err
		}
		total += inserted
	}

	if duplicates := len(records) - total; duplicates > 0 {
		r.logger.Debug("Skipped duplicate entries",
			r.logger.Args("batch_size", len(records), "inserted", total, "duplicates", duplicates))
	}
	return total, nil
}

func (r *requestRecordRepo) insertSubBatch(records []*models.RequestRecord) (int, error) {
	// Dedupe in memory first, the conflict clause only covers rows already stored.
	unique := make([]*models.RequestRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.RequestHash != "" {
			if seen[rec.RequestHash] {
				continue
			}
			seen[rec.RequestHash] = true
		}
		unique = append(unique, rec)
	}

	if len(unique) == 0 {
		return 0, nil
	}

	var inserted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_hash"}},
			DoNothing: true,
		}).Create(&unique)
		inserted = result.RowsAffected
		return result.Error
	})
	return int(inserted), err
}

// FindByID retrieves a record by ID
func (r *requestRecordRepo) FindByID(id uint) (*models.RequestRecord, error) {
	var record models.RequestRecord
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Trace("Request record not found", r.logger.Args("id", id))
			return nil, err
		}
		r.logger.WithCaller().Error("Failed to find request record", r.logger.Args("id", id, "error", err))
		return nil, err
	}
	return &record, nil
}

// Latest returns records newest first
func (r *requestRecordRepo) Latest(limit int, offset int, filter RecordFilter) ([]*models.RequestRecord, error) {
	var records []*models.RequestRecord
	query := applyRecordFilter(r.db.Model(&models.RequestRecord{}), filter).Order("timestamp DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&records).Error; err != nil {
		r.logger.WithCaller().Error("Failed to find request records", r.logger.Args("error", err))
		return nil, err
	}

	r.logger.Trace("Found request records", r.logger.Args("count", len(records), "limit", limit, "offset", offset))
	return records, nil
}

// Count returns the number of records matching filter
func (r *requestRecordRepo) Count(filter RecordFilter) (int64, error) {
	var count int64
	if err := applyRecordFilter(r.db.Model(&models.RequestRecord{}), filter).Count(&count).Error; err != nil {
		r.logger.WithCaller().Error("Failed to count request records", r.logger.Args("error", err))
		return 0, err
	}
	return count, nil
}

// HasExistingData reports whether any record is stored
func (r *requestRecordRepo) HasExistingData() (bool, error) {
	var record models.RequestRecord
	err := r.db.Select("id").Limit(1).Find(&record).Error
	if err != nil {
		return false, err
	}
	return record.ID != 0, nil
}

func applyRecordFilter(query *gorm.DB, filter RecordFilter) *gorm.DB {
	if filter.SourceName != "" {
		query = query.Where("source_name = ?", filter.SourceName)
	}
	if filter.Family != "" {
		query = query.Where("ua_family = ?", filter.Family)
	}
	if filter.Domain != "" {
		query = query.Where("domain = ?", filter.Domain)
	}
	if filter.IsBot != nil {
		query = query.Where("is_bot = ?", *filter.IsBot)
	}
	return query
}
