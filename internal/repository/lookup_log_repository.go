package repository

import (
	"order_tracker/internal/models"
	"time"

	"gorm.io/gorm"
)

type LookupLogRepository interface {
	Create(entry *models.LookupLog) error
	GetByOrderCode(orderCode string, limit int) ([]models.LookupLog, error)
	GetByDateRange(startDate, endDate time.Time) ([]models.LookupLog, error)
	CountByOutcome(since time.Time) (map[string]int64, error)
}

type lookupLogRepository struct {
	db *gorm.DB
}

func NewLookupLogRepository(db *gorm.DB) LookupLogRepository {
	return &lookupLogRepository{db: db}
}

func (r *lookupLogRepository) Create(entry *models.LookupLog) error {
	return r.db.Create(entry).Error
}

func (r *lookupLogRepository) GetByOrderCode(orderCode string, limit int) ([]models.LookupLog, error) {
	var entries []models.LookupLog
	query := r.db.Where("order_code = ?", orderCode).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}

func (r *lookupLogRepository) GetByDateRange(startDate, endDate time.Time) ([]models.LookupLog, error) {
	var entries []models.LookupLog
	err := r.db.Where("created_at BETWEEN ? AND ?", startDate, endDate).Order("created_at").Find(&entries).Error
	return entries, err
}

func (r *lookupLogRepository) CountByOutcome(since time.Time) (map[string]int64, error) {
	var rows []struct {
		Outcome string
		Total   int64
	}
	err := r.db.Model(&models.LookupLog{}).
		Select("outcome, COUNT(*) AS total").
		Where("created_at >= ?", since).
		Group("outcome").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Outcome] = row.Total
	}
	return counts, nil
}
