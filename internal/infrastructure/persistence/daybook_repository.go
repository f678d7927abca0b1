package persistence

import (
	"context"
	"time"

	"github.com/kahawa/backend/internal/domain/finance"
	"gorm.io/gorm"
)

// GormDaybookRepository implements DaybookRepository using GORM
type GormDaybookRepository struct {
	db *gorm.DB
}

// NewGormDaybookRepository creates a new GormDaybookRepository
func NewGormDaybookRepository(db *gorm.DB) *GormDaybookRepository {
	return &GormDaybookRepository{db: db}
}

func (r *GormDaybookRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// Save appends an entry
func (r *GormDaybookRepository) Save(ctx context.Context, entry *finance.DaybookEntry) error {
	return r.conn(ctx).Save(entry).Error
}

// FindByDate finds all entries for a given day
func (r *GormDaybookRepository) FindByDate(ctx context.Context, date time.Time) ([]finance.DaybookEntry, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	var entries []finance.DaybookEntry
	if err := r.conn(ctx).
		Where("entry_date >= ? AND entry_date < ?", day, day.AddDate(0, 0, 1)).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var _ finance.DaybookRepository = (*GormDaybookRepository)(nil)
