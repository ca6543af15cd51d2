package repository

import (
	"context"
	"errors"
	"time"

	"github.com/user/moovierec/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobCursorRepository 批处理任务的断点游标
type JobCursorRepository struct {
	db *gorm.DB
}

func NewJobCursorRepository(db *gorm.DB) *JobCursorRepository {
	return &JobCursorRepository{db: db}
}

// Get 获取游标位置，不存在时返回 0
func (r *JobCursorRepository) Get(ctx context.Context, name string) (int, error) {
	var cursor model.JobCursor
	err := r.db.WithContext(ctx).Where("name = ?", name).Take(&cursor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cursor.Position, nil
}

// Save 保存游标位置
func (r *JobCursorRepository) Save(ctx context.Context, name string, position int) error {
	cursor := &model.JobCursor{Name: name, Position: position, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"position", "updated_at"}),
	}).Create(cursor).Error
}
