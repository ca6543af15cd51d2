package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/user/moovierec/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert 创建或覆盖评分，每个 (user, movie) 只保留最新一条
func (r *RatingRepository) Upsert(ctx context.Context, rating *model.Rating) error {
	if rating.RatedAt.IsZero() {
		rating.RatedAt = time.Now()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "rated_at"}),
	}).Create(rating).Error
	if err != nil {
		return fmt.Errorf("保存评分失败: %w", err)
	}
	return nil
}

// ListByUser 按评分时间倒序获取用户评分，limit <= 0 表示全部
func (r *RatingRepository) ListByUser(ctx context.Context, userID, limit int) ([]*model.Rating, error) {
	var ratings []*model.Rating
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("rated_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("查询用户评分失败: %w", err)
	}
	return ratings, nil
}

// CountByUser 统计用户评分数量
func (r *RatingRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Rating{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

// MovieStats 每部电影的评分人数与平均分
func (r *RatingRepository) MovieStats(ctx context.Context) ([]model.MovieStat, error) {
	var stats []model.MovieStat
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Select("movie_id, COUNT(*) AS count, AVG(score) AS avg_score").
		Group("movie_id").
		Order("movie_id ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("统计电影评分失败: %w", err)
	}
	return stats, nil
}

// UserIDsAfter 按 ID 升序获取 afterID 之后有评分的用户
func (r *RatingRepository) UserIDsAfter(ctx context.Context, afterID, limit int) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Where("user_id > ?", afterID).
		Distinct().
		Order("user_id ASC").
		Limit(limit).
		Pluck("user_id", &ids).Error
	return ids, err
}
