package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/moovierec/internal/model"
	"gorm.io/gorm"
)

type RecommendationRepository struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// ReplaceForUser 在同一事务中删除用户旧推荐并写入新推荐，失败时整体回滚
//
// PostgreSQL 下额外持有以用户 ID 为键的事务级咨询锁，多实例并发替换时串行执行。
func (r *RecommendationRepository) ReplaceForUser(ctx context.Context, userID int, recs []*model.Recommendation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", userID).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Recommendation{}).Error; err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil
		}
		return tx.CreateInBatches(recs, 100).Error
	})
	if err != nil {
		return fmt.Errorf("替换用户 %d 的推荐失败: %w", userID, err)
	}
	return nil
}

// ListByUser 按排名获取用户推荐
func (r *RecommendationRepository) ListByUser(ctx context.Context, userID, limit int) ([]*model.Recommendation, error) {
	var recs []*model.Recommendation
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("rank ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("查询用户推荐失败: %w", err)
	}
	return recs, nil
}

// DeleteByUser 删除用户全部推荐，返回删除条数
func (r *RecommendationRepository) DeleteByUser(ctx context.Context, userID int) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Recommendation{})
	return res.RowsAffected, res.Error
}

// Summary 用户推荐条数与最近生成时间
func (r *RecommendationRepository) Summary(ctx context.Context, userID int) (*model.RecommendationSummary, error) {
	summary := &model.RecommendationSummary{}
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Recommendation{}).Where("user_id = ?", userID).Count(&summary.Count).Error; err != nil {
		return nil, err
	}
	if summary.Count == 0 {
		return summary, nil
	}

	var latest model.Recommendation
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Take(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		summary.LastGenerated = &latest.CreatedAt
	}
	return summary, nil
}

// DeleteOlderThan 清理过期推荐
func (r *RecommendationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.Recommendation{})
	return res.RowsAffected, res.Error
}
