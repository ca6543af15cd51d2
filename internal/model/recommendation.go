package model

import "time"

// 推荐算法标签
const (
	AlgorithmKNN      = "knn"
	AlgorithmNB       = "nb"
	AlgorithmPopular  = "popular"
	AlgorithmTopRated = "top_rated"
)

// Recommendation 推荐结果，每次生成会整体替换该用户的旧记录
type Recommendation struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"not null;uniqueIndex:idx_rec_user_movie_algo;index"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"not null;uniqueIndex:idx_rec_user_movie_algo"`
	Algorithm string    `json:"algorithm" db:"algorithm" gorm:"size:16;not null;uniqueIndex:idx_rec_user_movie_algo"`
	Score     float64   `json:"score" db:"score"`
	Rank      int       `json:"rank" db:"rank"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"index"`
}

// JobCursor 批处理任务的游标
type JobCursor struct {
	Name      string    `json:"name" db:"name" gorm:"primaryKey;size:64"`
	Position  int       `json:"position" db:"position"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RecommendationSummary 用户推荐记录概况
type RecommendationSummary struct {
	Count         int64      `json:"count"`
	LastGenerated *time.Time `json:"last_generated"`
}
