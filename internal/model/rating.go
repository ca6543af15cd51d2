package model

import "time"

// 评分范围
const (
	MinScore = 1
	MaxScore = 10
)

// Rating 用户评分，每个 (user, movie) 仅保留一条
type Rating struct {
	ID        int       `json:"id" db:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"not null;uniqueIndex:idx_rating_user_movie;index"`
	MovieID   int       `json:"movie_id" db:"movie_id" gorm:"not null;uniqueIndex:idx_rating_user_movie"`
	Score     int       `json:"score" db:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	RatedAt   time.Time `json:"rated_at" db:"rated_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MovieStat 电影评分统计（热门度）
type MovieStat struct {
	MovieID  int     `json:"movie_id"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}
