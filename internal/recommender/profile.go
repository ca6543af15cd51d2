package recommender

import (
	"math"
	"sort"

	"github.com/user/moovierec/internal/logger"
	"github.com/user/moovierec/internal/metrics"
	"github.com/user/moovierec/internal/model"
)

// EntityCount 实体及其在喜欢的电影中出现的次数
type EntityCount struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// Profile 用户偏好画像，每次生成时临时计算，不落库
type Profile struct {
	UserID   int
	Liked    []*model.Movie
	Disliked []*model.Movie
	Weights  CategoryWeights
	// Favorites 各类别在喜欢的电影中出现次数最多的实体，按次数降序
	Favorites [numCategories][]EntityCount
}

// Favorite 某类别最常出现的实体
func (p *Profile) Favorite(c Category) (EntityCount, bool) {
	if len(p.Favorites[c]) == 0 {
		return EntityCount{}, false
	}
	return p.Favorites[c][0], true
}

// BuildProfile 根据最近的评分构建画像
//
// ratings 需按评分时间倒序，只取前 RecentRatingsLimit 条。movies 中找不到的电影记为
// 数据完整性问题并跳过。
func BuildProfile(userID int, ratings []*model.Rating, movies map[int]*model.Movie, cfg Config, log *logger.Logger) *Profile {
	if log == nil {
		log = logger.NewNop()
	}
	if len(ratings) > cfg.Eligibility.RecentRatingsLimit {
		ratings = ratings[:cfg.Eligibility.RecentRatingsLimit]
	}

	p := &Profile{UserID: userID}
	for _, r := range ratings {
		m, ok := movies[r.MovieID]
		if !ok || m == nil {
			metrics.DataIntegrityIssues.Inc()
			log.Warn("评分引用的电影不存在", "error", ErrDataIntegrity, "movie_id", r.MovieID)
			continue
		}
		switch {
		case r.Score >= cfg.Eligibility.PositiveRatingThreshold:
			p.Liked = append(p.Liked, m)
		case r.Score < cfg.Eligibility.NegativeRatingThreshold:
			p.Disliked = append(p.Disliked, m)
		}
	}

	var counts [numCategories]map[int]int
	for c := range counts {
		counts[c] = make(map[int]int)
	}
	for _, m := range p.Liked {
		for c, ids := range extractEntities(m, nil) {
			for _, id := range ids {
				counts[c][id]++
			}
		}
	}

	static := StaticWeights(cfg.Adaptive)
	weights := [numCategories]float64{}
	for c := Category(0); c < numCategories; c++ {
		p.Favorites[c] = rankEntities(counts[c])
		weights[c] = adaptiveWeight(p.Favorites[c], len(p.Liked), static.Of(c), cfg.Adaptive)
	}
	p.Weights = CategoryWeights{
		Genre:    weights[CategoryGenre],
		Actor:    weights[CategoryActor],
		Director: weights[CategoryDirector],
	}
	return p
}

// adaptiveWeight 集中度越高权重越大，范围 [BaseWeight, 1]；无信号时用静态权重
func adaptiveWeight(ranked []EntityCount, liked int, static float64, cfg AdaptiveConfig) float64 {
	if liked == 0 || len(ranked) == 0 {
		return static
	}
	concentration := float64(ranked[0].Count) / float64(liked)
	w := cfg.BaseWeight + cfg.ScalingFactor*concentration
	return math.Max(cfg.BaseWeight, math.Min(w, 1.0))
}

func rankEntities(counts map[int]int) []EntityCount {
	out := make([]EntityCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, EntityCount{ID: id, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}
