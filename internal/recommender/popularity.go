package recommender

import (
	"sort"

	"github.com/user/moovierec/internal/model"
)

// PopularityRanking 冷启动排序
type PopularityRanking struct {
	stats    map[int]model.MovieStat
	maxCount int
}

// NewPopularityRanking 由评分统计构建
func NewPopularityRanking(stats []model.MovieStat) *PopularityRanking {
	r := &PopularityRanking{stats: make(map[int]model.MovieStat, len(stats))}
	for _, s := range stats {
		r.stats[s.MovieID] = s
		if s.Count > r.maxCount {
			r.maxCount = s.Count
		}
	}
	return r
}

// SortPopular 按评分人数降序、平均分降序、ID 升序排序（原地）
func (r *PopularityRanking) SortPopular(movies []*model.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := r.stats[movies[i].ID], r.stats[movies[j].ID]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.AvgScore != b.AvgScore {
			return a.AvgScore > b.AvgScore
		}
		return movies[i].ID < movies[j].ID
	})
}

// SortTopRated 按平均分降序、评分人数降序、ID 升序排序（原地）
func (r *PopularityRanking) SortTopRated(movies []*model.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		a, b := r.stats[movies[i].ID], r.stats[movies[j].ID]
		if a.AvgScore != b.AvgScore {
			return a.AvgScore > b.AvgScore
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return movies[i].ID < movies[j].ID
	})
}

// Rank 按策略排序并给出归一化得分
func (r *PopularityRanking) Rank(movies []*model.Movie, strategy string) []ScoredMovie {
	sorted := make([]*model.Movie, len(movies))
	copy(sorted, movies)

	out := make([]ScoredMovie, 0, len(sorted))
	switch strategy {
	case model.AlgorithmTopRated:
		r.SortTopRated(sorted)
		for _, m := range sorted {
			out = append(out, ScoredMovie{
				MovieID:   m.ID,
				Score:     r.stats[m.ID].AvgScore / float64(model.MaxScore),
				Algorithm: model.AlgorithmTopRated,
			})
		}
	default:
		r.SortPopular(sorted)
		for _, m := range sorted {
			var score float64
			if r.maxCount > 0 {
				score = float64(r.stats[m.ID].Count) / float64(r.maxCount)
			}
			out = append(out, ScoredMovie{MovieID: m.ID, Score: score, Algorithm: model.AlgorithmPopular})
		}
	}
	return out
}
