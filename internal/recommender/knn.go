package recommender

import (
	"sort"

	"github.com/user/moovierec/internal/model"
)

// ScoredMovie 某算法给出的候选电影得分
type ScoredMovie struct {
	MovieID   int     `json:"movie_id"`
	Score     float64 `json:"score"`
	Algorithm string  `json:"algorithm"`
}

// RankStructural 每个候选取与喜欢的电影中最相似者的得分，保留得分大于 0 的前 k 个
func RankStructural(space *StructuralSpace, liked, candidates []*model.Movie, w CategoryWeights, cfg SimilarityConfig, k int) []ScoredMovie {
	if k <= 0 || len(liked) == 0 {
		return nil
	}
	likedVecs := make([]*StructuralVector, len(liked))
	for i, m := range liked {
		likedVecs[i] = space.Vector(m)
	}

	scored := make([]ScoredMovie, 0, len(candidates))
	for _, m := range candidates {
		cv := space.Vector(m)
		var best float64
		for _, lv := range likedVecs {
			if s := space.Similarity(lv, cv, w, cfg); s > best {
				best = s
			}
		}
		if best > 0 {
			scored = append(scored, ScoredMovie{MovieID: m.ID, Score: best, Algorithm: model.AlgorithmKNN})
		}
	}
	return topK(scored, k)
}

// RankTextual 训练朴素贝叶斯并给候选打分，保留后验不低于 MinPosterior 且高于先验的前 k 个
//
// 喜欢或不喜欢的电影为空时返回 ErrInsufficientSignal。
func RankTextual(liked, disliked, candidates []*model.Movie, cfg TextConfig, k int) ([]ScoredMovie, error) {
	if k <= 0 || len(candidates) == 0 {
		return nil, nil
	}
	if len(liked) == 0 || len(disliked) == 0 {
		return nil, ErrInsufficientSignal
	}

	corpus := make([]*model.Movie, 0, len(liked)+len(disliked)+len(candidates))
	corpus = append(corpus, liked...)
	corpus = append(corpus, disliked...)
	corpus = append(corpus, candidates...)
	space := NewTextSpace(corpus, cfg)

	vectors := func(movies []*model.Movie) []TextVector {
		out := make([]TextVector, len(movies))
		for i, m := range movies {
			out[i] = space.Vector(m.ID)
		}
		return out
	}
	nb, err := TrainNaiveBayes(vectors(liked), vectors(disliked), space.Size(), cfg.Alpha)
	if err != nil {
		return nil, err
	}

	// 没有词表内词语的候选没有文本信号，后验只是先验，不参与排序
	prior := nb.Prior()
	scored := make([]ScoredMovie, 0, len(candidates))
	for _, m := range candidates {
		v := space.Vector(m.ID)
		if len(v) == 0 {
			continue
		}
		if p := nb.Posterior(v); p >= cfg.MinPosterior && p > prior {
			scored = append(scored, ScoredMovie{MovieID: m.ID, Score: p, Algorithm: model.AlgorithmNB})
		}
	}
	return topK(scored, k), nil
}

// topK 按得分降序、电影 ID 升序排序后截断
func topK(scored []ScoredMovie, k int) []ScoredMovie {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].MovieID < scored[j].MovieID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
