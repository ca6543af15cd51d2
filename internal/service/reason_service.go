package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/moovierec/internal/model"
	"github.com/user/moovierec/internal/recommender"
)

// Explanation 带推荐理由的推荐
type Explanation struct {
	Recommendation *model.Recommendation `json:"recommendation"`
	Movie          *model.Movie          `json:"movie"`
	BasedOn        *model.Movie          `json:"based_on,omitempty"`
	Reason         string                `json:"reason"`
	ReasonType     string                `json:"reason_type"`
	Similarity     float64               `json:"similarity"`
}

// ReasonService 为已生成的推荐配上理由
type ReasonService struct {
	engine  *recommender.Engine
	catalog recommender.CatalogSource
	ratings recommender.RatingSource
}

// NewReasonService 创建推荐理由服务
func NewReasonService(engine *recommender.Engine, catalog recommender.CatalogSource, ratings recommender.RatingSource) *ReasonService {
	return &ReasonService{engine: engine, catalog: catalog, ratings: ratings}
}

// Explain 读取用户最近一次的推荐并逐条生成理由，不重新计算推荐
func (s *ReasonService) Explain(ctx context.Context, userID, limit int) ([]Explanation, error) {
	recs, err := s.engine.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return []Explanation{}, nil
	}

	liked, err := s.likedMovies(ctx, userID)
	if err != nil {
		return nil, err
	}
	topActors := s.engine.Config().Features.TopBilledActors

	result := make([]Explanation, 0, len(recs))
	for _, rec := range recs {
		movie, err := s.catalog.FindByID(ctx, rec.MovieID)
		if err != nil {
			return nil, err
		}
		if movie == nil {
			continue
		}

		exp := Explanation{Recommendation: rec, Movie: movie, Similarity: rec.Score}
		switch rec.Algorithm {
		case model.AlgorithmPopular:
			exp.Reason, exp.ReasonType = "近期评分人数最多的电影之一", ReasonPopular
		case model.AlgorithmTopRated:
			exp.Reason, exp.ReasonType = "平均评分位居前列的口碑佳作", ReasonTopRated
		case model.AlgorithmNB:
			exp.BasedOn, exp.Reason, exp.ReasonType = textualReason(movie, liked)
		default:
			var best float64
			for _, l := range liked {
				reason, reasonType, score := GenerateRecommendationReason(l, movie, topActors)
				if exp.BasedOn == nil || score > best {
					best = score
					exp.BasedOn, exp.Reason, exp.ReasonType = l, reason, reasonType
				}
			}
			if exp.BasedOn == nil {
				exp.Reason, exp.ReasonType = "基于内容相似度推荐", ReasonGeneral
			}
		}
		result = append(result, exp)
	}
	return result, nil
}

// likedMovies 画像窗口内用户喜欢的电影
func (s *ReasonService) likedMovies(ctx context.Context, userID int) ([]*model.Movie, error) {
	cfg := s.engine.Config().Eligibility
	ratings, err := s.ratings.ListByUser(ctx, userID, cfg.RecentRatingsLimit)
	if err != nil {
		return nil, err
	}
	liked := make([]*model.Movie, 0, len(ratings))
	for _, r := range ratings {
		if r.Score < cfg.PositiveRatingThreshold {
			continue
		}
		m, err := s.catalog.FindByID(ctx, r.MovieID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			liked = append(liked, m)
		}
	}
	return liked, nil
}

// textualReason 找出与候选简介共享词最多的喜欢的电影，最多列出 3 个关键词
func textualReason(movie *model.Movie, liked []*model.Movie) (*model.Movie, string, string) {
	tokens := recommender.Tokenize(movie.Description)
	var best *model.Movie
	var bestShared []string
	for _, l := range liked {
		shared := commonNames(tokens, recommender.Tokenize(l.Description))
		if len(shared) > len(bestShared) {
			best, bestShared = l, shared
		}
	}
	if best == nil {
		return nil, "剧情内容契合你的观影口味", ReasonTextual
	}
	if len(bestShared) > 3 {
		bestShared = bestShared[:3]
	}
	return best, fmt.Sprintf("剧情与《%s》相近，同样涉及%s等元素", best.Title, strings.Join(bestShared, "、")), ReasonTextual
}
