package recommender

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/user/moovierec/internal/logger"
	"github.com/user/moovierec/internal/metrics"
	"github.com/user/moovierec/internal/model"
	"golang.org/x/sync/singleflight"
)

// CatalogSource 片库读取
type CatalogSource interface {
	// ListMovies 返回全部电影，需预加载类型/演员/导演
	ListMovies(ctx context.Context) ([]*model.Movie, error)
	// FindByID 未找到时返回 (nil, nil)
	FindByID(ctx context.Context, id int) (*model.Movie, error)
}

// RatingSource 评分读取
type RatingSource interface {
	// ListByUser 按评分时间倒序，limit <= 0 表示不限制
	ListByUser(ctx context.Context, userID, limit int) ([]*model.Rating, error)
	CountByUser(ctx context.Context, userID int) (int, error)
	// MovieStats 每部电影的评分人数与平均分
	MovieStats(ctx context.Context) ([]model.MovieStat, error)
}

// RecommendationStore 推荐结果存储
type RecommendationStore interface {
	// ReplaceForUser 在一个事务内删除旧记录并写入新记录
	ReplaceForUser(ctx context.Context, userID int, recs []*model.Recommendation) error
	ListByUser(ctx context.Context, userID, limit int) ([]*model.Recommendation, error)
	DeleteByUser(ctx context.Context, userID int) (int64, error)
	Summary(ctx context.Context, userID int) (*model.RecommendationSummary, error)
}

// Status 推荐状态
type Status struct {
	Eligible           bool       `json:"eligible"`
	RatingsCount       int        `json:"ratings_count"`
	MinRequired        int        `json:"min_required"`
	HasRecommendations bool       `json:"has_recommendations"`
	LastGenerated      *time.Time `json:"last_generated"`
	Message            string     `json:"message"`
}

// GenerateResult 一次生成的结果
type GenerateResult struct {
	Success         bool          `json:"success"`
	Recommendations []ScoredMovie `json:"recommendations"`
	Message         string        `json:"message"`

	outcome string
}

// Engine 推荐引擎，可被多个 goroutine 并发使用
type Engine struct {
	cfg     Config
	catalog CatalogSource
	ratings RatingSource
	store   RecommendationStore
	log     *logger.Logger
	flights singleflight.Group
	now     func() time.Time
}

// NewEngine 创建推荐引擎，配置无效时返回错误
func NewEngine(cfg Config, catalog CatalogSource, ratings RatingSource, store RecommendationStore, log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if catalog == nil || ratings == nil || store == nil {
		return nil, errors.New("推荐引擎缺少数据源")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		cfg:     cfg,
		catalog: catalog,
		ratings: ratings,
		store:   store,
		log:     log.With("component", "recommender", "config_version", cfg.Version),
		now:     time.Now,
	}, nil
}

// Config 引擎配置副本
func (e *Engine) Config() Config {
	return e.cfg
}

// Status 查询用户的推荐状态
func (e *Engine) Status(ctx context.Context, userID int) (*Status, error) {
	count, err := e.ratings.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("统计评分失败: %w", err)
	}
	summary, err := e.store.Summary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询推荐记录失败: %w", err)
	}

	st := &Status{
		RatingsCount: count,
		MinRequired:  e.cfg.Eligibility.MinUserRatings,
	}
	if summary != nil {
		st.HasRecommendations = summary.Count > 0
		st.LastGenerated = summary.LastGenerated
	}

	var ie *IneligibleError
	switch err := checkEligibility(count, st.MinRequired); {
	case errors.As(err, &ie):
		st.Message = ie.Message()
	case st.HasRecommendations:
		st.Eligible = true
		st.Message = "推荐已生成"
	default:
		st.Eligible = true
		st.Message = "可以生成推荐"
	}
	return st, nil
}

// Generate 为用户重新生成推荐并整体替换旧结果
//
// 同一用户的并发调用只会执行一次，所有调用方得到同一结果。
// 生成一旦开始就会执行完毕，不受任何调用方取消的影响；ctx 结束时该调用方提前返回 ctx.Err()。
// 资格不足、没有候选等情况通过 Success=false 返回；只有数据读取与写入失败才返回 error。
func (e *Engine) Generate(ctx context.Context, userID int) (*GenerateResult, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := e.flights.DoChan(strconv.Itoa(userID), func() (interface{}, error) {
		return e.generate(flightCtx, userID)
	})

	var r singleflight.Result
	select {
	case r = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if r.Err != nil {
		return nil, r.Err
	}
	res := *r.Val.(*GenerateResult)
	res.Recommendations = append([]ScoredMovie{}, res.Recommendations...)
	return &res, nil
}

func (e *Engine) generate(ctx context.Context, userID int) (*GenerateResult, error) {
	start := time.Now()
	log := e.log.FromContext(ctx).With("user_id", userID)

	res, err := e.run(ctx, log, userID)
	if err != nil {
		log.Error("生成推荐失败", "error", err)
		metrics.RecordGeneration(metrics.OutcomeError, time.Since(start))
		return nil, err
	}
	metrics.RecordGeneration(res.outcome, time.Since(start))
	return res, nil
}

func (e *Engine) run(ctx context.Context, log *logger.Logger, userID int) (*GenerateResult, error) {
	count, err := e.ratings.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("统计评分失败: %w", err)
	}
	var ie *IneligibleError
	if err := checkEligibility(count, e.cfg.Eligibility.MinUserRatings); errors.As(err, &ie) {
		log.Info("评分数量不足，跳过生成", "ratings_count", count, "needed", ie.Needed())
		return &GenerateResult{Recommendations: []ScoredMovie{}, Message: ie.Message(), outcome: metrics.OutcomeIneligible}, nil
	}

	ratings, err := e.ratings.ListByUser(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("读取评分失败: %w", err)
	}
	movies, err := e.catalog.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取片库失败: %w", err)
	}
	stats, err := e.ratings.MovieStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取评分统计失败: %w", err)
	}

	byID := make(map[int]*model.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}
	if err := e.resolveRated(ctx, ratings, byID); err != nil {
		return nil, err
	}

	rated := make(map[int]struct{}, len(ratings))
	for _, r := range ratings {
		rated[r.MovieID] = struct{}{}
	}
	pool := make([]*model.Movie, 0, len(movies))
	for _, m := range movies {
		if _, ok := rated[m.ID]; !ok {
			pool = append(pool, m)
		}
	}
	if len(pool) == 0 {
		log.Warn("没有候选电影", "error", ErrNoCandidates, "rated", len(rated))
		return &GenerateResult{
			Recommendations: []ScoredMovie{},
			Message:         "没有可推荐的电影，您已看过片库中的全部电影",
			outcome:         metrics.OutcomeNoCandidates,
		}, nil
	}

	popularity := NewPopularityRanking(stats)
	popularity.SortPopular(pool)
	candidates := pool
	if len(candidates) > e.cfg.Ranking.MaxCandidates {
		candidates = candidates[:e.cfg.Ranking.MaxCandidates]
	}

	profile := BuildProfile(userID, ratings, byID, e.cfg, log)
	log.Debug("用户画像",
		"liked", len(profile.Liked), "disliked", len(profile.Disliked),
		"weights", profile.Weights, "candidates", len(candidates))

	picked := e.pick(log, profile, movies, candidates)
	picked = e.backfill(picked, popularity.Rank(pool, e.cfg.Ranking.ColdStartStrategy))

	now := e.now()
	recs := make([]*model.Recommendation, len(picked))
	produced := make(map[string]int)
	for i, p := range picked {
		recs[i] = &model.Recommendation{
			UserID:    userID,
			MovieID:   p.MovieID,
			Algorithm: p.Algorithm,
			Score:     p.Score,
			Rank:      i + 1,
			CreatedAt: now,
		}
		produced[p.Algorithm]++
	}
	if err := e.store.ReplaceForUser(ctx, userID, recs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	metrics.RecordProduced(produced)

	log.Info("推荐已生成", "count", len(picked), "by_algorithm", produced)
	return &GenerateResult{
		Success:         true,
		Recommendations: picked,
		Message:         fmt.Sprintf("已生成 %d 条推荐", len(picked)),
		outcome:         metrics.OutcomeSuccess,
	}, nil
}

// pick 依次执行结构相似度和文本两路算法，后者跳过前者已选中的电影
func (e *Engine) pick(log *logger.Logger, profile *Profile, catalog, candidates []*model.Movie) []ScoredMovie {
	if len(profile.Liked) == 0 {
		metrics.SignalSkips.WithLabelValues(model.AlgorithmKNN).Inc()
		metrics.SignalSkips.WithLabelValues(model.AlgorithmNB).Inc()
		log.Info("没有喜欢的电影，使用冷启动推荐", "error", ErrInsufficientSignal)
		return nil
	}

	space := NewStructuralSpace(catalog, e.cfg.Features, log)
	picked := RankStructural(space, profile.Liked, candidates, profile.Weights, e.cfg.Similarity, e.cfg.Ranking.KNNTopK)

	chosen := make(map[int]struct{}, len(picked))
	for _, p := range picked {
		chosen[p.MovieID] = struct{}{}
	}
	remaining := make([]*model.Movie, 0, len(candidates))
	for _, m := range candidates {
		if _, ok := chosen[m.ID]; !ok {
			remaining = append(remaining, m)
		}
	}

	textual, err := RankTextual(profile.Liked, profile.Disliked, remaining, e.cfg.Text, e.cfg.Ranking.NBTopK)
	if errors.Is(err, ErrInsufficientSignal) {
		metrics.SignalSkips.WithLabelValues(model.AlgorithmNB).Inc()
		log.Info("跳过文本推荐", "error", err, "liked", len(profile.Liked), "disliked", len(profile.Disliked))
	}
	return append(picked, textual...)
}

// backfill 截断到 NumRecommendations，不足时按冷启动排序补齐
func (e *Engine) backfill(picked, ranked []ScoredMovie) []ScoredMovie {
	limit := e.cfg.Ranking.NumRecommendations
	if len(picked) > limit {
		return picked[:limit]
	}
	chosen := make(map[int]struct{}, len(picked))
	for _, p := range picked {
		chosen[p.MovieID] = struct{}{}
	}
	for _, r := range ranked {
		if len(picked) >= limit {
			break
		}
		if _, ok := chosen[r.MovieID]; ok {
			continue
		}
		chosen[r.MovieID] = struct{}{}
		picked = append(picked, r)
	}
	return picked
}

// resolveRated 片库快照中缺失的已评分电影逐个回查，仍不存在的留给 BuildProfile 跳过
func (e *Engine) resolveRated(ctx context.Context, ratings []*model.Rating, byID map[int]*model.Movie) error {
	limit := e.cfg.Eligibility.RecentRatingsLimit
	for i, r := range ratings {
		if i >= limit {
			break
		}
		if _, ok := byID[r.MovieID]; ok {
			continue
		}
		m, err := e.catalog.FindByID(ctx, r.MovieID)
		if err != nil {
			return fmt.Errorf("读取电影 %d 失败: %w", r.MovieID, err)
		}
		if m != nil {
			byID[m.ID] = m
		}
	}
	return nil
}

// List 读取最近一次生成的推荐，不重新计算
func (e *Engine) List(ctx context.Context, userID, limit int) ([]*model.Recommendation, error) {
	if limit <= 0 || limit > e.cfg.Ranking.NumRecommendations {
		limit = e.cfg.Ranking.NumRecommendations
	}
	recs, err := e.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("读取推荐失败: %w", err)
	}
	return recs, nil
}

// Delete 删除用户的全部推荐，返回是否删除了记录
func (e *Engine) Delete(ctx context.Context, userID int) (bool, error) {
	n, err := e.store.DeleteByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("删除推荐失败: %w", err)
	}
	e.log.FromContext(ctx).Info("推荐已删除", "user_id", userID, "rows", n)
	return n > 0, nil
}
