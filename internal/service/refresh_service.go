package service

import (
	"context"
	"sync"
	"time"

	"github.com/user/moovierec/internal/logger"
	"github.com/user/moovierec/internal/metrics"
	"github.com/user/moovierec/internal/recommender"
)

const refreshCursorName = "recommendation_refresh"

// Generator 推荐生成
type Generator interface {
	Generate(ctx context.Context, userID int) (*recommender.GenerateResult, error)
}

// UserLister 按 ID 顺序分批列出有评分的用户
type UserLister interface {
	UserIDsAfter(ctx context.Context, afterID, limit int) ([]int, error)
}

// CursorStore 任务游标
type CursorStore interface {
	Get(ctx context.Context, name string) (int, error)
	Save(ctx context.Context, name string, position int) error
}

// RecommendationCleaner 过期推荐清理
type RecommendationCleaner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RefreshOptions 定时刷新参数
type RefreshOptions struct {
	Interval  time.Duration
	BatchSize int
	Retention time.Duration // 0 表示不清理过期推荐
}

// RefreshService 定时为有评分的用户重新生成推荐
//
// 按用户 ID 分批处理，每批结束后保存游标；进程重启后从游标处继续，全部处理完后游标归零。
type RefreshService struct {
	generator Generator
	users     UserLister
	cursors   CursorStore
	cleaner   RecommendationCleaner
	opts      RefreshOptions
	log       *logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewRefreshService 创建刷新服务
func NewRefreshService(generator Generator, users UserLister, cursors CursorStore, cleaner RecommendationCleaner, opts RefreshOptions, log *logger.Logger) *RefreshService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &RefreshService{
		generator: generator,
		users:     users,
		cursors:   cursors,
		cleaner:   cleaner,
		opts:      opts,
		log:       log.With("component", "refresh"),
		now:       time.Now,
	}
}

// Start 启动定时任务，Interval <= 0 时不启动
func (s *RefreshService) Start(ctx context.Context) {
	if s.opts.Interval <= 0 {
		s.log.Info("定时刷新已关闭")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.opts.Interval)
		defer ticker.Stop()

		// 启动时先运行一次
		s.run(ctx)
		for {
			select {
			case <-ticker.C:
				s.run(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop 停止定时任务并等待当前批次结束
func (s *RefreshService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *RefreshService) run(ctx context.Context) {
	users, err := s.RunOnce(ctx)
	if err != nil {
		s.log.Error("刷新推荐失败", "error", err)
		return
	}
	s.log.Info("刷新推荐完成", "users", users)
}

// RunOnce 从游标处开始处理所有剩余用户，返回本次生成的用户数
func (s *RefreshService) RunOnce(ctx context.Context) (int, error) {
	after, err := s.cursors.Get(ctx, refreshCursorName)
	if err != nil {
		return 0, err
	}
	if after > 0 {
		s.log.Info("从游标处继续刷新", "after_user_id", after)
	}

	var total int
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		ids, err := s.users.UserIDsAfter(ctx, after, s.opts.BatchSize)
		if err != nil {
			metrics.RefreshRunsTotal.WithLabelValues("error").Inc()
			return total, err
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			res, err := s.generator.Generate(ctx, id)
			if err != nil {
				s.log.Warn("用户推荐刷新失败", "user_id", id, "error", err)
				continue
			}
			if res.Success {
				total++
				metrics.RefreshUsersTotal.Inc()
			}
		}

		after = ids[len(ids)-1]
		if err := s.cursors.Save(ctx, refreshCursorName, after); err != nil {
			metrics.RefreshRunsTotal.WithLabelValues("error").Inc()
			return total, err
		}
		metrics.RefreshRunsTotal.WithLabelValues("ok").Inc()
	}

	if err := s.cursors.Save(ctx, refreshCursorName, 0); err != nil {
		return total, err
	}
	s.cleanup(ctx)
	return total, nil
}

func (s *RefreshService) cleanup(ctx context.Context) {
	if s.opts.Retention <= 0 || s.cleaner == nil {
		return
	}
	affected, err := s.cleaner.DeleteOlderThan(ctx, s.now().Add(-s.opts.Retention))
	if err != nil {
		s.log.Error("清理过期推荐失败", "error", err)
		return
	}
	if affected > 0 {
		s.log.Info("已清理过期推荐", "rows", affected)
	}
}
