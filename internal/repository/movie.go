package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/user/moovierec/internal/metrics"
	"github.com/user/moovierec/internal/model"
	"github.com/user/moovierec/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const catalogCacheKey = "catalog:movies"

// MovieRepository 片库读取带读穿缓存，缓存中的电影只读
type MovieRepository struct {
	db       *gorm.DB
	snapshot *cache.Cache
	byID     *utils.LRUCache[int, *model.Movie]
	ttl      time.Duration
}

func NewMovieRepository(db *gorm.DB, ttl time.Duration) *MovieRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MovieRepository{
		db:       db,
		snapshot: utils.NewStore(ttl),
		byID:     utils.NewLRUCache[int, *model.Movie](2000, ttl),
		ttl:      ttl,
	}
}

// withAssociations 预加载类型、演职员（按署名顺序）、导演
func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Genres").
		Preload("Cast", func(db *gorm.DB) *gorm.DB {
			return db.Order("billing_order ASC, actor_id ASC")
		}).
		Preload("Cast.Actor").
		Preload("Directors")
}

// ListMovies 获取全部电影（按 ID 升序）
func (r *MovieRepository) ListMovies(ctx context.Context) ([]*model.Movie, error) {
	if v, ok := r.snapshot.Get(catalogCacheKey); ok {
		metrics.CatalogCacheHits.Inc()
		return v.([]*model.Movie), nil
	}
	metrics.CatalogCacheMisses.Inc()

	var movies []*model.Movie
	if err := withAssociations(r.db.WithContext(ctx)).Order("id ASC").Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("查询片库失败: %w", err)
	}
	r.snapshot.SetDefault(catalogCacheKey, movies)
	for _, m := range movies {
		r.byID.Set(m.ID, m)
	}
	return movies, nil
}

// FindByID 根据 ID 查找电影，未找到返回 (nil, nil)
func (r *MovieRepository) FindByID(ctx context.Context, id int) (*model.Movie, error) {
	if m, ok := r.byID.Get(id); ok {
		metrics.CatalogCacheHits.Inc()
		return m, nil
	}
	metrics.CatalogCacheMisses.Inc()

	var movie model.Movie
	err := withAssociations(r.db.WithContext(ctx)).First(&movie, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询电影 %d 失败: %w", id, err)
	}
	r.byID.Set(movie.ID, &movie)
	return &movie, nil
}

// Upsert 创建或更新电影及其类型、演职员、导演关联，并使缓存失效
func (r *MovieRepository) Upsert(ctx context.Context, movie *model.Movie) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if movie.ID != 0 {
			for _, stmt := range []string{
				"DELETE FROM movie_genres WHERE movie_id = ?",
				"DELETE FROM movie_directors WHERE movie_id = ?",
				"DELETE FROM movie_actors WHERE movie_id = ?",
			} {
				if err := tx.Exec(stmt, movie.ID).Error; err != nil {
					return err
				}
			}
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(movie).Error
	})
	if err != nil {
		return fmt.Errorf("保存电影失败: %w", err)
	}
	r.invalidate(movie.ID)
	return nil
}

// invalidate 片库快照整体失效，单部电影缓存只移除被修改的那一条
func (r *MovieRepository) invalidate(movieID int) {
	r.snapshot.Flush()
	r.byID.Delete(movieID)
}
