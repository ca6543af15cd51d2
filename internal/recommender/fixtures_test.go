package recommender

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/user/moovierec/internal/model"
)

var themes = []string{
	"space alien invasion galaxy battle starship",
	"romance love paris wedding heart letters",
	"crime detective murder city police gangster",
	"comedy family holiday laughs friends road",
	"horror ghost haunted house night curse",
}

// testCatalog 生成 n 部电影，类型/导演/演员循环分配
func testCatalog(n int) []*model.Movie {
	movies := make([]*model.Movie, 0, n)
	for i := 1; i <= n; i++ {
		g := (i - 1) % len(themes)
		d := (i-1)%7 + 1
		m := &model.Movie{
			ID:          i,
			Title:       "Movie " + strconv.Itoa(i),
			Year:        1990 + i%30,
			Runtime:     90 + i%40,
			Description: themes[g] + " chapter " + strconv.Itoa(i),
			Genres:      []model.Genre{{ID: g + 1, Name: "genre-" + strconv.Itoa(g+1)}},
			Directors:   []model.Director{{ID: d, Name: "director-" + strconv.Itoa(d)}},
		}
		for k := 0; k < 3; k++ {
			a := (i+k-1)%10 + 1
			m.Cast = append(m.Cast, model.MovieActor{
				MovieID:      i,
				ActorID:      a,
				BillingOrder: k + 1,
				Actor:        &model.Actor{ID: a, Name: "actor-" + strconv.Itoa(a)},
			})
		}
		movies = append(movies, m)
	}
	return movies
}

var baseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func rating(userID, movieID, score, minutesAgo int) *model.Rating {
	return &model.Rating{
		UserID:  userID,
		MovieID: movieID,
		Score:   score,
		RatedAt: baseTime.Add(-time.Duration(minutesAgo) * time.Minute),
	}
}

type fakeCatalog struct {
	movies    []*model.Movie
	extra     map[int]*model.Movie
	findCalls int
	mu        sync.Mutex
}

func (f *fakeCatalog) ListMovies(ctx context.Context) ([]*model.Movie, error) {
	return f.movies, nil
}

func (f *fakeCatalog) FindByID(ctx context.Context, id int) (*model.Movie, error) {
	f.mu.Lock()
	f.findCalls++
	f.mu.Unlock()
	for _, m := range f.movies {
		if m.ID == id {
			return m, nil
		}
	}
	if m, ok := f.extra[id]; ok {
		return m, nil
	}
	return nil, nil
}

type fakeRatings struct {
	mu      sync.Mutex
	ratings []*model.Rating
}

func (f *fakeRatings) add(rs ...*model.Rating) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings = append(f.ratings, rs...)
}

func (f *fakeRatings) ListByUser(ctx context.Context, userID, limit int) ([]*model.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Rating
	for _, r := range f.ratings {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RatedAt.After(out[j].RatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRatings) CountByUser(ctx context.Context, userID int) (int, error) {
	rs, _ := f.ListByUser(ctx, userID, 0)
	return len(rs), nil
}

func (f *fakeRatings) MovieStats(ctx context.Context) ([]model.MovieStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sums := make(map[int]int)
	counts := make(map[int]int)
	for _, r := range f.ratings {
		sums[r.MovieID] += r.Score
		counts[r.MovieID]++
	}
	stats := make([]model.MovieStat, 0, len(counts))
	for id, n := range counts {
		stats = append(stats, model.MovieStat{MovieID: id, Count: n, AvgScore: float64(sums[id]) / float64(n)})
	}
	return stats, nil
}

type fakeStore struct {
	mu      sync.Mutex
	rows    map[int][]*model.Recommendation
	writes  int
	failErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[int][]*model.Recommendation)}
}

func (f *fakeStore) ReplaceForUser(ctx context.Context, userID int, recs []*model.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.writes++
	f.rows[userID] = append([]*model.Recommendation(nil), recs...)
	return nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID, limit int) ([]*model.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.rows[userID]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeStore) DeleteByUser(ctx context.Context, userID int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.rows[userID]))
	delete(f.rows, userID)
	return n, nil
}

func (f *fakeStore) Summary(ctx context.Context, userID int) (*model.RecommendationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.rows[userID]
	s := &model.RecommendationSummary{Count: int64(len(rows))}
	for _, r := range rows {
		if s.LastGenerated == nil || r.CreatedAt.After(*s.LastGenerated) {
			t := r.CreatedAt
			s.LastGenerated = &t
		}
	}
	return s, nil
}

var errStoreDown = errors.New("connection reset")

func movieIDs(items []ScoredMovie) []int {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.MovieID
	}
	return ids
}

func catalogByID(movies []*model.Movie) map[int]*model.Movie {
	out := make(map[int]*model.Movie, len(movies))
	for _, m := range movies {
		out[m.ID] = m
	}
	return out
}
