package service

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/user/moovierec/internal/model"
	"github.com/user/moovierec/internal/recommender"
	"github.com/user/moovierec/internal/repository"
	"github.com/user/moovierec/internal/testutil"
)

var descriptions = []string{
	"space alien invasion galaxy battle",
	"romance love paris wedding heart",
	"crime detective murder city police",
}

type fixture struct {
	repos  *repository.Repositories
	engine *recommender.Engine
}

func newFixture(t *testing.T, movies int) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewRepositories(testutil.DB(t), time.Minute)

	for i := 1; i <= movies; i++ {
		g := (i - 1) % len(descriptions)
		d := (i-1)%4 + 1
		a := (i-1)%6 + 1
		m := &model.Movie{
			ID:          i,
			Title:       "电影" + strconv.Itoa(i),
			Year:        2000 + i,
			Runtime:     100,
			Description: descriptions[g],
			Genres:      []model.Genre{{ID: g + 1, Name: "类型" + strconv.Itoa(g+1)}},
			Directors:   []model.Director{{ID: d, Name: "导演" + strconv.Itoa(d)}},
			Cast: []model.MovieActor{
				{ActorID: a, BillingOrder: 1, Actor: &model.Actor{ID: a, Name: "演员" + strconv.Itoa(a)}},
			},
		}
		if err := repos.Movie.Upsert(ctx, m); err != nil {
			t.Fatalf("seed movie %d: %v", i, err)
		}
	}

	engine, err := recommender.NewEngine(recommender.DefaultConfig(), repos.Movie, repos.Rating, repos.Recommendation, testutil.Logger(t))
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{repos: repos, engine: engine}
}

func (f *fixture) rate(t *testing.T, userID int, scores map[int]int) {
	t.Helper()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	for movieID, score := range scores {
		i++
		r := &model.Rating{UserID: userID, MovieID: movieID, Score: score, RatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := f.repos.Rating.Upsert(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}
}

var eligibleScores = map[int]int{1: 9, 4: 8, 7: 7, 2: 2, 5: 3}

func (f *fixture) refresh(opts RefreshOptions) *RefreshService {
	return NewRefreshService(f.engine, f.repos.Rating, f.repos.JobCursor, f.repos.Recommendation, opts, nil)
}

func TestRefreshServiceRunOnce(t *testing.T) {
	f := newFixture(t, 24)
	f.rate(t, 1, eligibleScores)
	f.rate(t, 2, map[int]int{1: 9, 2: 9})
	f.rate(t, 3, eligibleScores)
	ctx := context.Background()

	svc := f.refresh(RefreshOptions{BatchSize: 2})
	total, err := svc.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if total != 2 {
		t.Errorf("RunOnce() = %d users, want 2 eligible", total)
	}
	for userID, want := range map[int]bool{1: true, 2: false, 3: true} {
		summary, err := f.repos.Recommendation.Summary(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		if got := summary.Count > 0; got != want {
			t.Errorf("user %d has recommendations = %v, want %v", userID, got, want)
		}
	}
	if pos, _ := f.repos.JobCursor.Get(ctx, refreshCursorName); pos != 0 {
		t.Errorf("cursor = %d, want reset to 0 after a full pass", pos)
	}
}

func TestRefreshServiceResumesFromCursor(t *testing.T) {
	f := newFixture(t, 24)
	f.rate(t, 1, eligibleScores)
	f.rate(t, 3, eligibleScores)
	ctx := context.Background()

	if err := f.repos.JobCursor.Save(ctx, refreshCursorName, 1); err != nil {
		t.Fatal(err)
	}
	total, err := f.refresh(RefreshOptions{BatchSize: 10}).RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("RunOnce() = %d users, want 1", total)
	}
	if s, _ := f.repos.Recommendation.Summary(ctx, 1); s.Count != 0 {
		t.Error("user 1 is before the cursor and should be skipped")
	}
	if s, _ := f.repos.Recommendation.Summary(ctx, 3); s.Count == 0 {
		t.Error("user 3 should be regenerated")
	}
}

func TestRefreshServiceCleansExpired(t *testing.T) {
	f := newFixture(t, 6)
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stale := []*model.Recommendation{{UserID: 9, MovieID: 1, Algorithm: model.AlgorithmPopular, Rank: 1, CreatedAt: old}}
	if err := f.repos.Recommendation.ReplaceForUser(ctx, 9, stale); err != nil {
		t.Fatal(err)
	}

	svc := f.refresh(RefreshOptions{Retention: 24 * time.Hour})
	svc.now = func() time.Time { return old.Add(48 * time.Hour) }
	if _, err := svc.RunOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if s, _ := f.repos.Recommendation.Summary(ctx, 9); s.Count != 0 {
		t.Errorf("stale rows = %d, want 0", s.Count)
	}
}

func TestRefreshServiceStartStop(t *testing.T) {
	f := newFixture(t, 24)
	f.rate(t, 1, eligibleScores)

	svc := f.refresh(RefreshOptions{Interval: time.Hour})
	svc.Start(context.Background())
	svc.Stop()
	svc.Stop()

	if s, _ := f.repos.Recommendation.Summary(context.Background(), 1); s.Count == 0 {
		t.Error("Start() should run one pass immediately")
	}
}

func TestGenerateRecommendationReason(t *testing.T) {
	director := model.Director{ID: 1, Name: "诺兰"}
	actor := &model.Actor{ID: 2, Name: "马修"}
	scifi := model.Genre{ID: 1, Name: "科幻"}
	drama := model.Genre{ID: 2, Name: "剧情"}
	source := &model.Movie{
		ID: 1, Title: "星际穿越", Year: 2014,
		Genres:    []model.Genre{scifi},
		Directors: []model.Director{director},
		Cast:      []model.MovieActor{{ActorID: 2, BillingOrder: 1, Actor: actor}},
	}

	tests := []struct {
		name     string
		target   *model.Movie
		wantType string
		contains string
	}{
		{"same director", &model.Movie{ID: 2, Directors: []model.Director{director}}, ReasonDirector, "诺兰"},
		{"same lead actor", &model.Movie{ID: 3, Cast: []model.MovieActor{{ActorID: 2, Actor: actor}}}, ReasonActor, "马修"},
		{"shared core genre", &model.Movie{ID: 4, Genres: []model.Genre{scifi}}, ReasonGenre, "烧脑"},
		{"close era", &model.Movie{ID: 5, Year: 2015, Genres: []model.Genre{drama}}, ReasonEra, "2014"},
		{"nothing shared", &model.Movie{ID: 6, Year: 1960}, ReasonGeneral, "内容"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, reasonType, score := GenerateRecommendationReason(source, tt.target, 3)
			if reasonType != tt.wantType {
				t.Errorf("type = %q, want %q (reason %q)", reasonType, tt.wantType, reason)
			}
			if !strings.Contains(reason, tt.contains) {
				t.Errorf("reason = %q, want it to contain %q", reason, tt.contains)
			}
			if score < 0 || score > 1 {
				t.Errorf("score = %v out of [0, 1]", score)
			}
		})
	}
}

func TestReasonServiceExplain(t *testing.T) {
	f := newFixture(t, 24)
	f.rate(t, 1, eligibleScores)
	ctx := context.Background()

	if res, err := f.engine.Generate(ctx, 1); err != nil || !res.Success {
		t.Fatalf("Generate() = %+v, %v", res, err)
	}
	svc := NewReasonService(f.engine, f.repos.Movie, f.repos.Rating)
	explanations, err := svc.Explain(ctx, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(explanations) == 0 {
		t.Fatal("Explain() returned nothing")
	}
	for _, exp := range explanations {
		if exp.Reason == "" || exp.ReasonType == "" {
			t.Errorf("movie %d has empty reason", exp.Movie.ID)
		}
		if exp.Recommendation.Algorithm == model.AlgorithmKNN && exp.BasedOn == nil {
			t.Errorf("knn movie %d should name the liked movie it is based on", exp.Movie.ID)
		}
	}

	empty, err := svc.Explain(ctx, 2, 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("Explain(user without recommendations) = %v, %v", empty, err)
	}
}
