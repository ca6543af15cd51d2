package recommender

import (
	"math"
	"testing"

	"github.com/user/moovierec/internal/model"
)

const epsilon = 1e-9

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0, 1}, []float64{1, 0, 1}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"both empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > epsilon {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyBonus(t *testing.T) {
	cfg := DefaultConfig().Similarity
	tests := []struct {
		name     string
		base     float64
		director bool
		actor    bool
		want     float64
	}{
		{"director bonus above threshold", 0.15, true, false, 0.95},
		{"no bonus below threshold", 0.05, true, false, 0.05},
		{"no bonus at threshold", 0.1, true, true, 0.1},
		{"actor bonus", 0.5, false, true, 0.8},
		{"both bonuses", 0.4, true, true, 1.5},
		{"clamped", 1.0, true, true, 2.0},
		{"nothing shared", 0.7, false, false, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyBonus(tt.base, tt.director, tt.actor, cfg)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("ApplyBonus(%v) = %v, want %v", tt.base, got, tt.want)
			}
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	movies := testCatalog(20)
	movies = append(movies, &model.Movie{ID: 99}, &model.Movie{ID: 100, Year: 1950})
	cfg := DefaultConfig()
	space := NewStructuralSpace(movies, cfg.Features, nil)
	weights := []CategoryWeights{
		StaticWeights(cfg.Adaptive),
		{Genre: 0.3, Actor: 1.0, Director: 0.5},
	}

	for _, w := range weights {
		for _, a := range movies {
			for _, b := range movies {
				va, vb := space.Vector(a), space.Vector(b)
				ab, ba := space.BaseSimilarity(va, vb, w), space.BaseSimilarity(vb, va, w)
				if math.Abs(ab-ba) > epsilon {
					t.Fatalf("base(%d,%d) = %v, base(%d,%d) = %v", a.ID, b.ID, ab, b.ID, a.ID, ba)
				}
				ab, ba = space.Similarity(va, vb, w, cfg.Similarity), space.Similarity(vb, va, w, cfg.Similarity)
				if math.Abs(ab-ba) > epsilon {
					t.Fatalf("sim(%d,%d) = %v, sim(%d,%d) = %v", a.ID, b.ID, ab, b.ID, a.ID, ba)
				}
				if ab < 0 || ab > cfg.Similarity.MaxScore {
					t.Fatalf("sim(%d,%d) = %v out of range", a.ID, b.ID, ab)
				}
			}
		}
	}
}

func TestBaseSimilarityEmptyVectors(t *testing.T) {
	space := NewStructuralSpace(nil, DefaultConfig().Features, nil)
	a := space.Vector(&model.Movie{ID: 1})
	b := space.Vector(&model.Movie{ID: 2, Year: 2000})
	if got := space.BaseSimilarity(a, b, StaticWeights(DefaultConfig().Adaptive)); got != 0 {
		t.Errorf("BaseSimilarity() = %v, want 0", got)
	}
}

func TestNumericClosenessDegrades(t *testing.T) {
	a := &model.Movie{ID: 1, Year: 2000, Genres: []model.Genre{{ID: 1}}}
	near := &model.Movie{ID: 2, Year: 2005, Genres: []model.Genre{{ID: 2}}}
	far := &model.Movie{ID: 3, Year: 1950, Genres: []model.Genre{{ID: 2}}}
	cfg := DefaultConfig()
	space := NewStructuralSpace([]*model.Movie{a, near, far}, cfg.Features, nil)
	w := StaticWeights(cfg.Adaptive)

	// 年份差 5 年：closeness = 0.75，年份分量 0.5 * 0.75
	v := cfg.Features.YearWeight * 0.75
	want := v / (w.Genre*w.Genre + v)
	if got := space.BaseSimilarity(space.Vector(a), space.Vector(near), w); math.Abs(got-want) > epsilon {
		t.Errorf("5 years apart = %v, want %v", got, want)
	}
	if got := space.BaseSimilarity(space.Vector(a), space.Vector(far), w); got != 0 {
		t.Errorf("50 years apart = %v, want 0", got)
	}
}

func TestDirectorBonusInRanking(t *testing.T) {
	liked := &model.Movie{ID: 1, Year: 2000, Genres: []model.Genre{{ID: 1}}, Directors: []model.Director{{ID: 100}}}
	sameDirector := &model.Movie{ID: 2, Year: 2000, Genres: []model.Genre{{ID: 1}}, Directors: []model.Director{{ID: 100}}}
	other := &model.Movie{ID: 3, Year: 2000, Genres: []model.Genre{{ID: 1}}, Directors: []model.Director{{ID: 200}}}
	cfg := DefaultConfig()
	movies := []*model.Movie{liked, sameDirector, other}
	space := NewStructuralSpace(movies, cfg.Features, nil)
	w := StaticWeights(cfg.Adaptive)

	ranked := RankStructural(space, []*model.Movie{liked}, []*model.Movie{other, sameDirector}, w, cfg.Similarity, 5)
	if len(ranked) != 2 || ranked[0].MovieID != 2 {
		t.Fatalf("ranked = %+v, want movie 2 first", ranked)
	}
	base := space.BaseSimilarity(space.Vector(liked), space.Vector(sameDirector), w)
	want := math.Min(base+cfg.Similarity.DirectorBonus, cfg.Similarity.MaxScore)
	if math.Abs(ranked[0].Score-want) > epsilon {
		t.Errorf("score = %v, want base %v + director bonus = %v", ranked[0].Score, base, want)
	}
	if ranked[0].Algorithm != model.AlgorithmKNN {
		t.Errorf("Algorithm = %q, want %q", ranked[0].Algorithm, model.AlgorithmKNN)
	}
}
