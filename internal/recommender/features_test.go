package recommender

import (
	"testing"

	"github.com/user/moovierec/internal/model"
)

func genreMovie(id int, genres ...int) *model.Movie {
	m := &model.Movie{ID: id}
	for _, g := range genres {
		m.Genres = append(m.Genres, model.Genre{ID: g})
	}
	return m
}

// 只保留出现次数最多的实体，稀有实体直接丢弃，不归入"其他"列
func TestStructuralSpaceDropsRareEntities(t *testing.T) {
	movies := []*model.Movie{
		genreMovie(1, 10, 20),
		genreMovie(2, 10, 20),
		genreMovie(3, 10),
		genreMovie(4, 30),
	}
	cfg := DefaultConfig().Features
	cfg.TopEntities = 2
	space := NewStructuralSpace(movies, cfg, nil)

	if got := space.Width(CategoryGenre); got != 2 {
		t.Fatalf("Width(genre) = %d, want 2", got)
	}
	if !space.contains(CategoryGenre, 10) || !space.contains(CategoryGenre, 20) {
		t.Error("most frequent genres should be kept")
	}
	if space.contains(CategoryGenre, 30) {
		t.Error("rare genre 30 should be dropped")
	}

	v := space.Vector(movies[3])
	for i, x := range v.Segments[CategoryGenre] {
		if x != 0 {
			t.Errorf("segment[%d] = %v, want 0 for a movie with only a dropped genre", i, x)
		}
	}
}

func TestTopEntitiesTieBreak(t *testing.T) {
	got := topEntities(map[int]int{7: 2, 3: 2, 9: 5, 1: 1}, 3)
	want := []int{9, 3, 7}
	if len(got) != len(want) {
		t.Fatalf("topEntities() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topEntities()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestVectorSkipsMissingActors(t *testing.T) {
	m := &model.Movie{
		ID: 1,
		Cast: []model.MovieActor{
			{MovieID: 1, ActorID: 5, BillingOrder: 2, Actor: &model.Actor{ID: 5}},
			{MovieID: 1, ActorID: 6, BillingOrder: 1},
			{MovieID: 1, ActorID: 4, BillingOrder: 3, Actor: &model.Actor{ID: 4}},
		},
	}
	e := extractEntities(m, nil)
	want := []int{5, 4}
	if len(e[CategoryActor]) != len(want) {
		t.Fatalf("actors = %v, want %v", e[CategoryActor], want)
	}
	for i := range want {
		if e[CategoryActor][i] != want[i] {
			t.Errorf("actors[%d] = %d, want %d", i, e[CategoryActor][i], want[i])
		}
	}
}

func TestVectorNumericFeatures(t *testing.T) {
	cfg := DefaultConfig().Features
	space := NewStructuralSpace(nil, cfg, nil)

	v := space.Vector(&model.Movie{ID: 1, Year: 2000, Runtime: 90})
	if !v.HasYear || v.Year != 100 {
		t.Errorf("Year = %v (has=%v), want 100", v.Year, v.HasYear)
	}
	if !v.HasRuntime || v.Runtime != 0.5 {
		t.Errorf("Runtime = %v (has=%v), want 0.5", v.Runtime, v.HasRuntime)
	}

	unknown := space.Vector(&model.Movie{ID: 2})
	if unknown.HasYear || unknown.HasRuntime {
		t.Error("zero year/runtime should be treated as unknown")
	}
}

func TestVectorTopBilledActors(t *testing.T) {
	movies := testCatalog(1)
	cfg := DefaultConfig().Features
	cfg.TopBilledActors = 1
	space := NewStructuralSpace(movies, cfg, nil)
	v := space.Vector(movies[0])
	if len(v.topActors) != 1 {
		t.Fatalf("topActors = %v, want 1 entry", v.topActors)
	}
	if _, ok := v.topActors[movies[0].Cast[0].ActorID]; !ok {
		t.Errorf("topActors = %v, want first billed actor %d", v.topActors, movies[0].Cast[0].ActorID)
	}
}
