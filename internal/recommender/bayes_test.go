package recommender

import (
	"errors"
	"math"
	"testing"

	"github.com/user/moovierec/internal/model"
)

func TestTrainNaiveBayesInsufficientSignal(t *testing.T) {
	v := TextVector{{Index: 0, Weight: 1}}
	tests := []struct {
		name            string
		liked, disliked []TextVector
		vocab           int
	}{
		{"no liked", nil, []TextVector{v}, 1},
		{"no disliked", []TextVector{v}, nil, 1},
		{"empty vocabulary", []TextVector{v}, []TextVector{v}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TrainNaiveBayes(tt.liked, tt.disliked, tt.vocab, 1)
			if !errors.Is(err, ErrInsufficientSignal) {
				t.Errorf("err = %v, want ErrInsufficientSignal", err)
			}
		})
	}
}

func TestPosteriorSeparatesClasses(t *testing.T) {
	space := NewTextSpace([]*model.Movie{
		{ID: 1, Description: "space alien galaxy"},
		{ID: 2, Description: "space alien starship"},
		{ID: 3, Description: "romance paris wedding"},
		{ID: 4, Description: "romance paris letters"},
		{ID: 5, Description: "space alien battle"},
		{ID: 6, Description: "romance paris love"},
	}, TextConfig{MinDF: 2, MaxDF: 0.8, MaxFeatures: 100, NGramMax: 2, Alpha: 1, MinPosterior: 0.5})

	nb, err := TrainNaiveBayes(
		[]TextVector{space.Vector(1), space.Vector(2)},
		[]TextVector{space.Vector(3), space.Vector(4)},
		space.Size(), 1,
	)
	if err != nil {
		t.Fatalf("TrainNaiveBayes() error = %v", err)
	}

	if p := nb.Posterior(space.Vector(5)); p <= 0.5 {
		t.Errorf("Posterior(space movie) = %v, want > 0.5", p)
	}
	if p := nb.Posterior(space.Vector(6)); p >= 0.5 {
		t.Errorf("Posterior(romance movie) = %v, want < 0.5", p)
	}
	// 空向量只由先验决定，两类样本数相同时为 0.5
	if p := nb.Posterior(nil); math.Abs(p-0.5) > epsilon {
		t.Errorf("Posterior(empty) = %v, want 0.5", p)
	}
}

func TestPosteriorBounded(t *testing.T) {
	nb, err := TrainNaiveBayes(
		[]TextVector{{{Index: 0, Weight: 1}}},
		[]TextVector{{{Index: 1, Weight: 1}}},
		2, 0.01,
	)
	if err != nil {
		t.Fatal(err)
	}
	inputs := []TextVector{
		nil,
		{{Index: 0, Weight: 1e6}},
		{{Index: 1, Weight: 1e6}},
		{{Index: 0, Weight: 0.5}, {Index: 1, Weight: 0.5}},
		{{Index: 7, Weight: 1}},
	}
	for _, x := range inputs {
		p := nb.Posterior(x)
		if math.IsNaN(p) || p < 0 || p > 1 {
			t.Errorf("Posterior(%v) = %v, want within [0, 1]", x, p)
		}
	}
}

func TestNaiveBayesEmptyVectorIsPrior(t *testing.T) {
	liked := []TextVector{{{Index: 0, Weight: 1}}, {{Index: 0, Weight: 1}}, {{Index: 0, Weight: 1}}}
	disliked := []TextVector{{{Index: 1, Weight: 1}}, {{Index: 1, Weight: 1}}}
	nb, err := TrainNaiveBayes(liked, disliked, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := nb.Prior(); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("Prior() = %v, want 0.6", got)
	}
	if got := nb.Posterior(nil); math.Abs(got-nb.Prior()) > 1e-9 {
		t.Errorf("Posterior(empty) = %v, want prior %v", got, nb.Prior())
	}
}
