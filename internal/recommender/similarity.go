package recommender

import "math"

// CategoryWeights 类型/演员/导演的权重
type CategoryWeights struct {
	Genre    float64 `json:"genre"`
	Actor    float64 `json:"actor"`
	Director float64 `json:"director"`
}

// Of 获取某类别权重
func (w CategoryWeights) Of(c Category) float64 {
	switch c {
	case CategoryGenre:
		return w.Genre
	case CategoryActor:
		return w.Actor
	case CategoryDirector:
		return w.Director
	}
	return 0
}

// StaticWeights 配置中的静态权重
func StaticWeights(cfg AdaptiveConfig) CategoryWeights {
	return CategoryWeights{Genre: cfg.GenreWeight, Actor: cfg.ActorWeight, Director: cfg.DirectorWeight}
}

// Cosine 余弦相似度，任一向量为零向量时返回 0
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, x := range a {
		na += x * x
	}
	for _, x := range b {
		nb += x * x
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / math.Sqrt(na*nb)
}

// closeness 归一化数值的接近程度，差值超过 1 个单位即为 0
func closeness(a, b float64) float64 {
	return 1 - math.Min(math.Abs(a-b), 1)
}

// BaseSimilarity 加权余弦相似度（不含奖励）
//
// one-hot 段按类别权重缩放；年份与片长在双方各贡献 sqrt(w*closeness)。
func (s *StructuralSpace) BaseSimilarity(a, b *StructuralVector, w CategoryWeights) float64 {
	return Cosine(s.flatten(a, b, w), s.flatten(b, a, w))
}

// flatten 拼接加权后的各 one-hot 段，末尾追加与 other 比较得到的年份、片长分量
func (s *StructuralSpace) flatten(v, other *StructuralVector, w CategoryWeights) []float64 {
	width := 2
	for c := Category(0); c < numCategories; c++ {
		width += s.Width(c)
	}
	out := make([]float64, 0, width)
	for c := Category(0); c < numCategories; c++ {
		wc := w.Of(c)
		for _, x := range v.Segments[c] {
			out = append(out, wc*x)
		}
	}

	var year, runtime float64
	if v.HasYear && other.HasYear {
		year = math.Sqrt(s.cfg.YearWeight * closeness(v.Year, other.Year))
	}
	if v.HasRuntime && other.HasRuntime {
		runtime = math.Sqrt(s.cfg.RuntimeWeight * closeness(v.Runtime, other.Runtime))
	}
	return append(out, year, runtime)
}

// Similarity 加权余弦加上同导演/同主演奖励
func (s *StructuralSpace) Similarity(a, b *StructuralVector, w CategoryWeights, cfg SimilarityConfig) float64 {
	base := s.BaseSimilarity(a, b, w)
	return ApplyBonus(base, SharesDirector(a, b), SharesTopActor(a, b), cfg)
}

// SharesDirector 两部电影是否有共同导演
func SharesDirector(a, b *StructuralVector) bool {
	return intersects(a.directors, b.directors)
}

// SharesTopActor 两部电影的主演是否有交集
func SharesTopActor(a, b *StructuralVector) bool {
	return intersects(a.topActors, b.topActors)
}

// ApplyBonus 基础相似度高于阈值时才加分，结果不超过 MaxScore
func ApplyBonus(base float64, sharesDirector, sharesActor bool, cfg SimilarityConfig) float64 {
	score := base
	if base > cfg.MinSimilarityThreshold {
		if sharesDirector {
			score += cfg.DirectorBonus
		}
		if sharesActor {
			score += cfg.ActorBonus
		}
	}
	return math.Min(score, cfg.MaxScore)
}
