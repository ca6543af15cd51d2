package recommender

import (
	"sort"

	"github.com/user/moovierec/internal/logger"
	"github.com/user/moovierec/internal/metrics"
	"github.com/user/moovierec/internal/model"
)

// Category 结构特征的类别
type Category int

const (
	CategoryGenre Category = iota
	CategoryActor
	CategoryDirector
	numCategories
)

func (c Category) String() string {
	switch c {
	case CategoryGenre:
		return "genre"
	case CategoryActor:
		return "actor"
	case CategoryDirector:
		return "director"
	}
	return "unknown"
}

// MovieEntities 一部电影在各类别下的实体 ID
type MovieEntities [numCategories][]int

// StructuralVector 一部电影的结构特征
type StructuralVector struct {
	MovieID int
	// Segments 各类别的 one-hot 段，宽度为该类别入选实体数
	Segments   [numCategories][]float64
	Year       float64 // 年份 / YearMaxDiff
	Runtime    float64 // 片长 / DurationMaxDiff
	HasYear    bool
	HasRuntime bool

	directors map[int]struct{}
	topActors map[int]struct{}
}

// StructuralSpace 片库级别的结构特征空间
//
// 每个类别只保留片库中出现次数最多的 TopEntities 个实体，其余实体不进入向量。
// 向量按需计算并缓存在空间内部，空间本身只在一次生成中使用。
type StructuralSpace struct {
	cfg     FeatureConfig
	index   [numCategories]map[int]int
	vectors map[int]*StructuralVector
	log     *logger.Logger
}

// NewStructuralSpace 统计片库实体频次并确定各类别的 one-hot 列
func NewStructuralSpace(movies []*model.Movie, cfg FeatureConfig, log *logger.Logger) *StructuralSpace {
	if log == nil {
		log = logger.NewNop()
	}
	var counts [numCategories]map[int]int
	for c := range counts {
		counts[c] = make(map[int]int)
	}
	for _, m := range movies {
		for c, ids := range extractEntities(m, nil) {
			for _, id := range ids {
				counts[c][id]++
			}
		}
	}

	s := &StructuralSpace{cfg: cfg, vectors: make(map[int]*StructuralVector), log: log}
	for c := range counts {
		top := topEntities(counts[c], cfg.TopEntities)
		s.index[c] = make(map[int]int, len(top))
		for i, id := range top {
			s.index[c][id] = i
		}
	}
	return s
}

// Width 某类别的 one-hot 宽度
func (s *StructuralSpace) Width(c Category) int {
	return len(s.index[c])
}

// contains 实体是否进入了该类别的 one-hot 列
func (s *StructuralSpace) contains(c Category, id int) bool {
	_, ok := s.index[c][id]
	return ok
}

// Vector 获取电影的结构向量
func (s *StructuralSpace) Vector(m *model.Movie) *StructuralVector {
	if v, ok := s.vectors[m.ID]; ok {
		return v
	}

	entities := extractEntities(m, s.log)
	v := &StructuralVector{
		MovieID:   m.ID,
		directors: toSet(entities[CategoryDirector]),
	}
	for c := range v.Segments {
		seg := make([]float64, s.Width(Category(c)))
		for _, id := range entities[c] {
			if col, ok := s.index[c][id]; ok {
				seg[col] = 1
			}
		}
		v.Segments[c] = seg
	}

	actors := entities[CategoryActor]
	if len(actors) > s.cfg.TopBilledActors {
		actors = actors[:s.cfg.TopBilledActors]
	}
	v.topActors = toSet(actors)

	if m.Year > 0 {
		v.Year = float64(m.Year) / s.cfg.YearMaxDiff
		v.HasYear = true
	}
	if m.Runtime > 0 {
		v.Runtime = float64(m.Runtime) / s.cfg.DurationMaxDiff
		v.HasRuntime = true
	}

	s.vectors[m.ID] = v
	return v
}

// extractEntities 提取电影的类型/演员/导演 ID，演员按署名顺序
//
// log 不为空时，未能加载的演员/导演引用会记录为数据完整性问题并跳过。
func extractEntities(m *model.Movie, log *logger.Logger) MovieEntities {
	var e MovieEntities
	e[CategoryGenre] = dedupe(m.GenreIDs())

	e[CategoryActor] = dedupe(personIDs(m.ActorPeople()))
	if log != nil {
		for _, c := range m.Cast {
			if c.Actor == nil {
				metrics.DataIntegrityIssues.Inc()
				log.Warn("跳过缺失的演员引用",
					"error", ErrDataIntegrity, "movie_id", m.ID, "actor_id", c.ActorID)
			}
		}
	}

	directors := m.DirectorPeople()
	ids := make([]int, 0, len(directors))
	for _, d := range directors {
		if d.PersonID() == 0 {
			if log != nil {
				metrics.DataIntegrityIssues.Inc()
				log.Warn("跳过缺失的导演引用", "error", ErrDataIntegrity, "movie_id", m.ID)
			}
			continue
		}
		ids = append(ids, d.PersonID())
	}
	e[CategoryDirector] = dedupe(ids)
	return e
}

func personIDs(people []model.Person) []int {
	ids := make([]int, 0, len(people))
	for _, p := range people {
		if p.PersonID() != 0 {
			ids = append(ids, p.PersonID())
		}
	}
	return ids
}

// topEntities 按频次降序、ID 升序取前 n 个
func topEntities(counts map[int]int, n int) []int {
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// dedupe 去重并保持顺序
func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func intersects(a, b map[int]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for id := range a {
		if _, ok := b[id]; ok {
			return true
		}
	}
	return false
}
