package recommender

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/moovierec/internal/model"
)

// TermWeight 词表下标与权重
type TermWeight struct {
	Index  int
	Weight float64
}

// TextVector 稀疏的 TF-IDF 向量，按词表下标升序
type TextVector []TermWeight

// Norm L2 范数
func (v TextVector) Norm() float64 {
	var sum float64
	for _, tw := range v {
		sum += tw.Weight * tw.Weight
	}
	return math.Sqrt(sum)
}

// TextSpace 简介文本的 TF-IDF 空间，词表由传入的语料决定
type TextSpace struct {
	terms   []string
	vocab   map[string]int
	idf     []float64
	vectors map[int]TextVector
}

// NewTextSpace 对电影简介建立词表并计算每部电影的向量
func NewTextSpace(movies []*model.Movie, cfg TextConfig) *TextSpace {
	docs := make([][]string, len(movies))
	df := make(map[string]int)
	tf := make(map[string]int)
	for i, m := range movies {
		docs[i] = Terms(m.Description, cfg.NGramMax)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, t := range docs[i] {
			tf[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	n := len(movies)
	maxDocs := cfg.MaxDF * float64(n)
	kept := make([]string, 0, len(df))
	for t, d := range df {
		if d >= cfg.MinDF && float64(d) <= maxDocs {
			kept = append(kept, t)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if tf[kept[i]] != tf[kept[j]] {
			return tf[kept[i]] > tf[kept[j]]
		}
		return kept[i] < kept[j]
	})
	if len(kept) > cfg.MaxFeatures {
		kept = kept[:cfg.MaxFeatures]
	}
	sort.Strings(kept)

	s := &TextSpace{
		terms:   kept,
		vocab:   make(map[string]int, len(kept)),
		idf:     make([]float64, len(kept)),
		vectors: make(map[int]TextVector, n),
	}
	for i, t := range kept {
		s.vocab[t] = i
		s.idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}
	for i, m := range movies {
		s.vectors[m.ID] = s.weigh(docs[i])
	}
	return s
}

// Size 词表大小
func (s *TextSpace) Size() int {
	return len(s.terms)
}

// vocabulary 词表（按字典序）
func (s *TextSpace) vocabulary() []string {
	return s.terms
}

// Vector 电影的 TF-IDF 向量，不在语料中或简介为空时返回空向量
func (s *TextSpace) Vector(movieID int) TextVector {
	return s.vectors[movieID]
}

// weigh 次线性词频乘 IDF，再做 L2 归一化
func (s *TextSpace) weigh(terms []string) TextVector {
	counts := make(map[int]int)
	for _, t := range terms {
		if i, ok := s.vocab[t]; ok {
			counts[i]++
		}
	}
	v := make(TextVector, 0, len(counts))
	for i, c := range counts {
		v = append(v, TermWeight{Index: i, Weight: (1 + math.Log(float64(c))) * s.idf[i]})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].Index < v[j].Index })
	norm := v.Norm()
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i].Weight /= norm
	}
	return v
}

// Terms 文本切词后生成 1..maxN 元词组
func Terms(text string, maxN int) []string {
	tokens := Tokenize(text)
	if maxN < 1 {
		maxN = 1
	}
	out := make([]string, 0, len(tokens)*maxN)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

// Tokenize 去掉 HTML 标签，转小写后按字母/数字切词并去掉停用词
//
// 拉丁文等按连续字母数字成词，至少两个字符；汉字按单字成词，由二元词组保留词序信息。
func Tokenize(text string) []string {
	text = StripHTML(text)
	if text == "" {
		return nil
	}

	var tokens []string
	var word []rune
	flush := func() {
		if len(word) >= 2 {
			w := string(word)
			if _, stop := stopWords[w]; !stop {
				tokens = append(tokens, w)
			}
		}
		word = word[:0]
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			word = append(word, r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// StripHTML 去掉简介里的 HTML 标签，保留文本
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}
	// 标签之间补空格，避免相邻段落的文字粘连
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.ReplaceAll(s, ">", "> ")))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

var stopWords = toStringSet(strings.Fields(`
a about above after again against all am an and any are as at be because been
before being below between both but by can could did do does doing down during
each few for from further had has have having he her here hers herself him
himself his how if in into is it its itself just me more most my myself no nor
not now of off on once only or other our ours ourselves out over own same she
should so some such than that the their theirs them themselves then there these
they this those through to too under until up very was we were what when where
which while who whom why will with would you your yours yourself yourselves
also film movie story
`))

func toStringSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
