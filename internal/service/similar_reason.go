package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/user/moovierec/internal/model"
)

// 推荐理由类型
const (
	ReasonDirector = "director"
	ReasonActor    = "actor"
	ReasonGenre    = "genre"
	ReasonEra      = "era"
	ReasonTextual  = "textual"
	ReasonPopular  = "popular"
	ReasonTopRated = "top_rated"
	ReasonGeneral  = "general"
)

// commonNames 两组人名/类型名的交集，保持 source 的顺序
func commonNames(source, target []string) []string {
	set := make(map[string]struct{}, len(target))
	for _, t := range target {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = struct{}{}
		}
	}
	common := []string{}
	for _, s := range source {
		s = strings.TrimSpace(s)
		if _, ok := set[s]; ok && s != "" {
			common = append(common, s)
			delete(set, s)
		}
	}
	return common
}

// overlap 交集占较大一方的比例
func overlap(common int, a, b int) float64 {
	maxLen := math.Max(float64(a), float64(b))
	if maxLen == 0 {
		return 0
	}
	return float64(common) / maxLen
}

func genreNames(m *model.Movie) []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

func personNames(people []model.Person, limit int) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		if limit > 0 && len(names) >= limit {
			break
		}
		names = append(names, p.PersonName())
	}
	return names
}

// calculateEraSimilarity 计算年代相似度
func calculateEraSimilarity(sourceYear, targetYear int) float64 {
	if sourceYear == 0 || targetYear == 0 {
		return 0.5 // 如果年份无效，返回中等相似度
	}

	yearDiff := math.Abs(float64(sourceYear - targetYear))
	switch {
	case yearDiff <= 1:
		return 1.0 // 同一年或相邻年份
	case yearDiff <= 3:
		return 0.8
	case yearDiff <= 5:
		return 0.6
	case yearDiff <= 10:
		return 0.4
	default:
		return 0.2
	}
}

// GenerateRecommendationReason 根据喜欢的电影生成推荐理由（按优先级）
//
// topActors 为参与比较的前几位署名演员。返回理由、理由类型与综合相似度。
func GenerateRecommendationReason(source, target *model.Movie, topActors int) (string, string, float64) {
	sourceGenres, targetGenres := genreNames(source), genreNames(target)
	commonGenres := commonNames(sourceGenres, targetGenres)
	genreSimilarity := overlap(len(commonGenres), len(sourceGenres), len(targetGenres))

	sourceDirectors := personNames(source.DirectorPeople(), 0)
	targetDirectors := personNames(target.DirectorPeople(), 0)
	commonDirectors := commonNames(sourceDirectors, targetDirectors)
	directorSimilarity := overlap(len(commonDirectors), len(sourceDirectors), len(targetDirectors))

	sourceActors := personNames(source.ActorPeople(), topActors)
	targetActors := personNames(target.ActorPeople(), topActors)
	commonActors := commonNames(sourceActors, targetActors)

	eraSimilarity := calculateEraSimilarity(source.Year, target.Year)

	totalSimilarity := genreSimilarity*0.45 +
		directorSimilarity*0.3 +
		overlap(len(commonActors), len(sourceActors), len(targetActors))*0.2 +
		eraSimilarity*0.05

	// 1. 最高优先级：同导演
	if len(commonDirectors) > 0 {
		return fmt.Sprintf("与《%s》由同位导演 %s 执导，叙事风格一脉相承", source.Title, strings.Join(commonDirectors, "、")),
			ReasonDirector, totalSimilarity
	}

	// 2. 同主演
	if len(commonActors) > 0 {
		return fmt.Sprintf("与《%s》同样由 %s 领衔主演", source.Title, commonActors[0]),
			ReasonActor, totalSimilarity
	}

	// 3. 类型重合
	if len(commonGenres) > 0 {
		genreDesc := strings.Join(commonGenres, "、")
		var reason string
		switch {
		case containsAny(commonGenres, "科幻", "悬疑", "惊悚"):
			reason = fmt.Sprintf("和《%s》同属%s片，带给你类似的烧脑/震撼体验", source.Title, genreDesc)
		case containsAny(commonGenres, "动作", "战争"):
			reason = fmt.Sprintf("和《%s》同属%s片，带给你类似的刺激体验", source.Title, genreDesc)
		case containsAny(commonGenres, "喜剧", "爱情"):
			reason = fmt.Sprintf("和《%s》同属%s片，带给你类似的情感体验", source.Title, genreDesc)
		default:
			reason = fmt.Sprintf("和《%s》同属%s片，风格相似", source.Title, genreDesc)
		}
		return reason, ReasonGenre, totalSimilarity
	}

	// 4. 年代接近
	if source.Year != 0 && eraSimilarity > 0.6 {
		return fmt.Sprintf("和《%s》同为 %d 年左右的作品", source.Title, source.Year), ReasonEra, totalSimilarity
	}

	return "基于内容相似度推荐", ReasonGeneral, totalSimilarity
}

func containsAny(slice []string, items ...string) bool {
	for _, s := range slice {
		for _, item := range items {
			if s == item {
				return true
			}
		}
	}
	return false
}
