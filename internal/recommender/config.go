package recommender

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/user/moovierec/internal/model"
)

// ConfigVersion 当前配置版本，默认值变化时递增
const ConfigVersion = "2026.10"

// Config 推荐引擎配置，在构造引擎时传入，运行期间只读
type Config struct {
	// Version 配置版本，写入日志便于排查不同参数下的结果
	Version string `json:"version" validate:"required"`

	Eligibility EligibilityConfig `json:"eligibility"`
	Features    FeatureConfig     `json:"features"`
	Similarity  SimilarityConfig  `json:"similarity"`
	Text        TextConfig        `json:"text"`
	Adaptive    AdaptiveConfig    `json:"adaptive"`
	Ranking     RankingConfig     `json:"ranking"`
}

// EligibilityConfig 资格与评分划分
type EligibilityConfig struct {
	// MinUserRatings 生成推荐所需的最少评分数
	MinUserRatings int `json:"min_user_ratings" validate:"gte=1"`
	// PositiveRatingThreshold 评分 >= 该值视为喜欢
	PositiveRatingThreshold int `json:"positive_rating_threshold" validate:"gte=1,lte=10"`
	// NegativeRatingThreshold 评分 < 该值视为不喜欢
	NegativeRatingThreshold int `json:"negative_rating_threshold" validate:"gte=1,lte=10"`
	// RecentRatingsLimit 构建画像时只看最近的 N 条评分
	RecentRatingsLimit int `json:"recent_ratings_limit" validate:"gte=1"`
}

// FeatureConfig 结构特征
type FeatureConfig struct {
	// TopEntities 每个类别只保留片库中出现次数最多的 N 个实体
	TopEntities int `json:"top_entities" validate:"gte=1"`
	// TopBilledActors 前 N 位署名演员视为主演
	TopBilledActors int     `json:"top_billed_actors" validate:"gte=1"`
	YearMaxDiff     float64 `json:"year_max_diff" validate:"gt=0"`
	DurationMaxDiff float64 `json:"duration_max_diff" validate:"gt=0"`
	YearWeight      float64 `json:"year_weight" validate:"gte=0"`
	RuntimeWeight   float64 `json:"runtime_weight" validate:"gte=0"`
}

// SimilarityConfig 相似度奖励
type SimilarityConfig struct {
	// MinSimilarityThreshold 基础相似度超过该值才给奖励
	MinSimilarityThreshold float64 `json:"min_similarity_threshold" validate:"gte=0,lte=1"`
	DirectorBonus          float64 `json:"director_bonus" validate:"gte=0"`
	ActorBonus             float64 `json:"actor_bonus" validate:"gte=0"`
	// MaxScore 加分后的上限
	MaxScore float64 `json:"max_score" validate:"gt=0"`
}

// TextConfig TF-IDF 与朴素贝叶斯
type TextConfig struct {
	MinDF        int     `json:"min_df" validate:"gte=1"`
	MaxDF        float64 `json:"max_df" validate:"gt=0,lte=1"`
	MaxFeatures  int     `json:"max_features" validate:"gte=1"`
	NGramMax     int     `json:"ngram_max" validate:"gte=1,lte=3"`
	Alpha        float64 `json:"alpha" validate:"gt=0"`
	MinPosterior float64 `json:"min_posterior" validate:"gte=0,lte=1"`
}

// AdaptiveConfig 自适应类别权重
type AdaptiveConfig struct {
	BaseWeight    float64 `json:"base_weight" validate:"gt=0,lte=1"`
	ScalingFactor float64 `json:"scaling_factor" validate:"gte=0"`
	// 无信号时使用的静态权重
	GenreWeight    float64 `json:"genre_weight" validate:"gt=0,lte=1"`
	ActorWeight    float64 `json:"actor_weight" validate:"gt=0,lte=1"`
	DirectorWeight float64 `json:"director_weight" validate:"gt=0,lte=1"`
}

// RankingConfig 合并与截断
type RankingConfig struct {
	KNNTopK            int `json:"knn_top_k" validate:"gte=0"`
	NBTopK             int `json:"nb_top_k" validate:"gte=0"`
	NumRecommendations int `json:"num_recommendations" validate:"gte=1"`
	MaxCandidates      int `json:"max_candidates" validate:"gte=1"`
	// ColdStartStrategy 补足策略：popular 按评分人数，top_rated 按平均分
	ColdStartStrategy string `json:"cold_start_strategy" validate:"oneof=popular top_rated"`
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Version: ConfigVersion,
		Eligibility: EligibilityConfig{
			MinUserRatings:          5,
			PositiveRatingThreshold: 7,
			NegativeRatingThreshold: 4,
			RecentRatingsLimit:      50,
		},
		Features: FeatureConfig{
			TopEntities:     50,
			TopBilledActors: 3,
			YearMaxDiff:     20,
			DurationMaxDiff: 180,
			YearWeight:      0.5,
			RuntimeWeight:   0.3,
		},
		Similarity: SimilarityConfig{
			MinSimilarityThreshold: 0.1,
			DirectorBonus:          0.8,
			ActorBonus:             0.3,
			MaxScore:               2.0,
		},
		Text: TextConfig{
			MinDF:        2,
			MaxDF:        0.8,
			MaxFeatures:  5000,
			NGramMax:     2,
			Alpha:        1.0,
			MinPosterior: 0.5,
		},
		Adaptive: AdaptiveConfig{
			BaseWeight:     0.3,
			ScalingFactor:  0.7,
			GenreWeight:    1.0,
			ActorWeight:    0.6,
			DirectorWeight: 0.8,
		},
		Ranking: RankingConfig{
			KNNTopK:            7,
			NBTopK:             3,
			NumRecommendations: 20,
			MaxCandidates:      100,
			ColdStartStrategy:  model.AlgorithmPopular,
		},
	}
}

var validate = validator.New()

// Validate 校验配置
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("推荐配置无效: %w", err)
	}
	if c.Eligibility.NegativeRatingThreshold > c.Eligibility.PositiveRatingThreshold {
		return fmt.Errorf("推荐配置无效: negative_rating_threshold(%d) 大于 positive_rating_threshold(%d)",
			c.Eligibility.NegativeRatingThreshold, c.Eligibility.PositiveRatingThreshold)
	}
	a := c.Adaptive
	for name, w := range map[string]float64{"genre": a.GenreWeight, "actor": a.ActorWeight, "director": a.DirectorWeight} {
		if w < a.BaseWeight {
			return fmt.Errorf("推荐配置无效: %s_weight(%.2f) 低于 base_weight(%.2f)", name, w, a.BaseWeight)
		}
	}
	return nil
}
