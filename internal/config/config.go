package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/user/moovierec/internal/recommender"
)

// Config 应用配置
type Config struct {
	Env         string
	DatabaseURL string
	Port        string
	SiteName    string
	LogMode     string

	CatalogCacheTTL   time.Duration
	RefreshInterval   time.Duration // 0 表示不启动定时刷新
	RefreshBatchSize  int
	RecommendationTTL time.Duration // 超过该时长的推荐会被清理，0 表示不清理
	GenerateTimeout   time.Duration
	Recommender       recommender.Config
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "moovie")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	env := getEnv("APP_ENV", "development")
	logMode := "development"
	if env == "production" {
		logMode = "production"
	}

	return &Config{
		Env:               env,
		DatabaseURL:       getEnv("DATABASE_URL", dbURL),
		Port:              getEnv("PORT", "5005"),
		SiteName:          getEnv("SITE_NAME", "Moovie"),
		LogMode:           getEnv("LOG_MODE", logMode),
		CatalogCacheTTL:   time.Duration(getEnvInt("CATALOG_CACHE_TTL_MINUTES", 10)) * time.Minute,
		RefreshInterval:   time.Duration(getEnvInt("REFRESH_INTERVAL_HOURS", 24)) * time.Hour,
		RefreshBatchSize:  getEnvInt("REFRESH_BATCH_SIZE", 100),
		RecommendationTTL: time.Duration(getEnvInt("RECOMMENDATION_RETENTION_DAYS", 30)) * 24 * time.Hour,
		GenerateTimeout:   time.Duration(getEnvInt("GENERATE_TIMEOUT_SECONDS", 30)) * time.Second,
		Recommender:       loadRecommender(),
	}
}

// loadRecommender 推荐引擎参数，REC_* 环境变量覆盖默认值
func loadRecommender() recommender.Config {
	c := recommender.DefaultConfig()

	e := &c.Eligibility
	e.MinUserRatings = getEnvInt("REC_MIN_USER_RATINGS", e.MinUserRatings)
	e.PositiveRatingThreshold = getEnvInt("REC_POSITIVE_RATING_THRESHOLD", e.PositiveRatingThreshold)
	e.NegativeRatingThreshold = getEnvInt("REC_NEGATIVE_RATING_THRESHOLD", e.NegativeRatingThreshold)
	e.RecentRatingsLimit = getEnvInt("REC_RECENT_RATINGS_LIMIT", e.RecentRatingsLimit)

	f := &c.Features
	f.TopEntities = getEnvInt("REC_TOP_ENTITIES", f.TopEntities)
	f.TopBilledActors = getEnvInt("REC_TOP_BILLED_ACTORS", f.TopBilledActors)
	f.YearMaxDiff = getEnvFloat("REC_YEAR_MAX_DIFF", f.YearMaxDiff)
	f.DurationMaxDiff = getEnvFloat("REC_DURATION_MAX_DIFF", f.DurationMaxDiff)
	f.YearWeight = getEnvFloat("REC_YEAR_WEIGHT", f.YearWeight)
	f.RuntimeWeight = getEnvFloat("REC_RUNTIME_WEIGHT", f.RuntimeWeight)

	s := &c.Similarity
	s.MinSimilarityThreshold = getEnvFloat("REC_MIN_SIMILARITY_THRESHOLD", s.MinSimilarityThreshold)
	s.DirectorBonus = getEnvFloat("REC_DIRECTOR_BONUS", s.DirectorBonus)
	s.ActorBonus = getEnvFloat("REC_ACTOR_BONUS", s.ActorBonus)
	s.MaxScore = getEnvFloat("REC_MAX_STRUCTURAL_SCORE", s.MaxScore)

	t := &c.Text
	t.MinDF = getEnvInt("REC_TFIDF_MIN_DF", t.MinDF)
	t.MaxDF = getEnvFloat("REC_TFIDF_MAX_DF", t.MaxDF)
	t.MaxFeatures = getEnvInt("REC_TFIDF_MAX_FEATURES", t.MaxFeatures)
	t.NGramMax = getEnvInt("REC_TFIDF_NGRAM_MAX", t.NGramMax)
	t.Alpha = getEnvFloat("REC_NB_ALPHA", t.Alpha)
	t.MinPosterior = getEnvFloat("REC_NB_MIN_POSTERIOR", t.MinPosterior)

	a := &c.Adaptive
	a.BaseWeight = getEnvFloat("REC_ADAPTIVE_BASE_WEIGHT", a.BaseWeight)
	a.ScalingFactor = getEnvFloat("REC_ADAPTIVE_SCALING_FACTOR", a.ScalingFactor)
	a.GenreWeight = getEnvFloat("REC_ADAPTIVE_GENRE_WEIGHT", a.GenreWeight)
	a.ActorWeight = getEnvFloat("REC_ADAPTIVE_ACTOR_WEIGHT", a.ActorWeight)
	a.DirectorWeight = getEnvFloat("REC_ADAPTIVE_DIRECTOR_WEIGHT", a.DirectorWeight)

	r := &c.Ranking
	r.KNNTopK = getEnvInt("REC_KNN_TOP_K", r.KNNTopK)
	r.NBTopK = getEnvInt("REC_NB_TOP_K", r.NBTopK)
	r.NumRecommendations = getEnvInt("REC_NUM_RECOMMENDATIONS", r.NumRecommendations)
	r.MaxCandidates = getEnvInt("REC_MAX_CANDIDATES", r.MaxCandidates)
	r.ColdStartStrategy = getEnv("REC_COLD_START_STRATEGY", r.ColdStartStrategy)

	if v := os.Getenv("REC_CONFIG_VERSION"); v != "" {
		c.Version = v
	}
	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}
