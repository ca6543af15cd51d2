package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/moovierec/internal/handler"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 推荐 API ====================
	users := r.Group("/api/users/:id")
	{
		users.GET("/recommendations/status", h.RecommendationStatus)
		users.POST("/recommendations", h.GenerateRecommendations)
		users.GET("/recommendations", h.ListRecommendations)
		users.GET("/recommendations/reasons", h.RecommendationsWithReasons)
		users.DELETE("/recommendations", h.DeleteRecommendations)

		users.PUT("/ratings/:movie_id", h.RateMovie)
	}
}
