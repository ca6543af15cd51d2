package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/moovierec/internal/config"
	"github.com/user/moovierec/internal/logger"
	"github.com/user/moovierec/internal/model"
	"github.com/user/moovierec/internal/recommender"
	"github.com/user/moovierec/internal/service"
	"github.com/user/moovierec/internal/utils"
)

// RatingWriter 评分写入
type RatingWriter interface {
	Upsert(ctx context.Context, rating *model.Rating) error
}

// Handler HTTP 处理器
type Handler struct {
	Engine  *recommender.Engine
	Reasons *service.ReasonService
	Catalog recommender.CatalogSource
	Ratings RatingWriter
	Config  *config.Config
	Log     *logger.Logger
}

// NewHandler 创建处理器
func NewHandler(engine *recommender.Engine, reasons *service.ReasonService, catalog recommender.CatalogSource, ratings RatingWriter, cfg *config.Config, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		Engine:  engine,
		Reasons: reasons,
		Catalog: catalog,
		Ratings: ratings,
		Config:  cfg,
		Log:     log,
	}
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	res := gin.H{
		"status":         "ok",
		"config_version": h.Engine.Config().Version,
	}
	if h.Config != nil {
		res["site"] = h.Config.SiteName
		res["env"] = h.Config.Env
	}
	c.JSON(http.StatusOK, res)
}

// generateTimeout 生成推荐的超时时间
func (h *Handler) generateTimeout() time.Duration {
	if h.Config == nil || h.Config.GenerateTimeout <= 0 {
		return 30 * time.Second
	}
	return h.Config.GenerateTimeout
}

// pathID 解析路径中的正整数 ID，失败时已写入 400 响应
func pathID(c *gin.Context, name, message string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.BadRequest(c, message)
		return 0, false
	}
	return id, true
}

func (h *Handler) userID(c *gin.Context) (int, bool) {
	return pathID(c, "id", "无效的用户 ID")
}
