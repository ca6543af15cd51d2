package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/moovierec/internal/model"
	"github.com/user/moovierec/internal/utils"
)

// RateMovieRequest 评分请求
type RateMovieRequest struct {
	Score int `json:"score" binding:"required,min=1,max=10"` // 1-10 分
}

// RateMovie 创建或覆盖用户对电影的评分，不会自动重新生成推荐
func (h *Handler) RateMovie(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	movieID, ok := pathID(c, "movie_id", "无效的电影 ID")
	if !ok {
		return
	}

	var req RateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "评分必须是 1-10 之间的整数")
		return
	}

	ctx := c.Request.Context()
	movie, err := h.Catalog.FindByID(ctx, movieID)
	if err != nil {
		h.Log.FromContext(ctx).Error("查询电影失败", "movie_id", movieID, "error", err)
		utils.InternalServerError(c, "")
		return
	}
	if movie == nil {
		utils.NotFound(c, "电影不存在")
		return
	}

	rating := &model.Rating{UserID: userID, MovieID: movieID, Score: req.Score}
	if err := h.Ratings.Upsert(ctx, rating); err != nil {
		h.Log.FromContext(ctx).Error("保存评分失败", "user_id", userID, "movie_id", movieID, "error", err)
		utils.InternalServerError(c, "保存评分失败")
		return
	}
	utils.SuccessWithMessage(c, "评分已保存", rating)
}
