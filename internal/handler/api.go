package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/moovierec/internal/utils"
)

// RecommendationStatus 推荐资格与最近生成状态
func (h *Handler) RecommendationStatus(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	status, err := h.Engine.Status(c.Request.Context(), userID)
	if err != nil {
		h.Log.FromContext(c.Request.Context()).Error("获取推荐状态失败", "user_id", userID, "error", err)
		utils.InternalServerError(c, "获取推荐状态失败")
		return
	}
	utils.SuccessWithMessage(c, status.Message, status)
}

// GenerateRecommendations 重新生成推荐并整体替换旧结果
//
// 评分不足或没有候选电影时返回 200 且 success=false，message 说明原因。
func (h *Handler) GenerateRecommendations(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.generateTimeout())
	defer cancel()

	res, err := h.Engine.Generate(ctx, userID)
	if err != nil {
		h.Log.FromContext(ctx).Error("生成推荐失败", "user_id", userID, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			utils.Error(c, http.StatusGatewayTimeout, "生成推荐超时，请稍后重试")
			return
		}
		utils.InternalServerError(c, "生成推荐失败")
		return
	}
	if !res.Success {
		utils.Fail(c, http.StatusOK, res.Message, res)
		return
	}
	utils.SuccessWithMessage(c, res.Message, res)
}

// ListRecommendations 读取已保存的推荐，不重新计算；limit 参数可选
func (h *Handler) ListRecommendations(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	recs, err := h.Engine.List(c.Request.Context(), userID, limit)
	if err != nil {
		h.Log.FromContext(c.Request.Context()).Error("读取推荐失败", "user_id", userID, "error", err)
		utils.InternalServerError(c, "读取推荐失败")
		return
	}
	utils.Success(c, recs)
}

// DeleteRecommendations 删除用户的全部推荐
func (h *Handler) DeleteRecommendations(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	deleted, err := h.Engine.Delete(c.Request.Context(), userID)
	if err != nil {
		h.Log.FromContext(c.Request.Context()).Error("删除推荐失败", "user_id", userID, "error", err)
		utils.InternalServerError(c, "删除推荐失败")
		return
	}
	message := "没有可删除的推荐"
	if deleted {
		message = "推荐已删除"
	}
	utils.SuccessWithMessage(c, message, gin.H{"deleted": deleted})
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		utils.BadRequest(c, "limit 必须是非负整数")
		return 0, false
	}
	return limit, true
}
