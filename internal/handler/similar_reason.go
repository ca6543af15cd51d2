package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/moovierec/internal/utils"
)

// RecommendationsWithReasons 返回带推荐理由的已保存推荐
func (h *Handler) RecommendationsWithReasons(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	explanations, err := h.Reasons.Explain(c.Request.Context(), userID, limit)
	if err != nil {
		h.Log.FromContext(c.Request.Context()).Error("生成推荐理由失败", "user_id", userID, "error", err)
		utils.InternalServerError(c, "生成推荐理由失败")
		return
	}
	utils.Success(c, explanations)
}
