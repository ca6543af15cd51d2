package recommender

import (
	"errors"
	"fmt"
)

var (
	// ErrIneligibleUser 评分数量不足
	ErrIneligibleUser = errors.New("用户评分数量不足")
	// ErrInsufficientSignal 喜欢或不喜欢的电影为空，无法训练文本模型
	ErrInsufficientSignal = errors.New("用户偏好信号不足")
	// ErrDataIntegrity 片库引用缺失（演员/导演/电影不存在）
	ErrDataIntegrity = errors.New("片库数据不完整")
	// ErrPersistence 推荐结果写入失败，已回滚
	ErrPersistence = errors.New("推荐结果保存失败")
	// ErrNoCandidates 没有可推荐的电影
	ErrNoCandidates = errors.New("没有可推荐的电影")
)

// IneligibleError 携带当前评分数与最低要求
type IneligibleError struct {
	Count    int
	Required int
}

func (e *IneligibleError) Error() string {
	return fmt.Sprintf("%s: 已有 %d 条，至少需要 %d 条", ErrIneligibleUser, e.Count, e.Required)
}

func (e *IneligibleError) Is(target error) bool {
	return target == ErrIneligibleUser
}

// Needed 还需要的评分数
func (e *IneligibleError) Needed() int {
	if n := e.Required - e.Count; n > 0 {
		return n
	}
	return 0
}

// Message 面向用户的提示
func (e *IneligibleError) Message() string {
	return fmt.Sprintf("还需要再评分 %d 部电影才能获得推荐", e.Needed())
}

// checkEligibility 评分数不足时返回 *IneligibleError
func checkEligibility(count, required int) error {
	if count < required {
		return &IneligibleError{Count: count, Required: required}
	}
	return nil
}
