package recommender

import "math"

const (
	classDisliked = iota
	classLiked
)

// NaiveBayes 多项式朴素贝叶斯，两类：不喜欢 / 喜欢
type NaiveBayes struct {
	logPrior [2]float64
	logTheta [2][]float64
}

// TrainNaiveBayes 用喜欢/不喜欢电影的 TF-IDF 向量训练，alpha 为拉普拉斯平滑系数
//
// 任一类别为空或词表为空时返回 ErrInsufficientSignal。
func TrainNaiveBayes(liked, disliked []TextVector, vocabSize int, alpha float64) (*NaiveBayes, error) {
	if len(liked) == 0 || len(disliked) == 0 || vocabSize == 0 {
		return nil, ErrInsufficientSignal
	}

	nb := &NaiveBayes{}
	total := float64(len(liked) + len(disliked))
	for class, docs := range [2][]TextVector{classDisliked: disliked, classLiked: liked} {
		nb.logPrior[class] = math.Log(float64(len(docs)) / total)

		counts := make([]float64, vocabSize)
		var sum float64
		for _, doc := range docs {
			for _, tw := range doc {
				if tw.Index < vocabSize {
					counts[tw.Index] += tw.Weight
					sum += tw.Weight
				}
			}
		}
		denom := sum + alpha*float64(vocabSize)
		theta := make([]float64, vocabSize)
		for i, c := range counts {
			theta[i] = math.Log((c + alpha) / denom)
		}
		nb.logTheta[class] = theta
	}
	return nb, nil
}

// jointLogLikelihood log P(c) + Σ x_i log θ_ci
func (nb *NaiveBayes) jointLogLikelihood(class int, x TextVector) float64 {
	ll := nb.logPrior[class]
	theta := nb.logTheta[class]
	for _, tw := range x {
		if tw.Index < len(theta) {
			ll += tw.Weight * theta[tw.Index]
		}
	}
	return ll
}

// Prior 先验 P(喜欢)，即没有任何词语时的后验
func (nb *NaiveBayes) Prior() float64 {
	return math.Exp(nb.logPrior[classLiked])
}

// Posterior P(喜欢 | 简介)，取值在 [0, 1]
func (nb *NaiveBayes) Posterior(x TextVector) float64 {
	d := nb.jointLogLikelihood(classDisliked, x) - nb.jointLogLikelihood(classLiked, x)
	// 1 / (1 + e^d)，按符号分支避免溢出
	if d > 0 {
		e := math.Exp(-d)
		return e / (1 + e)
	}
	return 1 / (1 + math.Exp(d))
}
