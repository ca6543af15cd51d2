// Package recommender 实现基于内容的混合电影推荐引擎。
//
// 引擎由两路算法组成：
//
//   - 结构相似度（k-NN）：类型/演员/导演的 one-hot 向量加上年份、片长，
//     加权余弦相似度，同导演/同主演额外加分。
//   - 文本相关度（朴素贝叶斯）：简介的 TF-IDF 向量，以用户喜欢/不喜欢的电影
//     训练多项式朴素贝叶斯，输出 P(喜欢 | 简介)。
//
// 两路结果合并后按冷启动策略（热门/高分）补足，整体替换该用户的推荐记录。
//
// 每次生成都会根据当前片库与用户评分重新计算特征，不在请求之间共享可变状态。
// 同一用户的并发生成请求会通过 singleflight 合并为一次计算。
//
//	cfg := recommender.DefaultConfig()
//	engine, err := recommender.NewEngine(cfg, catalog, ratings, store, log)
//	res, err := engine.Generate(ctx, userID)
package recommender
