package model

// AllModels 需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&Genre{},
		&Actor{},
		&Director{},
		&Movie{},
		&MovieActor{},
		&Rating{},
		&Recommendation{},
		&JobCursor{},
	}
}
