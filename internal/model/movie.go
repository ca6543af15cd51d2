package model

import (
	"sort"
	"time"
)

// Movie 电影（推荐引擎只读）
type Movie struct {
	ID          int          `json:"id" db:"id" gorm:"primaryKey"`
	Title       string       `json:"title" db:"title" gorm:"not null"`
	Year        int          `json:"year" db:"year" gorm:"index"` // 0 表示未知
	Runtime     int          `json:"runtime" db:"runtime"`        // 分钟，0 表示未知
	Description string       `json:"description" db:"description"`
	Genres      []Genre      `json:"genres" gorm:"many2many:movie_genres;"`
	Cast        []MovieActor `json:"cast" gorm:"foreignKey:MovieID"`
	Directors   []Director   `json:"directors" gorm:"many2many:movie_directors;"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at" gorm:"index"`
}

// Genre 类型
type Genre struct {
	ID   int    `json:"id" db:"id" gorm:"primaryKey"`
	Name string `json:"name" db:"name" gorm:"unique;not null"`
}

// MovieActor 演职员表，BillingOrder 越小越靠前
type MovieActor struct {
	MovieID      int    `json:"movie_id" db:"movie_id" gorm:"primaryKey"`
	ActorID      int    `json:"actor_id" db:"actor_id" gorm:"primaryKey"`
	BillingOrder int    `json:"billing_order" db:"billing_order" gorm:"index"`
	Character    string `json:"character,omitempty" db:"character"`
	Actor        *Actor `json:"actor,omitempty" gorm:"foreignKey:ActorID"` // 关联查询时填充
}

// GenreIDs 获取类型 ID 列表
func (m *Movie) GenreIDs() []int {
	ids := make([]int, 0, len(m.Genres))
	for _, g := range m.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// OrderedCast 按署名顺序返回演职员表副本
func (m *Movie) OrderedCast() []MovieActor {
	cast := make([]MovieActor, len(m.Cast))
	copy(cast, m.Cast)
	sort.SliceStable(cast, func(i, j int) bool {
		if cast[i].BillingOrder != cast[j].BillingOrder {
			return cast[i].BillingOrder < cast[j].BillingOrder
		}
		return cast[i].ActorID < cast[j].ActorID
	})
	return cast
}

// ActorPeople 返回已加载的演员（按署名顺序），未加载的引用会被跳过
func (m *Movie) ActorPeople() []Person {
	cast := m.OrderedCast()
	people := make([]Person, 0, len(cast))
	for _, c := range cast {
		if c.Actor != nil {
			people = append(people, c.Actor)
		}
	}
	return people
}

// DirectorPeople 返回导演
func (m *Movie) DirectorPeople() []Person {
	people := make([]Person, 0, len(m.Directors))
	for i := range m.Directors {
		people = append(people, &m.Directors[i])
	}
	return people
}
