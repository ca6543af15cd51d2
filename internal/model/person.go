package model

import (
	"sort"
	"time"
)

// PersonKind 人物类别
type PersonKind string

const (
	PersonActor    PersonKind = "actor"
	PersonDirector PersonKind = "director"
)

// Person 人物（演员/导演）的统一访问接口
type Person interface {
	PersonID() int
	PersonName() string
	Kind() PersonKind
	// BirthInfo 出生日期（可能为空）与出生地
	BirthInfo() (*time.Time, string)
	// Filmography 参与过的电影 ID（需预加载关联）
	Filmography() []int
}

// Actor 演员
type Actor struct {
	ID         int          `json:"id" db:"id" gorm:"primaryKey"`
	Name       string       `json:"name" db:"name" gorm:"not null;index"`
	BirthDate  *time.Time   `json:"birth_date,omitempty" db:"birth_date"`
	BirthPlace string       `json:"birth_place,omitempty" db:"birth_place"`
	Credits    []MovieActor `json:"-" gorm:"foreignKey:ActorID"`
}

func (a *Actor) PersonID() int { return a.ID }
func (a *Actor) PersonName() string { return a.Name }
func (a *Actor) Kind() PersonKind { return PersonActor }
func (a *Actor) BirthInfo() (*time.Time, string) { return a.BirthDate, a.BirthPlace }

func (a *Actor) Filmography() []int {
	ids := make([]int, 0, len(a.Credits))
	for _, c := range a.Credits {
		ids = append(ids, c.MovieID)
	}
	sort.Ints(ids)
	return ids
}

// Director 导演
type Director struct {
	ID         int        `json:"id" db:"id" gorm:"primaryKey"`
	Name       string     `json:"name" db:"name" gorm:"not null;index"`
	BirthDate  *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	BirthPlace string     `json:"birth_place,omitempty" db:"birth_place"`
	Movies     []Movie    `json:"-" gorm:"many2many:movie_directors;"`
}

func (d *Director) PersonID() int { return d.ID }
func (d *Director) PersonName() string { return d.Name }
func (d *Director) Kind() PersonKind { return PersonDirector }
func (d *Director) BirthInfo() (*time.Time, string) { return d.BirthDate, d.BirthPlace }

func (d *Director) Filmography() []int {
	ids := make([]int, 0, len(d.Movies))
	for _, m := range d.Movies {
		ids = append(ids, m.ID)
	}
	sort.Ints(ids)
	return ids
}
