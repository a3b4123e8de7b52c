package models

import (
	"time"
)

// Mood is a five-point self-reported scale.
type Mood string

const (
	MoodGreat    Mood = "great"
	MoodGood     Mood = "good"
	MoodOkay     Mood = "okay"
	MoodNotGood  Mood = "not_good"
	MoodTerrible Mood = "terrible"
)

// moodScores maps each mood onto a [-1, 1] scale for trend averaging.
var moodScores = map[Mood]float64{
	MoodGreat:    1.0,
	MoodGood:     0.5,
	MoodOkay:     0.0,
	MoodNotGood:  -0.5,
	MoodTerrible: -1.0,
}

// IsValid reports whether m is one of the five supported moods.
func (m Mood) IsValid() bool {
	_, ok := moodScores[m]
	return ok
}

// Score returns the numeric trend value for the mood, 0 for unknown values.
func (m Mood) Score() float64 {
	return moodScores[m]
}

// CheckIn is one daily wellness entry. Note and Suggestion are the
// free-text/AI-derived fields withheld from data_only sharing.
type CheckIn struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index"           json:"user_id"`

	Mood        Mood   `gorm:"type:varchar(20);not null" json:"mood"`
	StressLevel int    `gorm:"not null"                  json:"stress_level"` // 1..10
	Note        string `gorm:"type:text"                 json:"note,omitempty"`
	Suggestion  string `gorm:"type:text"                 json:"suggestion,omitempty"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CheckIn) TableName() string {
	return "check_ins"
}

// Day returns the calendar-day bucket of the entry in the given location.
func (c *CheckIn) Day(loc *time.Location) string {
	return c.CreatedAt.In(loc).Format("2006-01-02")
}
