package feed

import (
	"math"
	"time"

	"github.com/d60-Lab/watchhive/config"
)

// Scorer 热度分：(likes + 2*comments + 1) / (max(minAge, ageHours) + offset)^exponent
type Scorer struct {
	Exponent    float64
	AgeOffset   float64
	MinAgeHours float64
}

// DefaultScorer 与线上既有排序保持一致的参数
func DefaultScorer() Scorer {
	return Scorer{Exponent: 1.5, AgeOffset: 2, MinAgeHours: 0.5}
}

func NewScorer(cfg config.FeedConfig) Scorer {
	s := DefaultScorer()
	if cfg.ScoreExponent > 0 {
		s.Exponent = cfg.ScoreExponent
	}
	if cfg.ScoreAgeOffset > 0 {
		s.AgeOffset = cfg.ScoreAgeOffset
	}
	if cfg.ScoreMinAgeHours > 0 {
		s.MinAgeHours = cfg.ScoreMinAgeHours
	}
	return s
}

func (s Scorer) Score(likes, comments int64, createdAt, now time.Time) float64 {
	engagement := float64(likes) + 2*float64(comments)
	age := math.Max(s.MinAgeHours, now.Sub(createdAt).Hours())
	return (engagement + 1) / math.Pow(age+s.AgeOffset, s.Exponent)
}
