package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/watchhive/config"
)

func TestScorer_RankingExamples(t *testing.T) {
	s := DefaultScorer()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	hourOld := s.Score(10, 0, now.Add(-time.Hour), now)
	twoDaysOld := s.Score(0, 0, now.Add(-48*time.Hour), now)
	halfHourOld := s.Score(10, 0, now.Add(-30*time.Minute), now)

	assert.Greater(t, hourOld, twoDaysOld)
	assert.Less(t, hourOld, halfHourOld)
	assert.InDelta(t, 11/5.196152, hourOld, 1e-4)
}

func TestScorer_MinimumAge(t *testing.T) {
	s := DefaultScorer()
	now := time.Now()
	// 未满半小时与刚好半小时同分，未来时间同样按半小时计
	assert.Equal(t, s.Score(3, 1, now.Add(-30*time.Minute), now), s.Score(3, 1, now, now))
	assert.Equal(t, s.Score(3, 1, now, now), s.Score(3, 1, now.Add(time.Hour), now))
}

func TestScorer_CommentsWeighDouble(t *testing.T) {
	s := DefaultScorer()
	now := time.Now()
	created := now.Add(-5 * time.Hour)
	assert.Equal(t, s.Score(2, 0, created, now), s.Score(0, 1, created, now))
}

func TestScorer_Monotonicity(t *testing.T) {
	s := DefaultScorer()
	now := time.Now()

	for _, age := range []time.Duration{0, time.Hour, 24 * time.Hour, 30 * 24 * time.Hour} {
		prev := -1.0
		for engagement := int64(0); engagement < 50; engagement += 7 {
			got := s.Score(engagement, engagement/2, now.Add(-age), now)
			assert.GreaterOrEqual(t, got, prev, "engagement up must not lower score (age %s)", age)
			prev = got
		}
	}

	for _, likes := range []int64{0, 1, 10, 1000} {
		prev := s.Score(likes, 0, now, now)
		for h := 1; h <= 240; h += 13 {
			got := s.Score(likes, 0, now.Add(-time.Duration(h)*time.Hour), now)
			assert.LessOrEqual(t, got, prev, "age up must not raise score (likes %d)", likes)
			prev = got
		}
	}
}

func TestNewScorer_FromConfig(t *testing.T) {
	s := NewScorer(config.FeedConfig{ScoreExponent: 2, ScoreAgeOffset: 1})
	assert.Equal(t, Scorer{Exponent: 2, AgeOffset: 1, MinAgeHours: 0.5}, s)
	assert.Equal(t, DefaultScorer(), NewScorer(config.FeedConfig{}))
}
