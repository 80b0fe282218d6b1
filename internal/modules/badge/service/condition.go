package service

import (
	"fmt"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/pkg/apperror"
)

// Stats is the snapshot of a user's counters that badge conditions read.
type Stats struct {
	TotalVotes   int
	CorrectVotes int
	MaxStreak    int
	Uploads      int
	Points       int
}

func StatsOf(u *entity.User) Stats {
	return Stats{
		TotalVotes:   u.TotalVotes,
		CorrectVotes: u.CorrectVotes,
		MaxStreak:    u.MaxConsecutiveCorrect,
		Uploads:      u.UploadCount,
		Points:       u.Points,
	}
}

var metrics = map[entity.BadgeMetric]func(Stats) int{
	entity.MetricTotalVotes:   func(s Stats) int { return s.TotalVotes },
	entity.MetricCorrectVotes: func(s Stats) int { return s.CorrectVotes },
	entity.MetricAccuracy:     func(s Stats) int { return entity.Accuracy(s.CorrectVotes, s.TotalVotes) },
	entity.MetricMaxStreak:    func(s Stats) int { return s.MaxStreak },
	entity.MetricUploads:      func(s Stats) int { return s.Uploads },
	entity.MetricPoints:       func(s Stats) int { return s.Points },
}

var comparators = map[entity.BadgeOperator]func(actual, threshold int) bool{
	entity.OpGTE: func(a, t int) bool { return a >= t },
	entity.OpLTE: func(a, t int) bool { return a <= t },
	entity.OpEQ:  func(a, t int) bool { return a == t },
}

// ValidateCondition rejects metrics or operators the evaluator does not know.
func ValidateCondition(c entity.BadgeCondition) error {
	if _, ok := metrics[c.Metric]; !ok {
		return apperror.Validation(fmt.Sprintf("unknown badge metric %q", c.Metric))
	}
	if _, ok := comparators[c.Operator]; !ok {
		return apperror.Validation(fmt.Sprintf("unknown badge operator %q", c.Operator))
	}
	if c.Value < 0 {
		return apperror.Validation("badge threshold must not be negative")
	}
	return nil
}

// Evaluate reports whether stats satisfy the condition.
func Evaluate(c entity.BadgeCondition, s Stats) (bool, error) {
	metric, ok := metrics[c.Metric]
	if !ok {
		return false, fmt.Errorf("unknown badge metric %q", c.Metric)
	}
	compare, ok := comparators[c.Operator]
	if !ok {
		return false, fmt.Errorf("unknown badge operator %q", c.Operator)
	}
	return compare(metric(s), c.Value), nil
}
