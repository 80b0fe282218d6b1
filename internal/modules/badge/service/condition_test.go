package service

import (
	"testing"

	"anoa.com/realorai/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	stats := Stats{TotalVotes: 10, CorrectVotes: 8, MaxStreak: 5, Uploads: 1, Points: 80}

	tests := []struct {
		name string
		cond entity.BadgeCondition
		want bool
	}{
		{"votes reached", entity.BadgeCondition{Metric: entity.MetricTotalVotes, Operator: entity.OpGTE, Value: 10}, true},
		{"votes not reached", entity.BadgeCondition{Metric: entity.MetricTotalVotes, Operator: entity.OpGTE, Value: 11}, false},
		{"accuracy", entity.BadgeCondition{Metric: entity.MetricAccuracy, Operator: entity.OpGTE, Value: 80}, true},
		{"streak equals", entity.BadgeCondition{Metric: entity.MetricMaxStreak, Operator: entity.OpEQ, Value: 5}, true},
		{"uploads at most", entity.BadgeCondition{Metric: entity.MetricUploads, Operator: entity.OpLTE, Value: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.cond, stats)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Evaluate(entity.BadgeCondition{Metric: "karma", Operator: entity.OpGTE}, stats)
	assert.Error(t, err)
}

func TestValidateCondition(t *testing.T) {
	assert.NoError(t, ValidateCondition(entity.BadgeCondition{Metric: entity.MetricPoints, Operator: entity.OpGTE, Value: 100}))
	assert.Error(t, ValidateCondition(entity.BadgeCondition{Metric: "karma", Operator: entity.OpGTE}))
	assert.Error(t, ValidateCondition(entity.BadgeCondition{Metric: entity.MetricPoints, Operator: "gt"}))
	assert.Error(t, ValidateCondition(entity.BadgeCondition{Metric: entity.MetricPoints, Operator: entity.OpGTE, Value: -1}))
}
