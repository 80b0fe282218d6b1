package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankName(t *testing.T) {
	assert.Equal(t, "Rookie", RankName(0))
	assert.Equal(t, "Rookie", RankName(99))
	assert.Equal(t, "Spotter", RankName(100))
	assert.Equal(t, "Analyst", RankName(500))
	assert.Equal(t, "Detective", RankName(1500))
	assert.Equal(t, "Expert", RankName(4000))
	assert.Equal(t, "Oracle", RankName(25000))
	assert.Equal(t, "Rookie", RankName(-20))
}

func TestGetGamificationStatusWithWeekly(t *testing.T) {
	status := GetGamificationStatusWithWeekly(250, 60)
	assert.Equal(t, "Spotter", status.RankName)
	assert.Equal(t, "Analyst", status.NextRank)
	assert.Equal(t, PointsAnalyst, status.TargetPoints)
	assert.Equal(t, 50.0, status.Progress)
	assert.Equal(t, "Trending", status.WeeklyLabel)

	top := GetGamificationStatus(PointsOracle)
	assert.Equal(t, "Max Level", top.NextRank)
	assert.Equal(t, 100.0, top.Progress)
	assert.Empty(t, top.WeeklyLabel)
}
