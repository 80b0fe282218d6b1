package service

import (
	"math"

	commonDto "anoa.com/realorai/pkg/dto"
)

// Rank thresholds (all-time points). Ranks never demote.
const (
	PointsOracle    = 10000
	PointsExpert    = 4000
	PointsDetective = 1500
	PointsAnalyst   = 500
	PointsSpotter   = 100
	PointsRookie    = 0
)

// Weekly activity thresholds, points earned in the last 7 days.
const (
	WeeklyOnFire   = 100
	WeeklyTrending = 50
	WeeklyActive   = 20
)

type tier struct {
	name   string
	points int
}

// tiers is ordered from highest to lowest.
var tiers = []tier{
	{"Oracle", PointsOracle},
	{"Expert", PointsExpert},
	{"Detective", PointsDetective},
	{"Analyst", PointsAnalyst},
	{"Spotter", PointsSpotter},
	{"Rookie", PointsRookie},
}

// GetGamificationStatus is the status without weekly context.
func GetGamificationStatus(allTimePoints int) commonDto.GamificationStatus {
	return GetGamificationStatusWithWeekly(allTimePoints, 0)
}

// RankName returns the tier name for a point total.
func RankName(points int) string {
	return GetGamificationStatus(points).RankName
}

func GetGamificationStatusWithWeekly(allTimePoints, weeklyPoints int) commonDto.GamificationStatus {
	status := commonDto.GamificationStatus{
		CurrentPoints: allTimePoints,
		WeeklyPoints:  weeklyPoints,
	}

	for i, t := range tiers {
		if allTimePoints < t.points {
			continue
		}
		status.RankName = t.name
		if i == 0 {
			status.NextRank = "Max Level"
			status.TargetPoints = t.points
			status.Progress = 100
		} else {
			next := tiers[i-1]
			status.NextRank = next.name
			status.TargetPoints = next.points
			status.Progress = float64(allTimePoints) / float64(next.points) * 100
		}
		break
	}
	if status.RankName == "" {
		// negative totals only happen through admin adjustment
		status.RankName = tiers[len(tiers)-1].name
		status.NextRank = tiers[len(tiers)-2].name
		status.TargetPoints = tiers[len(tiers)-2].points
	}

	switch {
	case weeklyPoints >= WeeklyOnFire:
		status.WeeklyLabel = "On Fire"
	case weeklyPoints >= WeeklyTrending:
		status.WeeklyLabel = "Trending"
	case weeklyPoints >= WeeklyActive:
		status.WeeklyLabel = "Active"
	}

	status.Progress = math.Round(status.Progress*100) / 100
	return status
}
