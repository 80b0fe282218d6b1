package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteScore(t *testing.T) {
	at := time.Now()

	v := &Vote{Choice: ChoiceAI, State: VotePending}
	require.NoError(t, v.Score(ChoiceAI, 10, at))
	assert.Equal(t, VoteScored, v.State)
	require.NotNil(t, v.IsCorrect)
	assert.True(t, *v.IsCorrect)
	assert.Equal(t, 10, v.PointsEarned)

	assert.ErrorIs(t, v.Score(ChoiceAI, 10, at), ErrVoteAlreadyScored)

	wrong := &Vote{Choice: ChoiceReal, State: VotePending}
	require.NoError(t, wrong.Score(ChoiceAI, 10, at))
	assert.False(t, *wrong.IsCorrect)
	assert.Zero(t, wrong.PointsEarned)
}

func TestContentPercentages(t *testing.T) {
	c := &Content{AIVotes: 3, RealVotes: 2, TotalVotes: 5}
	assert.Equal(t, 60, c.AIPercentage())
	assert.Equal(t, 40, c.RealPercentage())

	empty := &Content{}
	assert.Zero(t, empty.AIPercentage())
	assert.Zero(t, empty.RealPercentage())

	third := &Content{AIVotes: 1, RealVotes: 2, TotalVotes: 3}
	assert.Equal(t, 100, third.AIPercentage()+third.RealPercentage())
}

func TestContentAcceptsVotes(t *testing.T) {
	c := &Content{IsActive: true, Status: StatusApproved}
	assert.True(t, c.AcceptsVotes())

	c.IsRevealed = true
	assert.False(t, c.AcceptsVotes())

	c = &Content{IsActive: true, Status: StatusPending}
	assert.False(t, c.AcceptsVotes())

	c = &Content{IsActive: false, Status: StatusApproved}
	assert.False(t, c.AcceptsVotes())
}

func TestGroundTruth(t *testing.T) {
	assert.Equal(t, ChoiceAI, (&Content{IsAI: true}).GroundTruth())
	assert.Equal(t, ChoiceReal, (&Content{IsAI: false}).GroundTruth())
}

func TestAccuracy(t *testing.T) {
	assert.Zero(t, Accuracy(0, 0))
	assert.Equal(t, 67, Accuracy(2, 3))
	assert.Equal(t, 100, (&User{CorrectVotes: 4, TotalVotes: 4}).Accuracy())
}
