package http

import (
	"net/http"

	"anoa.com/realorai/internal/modules/leaderboard/dto"
	leaderboardRepo "anoa.com/realorai/internal/modules/leaderboard/repository"
	leaderboardService "anoa.com/realorai/internal/modules/leaderboard/service"
	"anoa.com/realorai/pkg/response"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	var query dto.LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindingError(c, err)
		return
	}
	if query.Timeframe == "" {
		query.Timeframe = leaderboardRepo.TimeframeAllTime
	}
	if query.Limit == 0 {
		query.Limit = 10
	}

	board, err := h.service.GetLeaderboard(c.Request.Context(), query.Limit, query.Timeframe)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": board, "timeframe": query.Timeframe})
}
