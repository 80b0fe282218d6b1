package http

import (
	"net/http"

	"anoa.com/realorai/internal/modules/vote/dto"
	voteService "anoa.com/realorai/internal/modules/vote/service"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/response"
	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	service voteService.VoteService
}

func NewVoteHandler(service voteService.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

func (h *VoteHandler) SubmitVote(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.SubmitVoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.SubmitVote(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *VoteHandler) GetMyVotes(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query commonDto.PaginationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.GetMyVotes(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
