package http

import (
	"context"
	"net/http"

	"anoa.com/realorai/internal/modules/user/dto"
	userService "anoa.com/realorai/internal/modules/user/service"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FollowHandler struct {
	service userService.FollowService
}

func NewFollowHandler(service userService.FollowService) *FollowHandler {
	return &FollowHandler{service: service}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	targetID, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Follow(c.Request.Context(), userID, targetID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "followed"})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	targetID, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

func (h *FollowHandler) Followers(c *gin.Context) {
	h.list(c, h.service.Followers)
}

func (h *FollowHandler) Following(c *gin.Context) {
	h.list(c, h.service.Following)
}

type listFunc func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.PublicUser, int64, error)

func (h *FollowHandler) list(c *gin.Context, fetch listFunc) {
	userID, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query commonDto.PaginationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindingError(c, err)
		return
	}
	page, limit := query.Normalize(20, 100)

	users, total, err := fetch(c.Request.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": users,
		"meta": commonDto.NewPaginationMeta(page, limit, total),
	})
}
