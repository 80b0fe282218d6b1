package http

import (
	"net/http"

	"anoa.com/realorai/internal/modules/badge/dto"
	badgeService "anoa.com/realorai/internal/modules/badge/service"
	"anoa.com/realorai/pkg/response"
	"github.com/gin-gonic/gin"
)

type BadgeHandler struct {
	service badgeService.BadgeService
}

func NewBadgeHandler(service badgeService.BadgeService) *BadgeHandler {
	return &BadgeHandler{service: service}
}

func (h *BadgeHandler) ListBadges(c *gin.Context) {
	badges, err := h.service.ListBadges(c.Request.Context(), false)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

func (h *BadgeHandler) ListAllBadges(c *gin.Context) {
	badges, err := h.service.ListBadges(c.Request.Context(), true)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

func (h *BadgeHandler) CreateBadge(c *gin.Context) {
	var input dto.CreateBadgeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	badge, err := h.service.CreateBadge(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"badge": badge})
}

func (h *BadgeHandler) UpdateBadge(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateBadgeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	badge, err := h.service.UpdateBadge(c.Request.Context(), id, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"badge": badge})
}
