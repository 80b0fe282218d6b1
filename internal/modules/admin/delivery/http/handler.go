package handler

import (
	"net/http"

	"anoa.com/realorai/internal/modules/admin/dto"
	adminService "anoa.com/realorai/internal/modules/admin/service"
	contentService "anoa.com/realorai/internal/modules/content/service"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/response"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService   adminService.AdminService
	contentService contentService.ContentService
}

func NewAdminHandler(adminService adminService.AdminService, contentService contentService.ContentService) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		contentService: contentService,
	}
}

func (h *AdminHandler) RevealAnswer(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.adminService.RevealAnswer(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *AdminHandler) SetContentStatus(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.SetStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.contentService.SetStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": res})
}

func (h *AdminHandler) ListPendingContent(c *gin.Context) {
	var query commonDto.PaginationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.contentService.ListPending(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) SetUserPoints(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.SetPointsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.adminService.SetUserPoints(c.Request.Context(), id, *input.Points)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": res})
}

func (h *AdminHandler) SetUserActive(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.SetActiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.adminService.SetUserActive(c.Request.Context(), adminID, id, *input.IsActive)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": res})
}

func (h *AdminHandler) SetUserRole(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.SetRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.adminService.SetUserRole(c.Request.Context(), adminID, id, input.Role)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": res})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var query dto.UserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.adminService.ListUsers(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetRanking(c *gin.Context) {
	ranking, err := h.adminService.GetRanking(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ranking})
}
