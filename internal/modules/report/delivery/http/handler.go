package http

import (
	"net/http"

	"anoa.com/realorai/internal/modules/report/dto"
	reportService "anoa.com/realorai/internal/modules/report/service"
	"anoa.com/realorai/pkg/response"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service reportService.ReportService
}

func NewReportHandler(service reportService.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) CreateReport(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.CreateReport(c.Request.Context(), userID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": res})
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	var query dto.ReportListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.ListReports(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReportHandler) ResolveReport(c *gin.Context) {
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

	var input dto.ResolveReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.ResolveReport(c.Request.Context(), id, adminID, input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": res})
}
