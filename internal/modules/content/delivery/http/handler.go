package http

import (
	"context"
	"net/http"

	"anoa.com/realorai/internal/entity"
	"anoa.com/realorai/internal/modules/content/dto"
	contentService "anoa.com/realorai/internal/modules/content/service"
	view "anoa.com/realorai/internal/modules/view/service"
	commonDto "anoa.com/realorai/pkg/dto"
	"anoa.com/realorai/pkg/logger"
	"anoa.com/realorai/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContentHandler struct {
	service contentService.ContentService
	views   view.ViewService
}

// NewContentHandler builds the handler. views may be nil.
func NewContentHandler(service contentService.ContentService, views view.ViewService) *ContentHandler {
	return &ContentHandler{service: service, views: views}
}

// ViewerFrom returns the caller set by the auth middleware, or nil.
func ViewerFrom(c *gin.Context) *dto.Viewer {
	value, ok := c.Get(response.ContextUser)
	if !ok {
		return nil
	}
	user, ok := value.(*entity.User)
	if !ok || user == nil {
		return nil
	}
	return &dto.Viewer{ID: user.ID, IsAdmin: user.IsAdmin()}
}

// tagsFromForm passes a single form value through as a string so it can be
// parsed as JSON or CSV, and several values as a list.
func tagsFromForm(c *gin.Context) any {
	values := c.PostFormArray("tags")
	if len(values) == 0 {
		values = c.PostFormArray("tags[]")
	}
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}

func (h *ContentHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.CreateContentInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindingError(c, err)
		return
	}
	input.Tags = tagsFromForm(c)

	var upload commonDto.UploadFile
	fileHeader, err := c.FormFile("media")
	if err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		defer file.Close()

		upload = commonDto.UploadFile{
			Reader:      file,
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
		}
	}

	res, err := h.service.Create(c.Request.Context(), userID, input, upload)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"content": res})
}

func (h *ContentHandler) GetAll(c *gin.Context) {
	var query dto.ContentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.GetAll(c.Request.Context(), query, ViewerFrom(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ContentHandler) Search(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.Search(c.Request.Context(), query, ViewerFrom(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ContentHandler) GetMine(c *gin.Context) {
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

	res, err := h.service.GetMine(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ContentHandler) GetByID(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	viewer := ViewerFrom(c)
	res, err := h.service.GetByID(c.Request.Context(), id, viewer)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if h.views != nil {
		viewerKey := "ip:" + c.ClientIP()
		if viewer != nil {
			viewerKey = viewer.ID.String()
		}
		go func() {
			if err := h.views.RecordView(context.Background(), id, viewerKey); err != nil {
				logger.Log.Warn("failed to record view", zap.String("content_id", id.String()), zap.Error(err))
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"content": res})
}

func (h *ContentHandler) GetTally(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	tally, err := h.service.GetTally(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tally": tally})
}

func (h *ContentHandler) Update(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input dto.UpdateContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindingError(c, err)
		return
	}

	res, err := h.service.Update(c.Request.Context(), id, ViewerFrom(c), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": res})
}

func (h *ContentHandler) Delete(c *gin.Context) {
	id, err := response.ParseUUIDParam(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, ViewerFrom(c)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "content deleted"})
}
