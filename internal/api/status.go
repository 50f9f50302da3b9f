package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/motumbon/contratos/internal/importer"
	"github.com/motumbon/contratos/internal/model"
)

// StatusResponse 会话状态
type StatusResponse struct {
	Initialized bool              `json:"initialized"`
	Count       int               `json:"count"`
	Filename    string            `json:"filename,omitempty"`
	Sheet       string            `json:"sheet,omitempty"`
	UploadedAt  *time.Time        `json:"uploadedAt,omitempty"`
	Mapping     map[string]string `json:"mapping,omitempty"`
}

// GetStatus 获取当前会话状态
func (h *Handler) GetStatus(c *gin.Context) {
	rs, err := h.loadSet(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if rs == nil {
		c.JSON(http.StatusOK, StatusResponse{})
		return
	}
	uploadedAt := rs.UploadedAt
	c.JSON(http.StatusOK, StatusResponse{
		Initialized: true,
		Count:       rs.Len(),
		Filename:    rs.Filename,
		Sheet:       rs.Sheet,
		UploadedAt:  &uploadedAt,
		Mapping:     rs.Mapping,
	})
}

// ListUploads 当前会话的上传历史；未启用上传日志时返回空列表
func (h *Handler) ListUploads(c *gin.Context) {
	if h.uploads == nil {
		c.JSON(http.StatusOK, gin.H{"items": []model.UploadLog{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.uploads.ListUploadLogs(c.Request.Context(), sessionID(c), limit)
	if err != nil {
		writeError(c, importer.InternalError(err))
		return
	}
	if items == nil {
		items = []model.UploadLog{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
