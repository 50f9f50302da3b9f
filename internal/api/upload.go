package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motumbon/contratos/internal/importer"
	"github.com/motumbon/contratos/internal/model"
	"github.com/motumbon/contratos/internal/service/calculator"
	"github.com/motumbon/contratos/internal/store"
)

// UploadResponse 上传成功响应
type UploadResponse struct {
	Message string                  `json:"message"`
	Filters model.FilterOptions     `json:"filters"`
	Buckets model.ExpirationBuckets `json:"buckets"`
	Soonest []model.ContractRecord  `json:"soonest"`
	Count   int                     `json:"count"`
}

// BuildUploadResponse 根据记录生成上传摘要
func BuildUploadResponse(engine *calculator.Engine, records []model.ContractRecord) UploadResponse {
	summary := engine.Summarize(records)
	return UploadResponse{
		Message: importer.MsgSuccess,
		Filters: calculator.BuildFilterOptions(records),
		Buckets: summary.Buckets,
		Soonest: summary.Soonest,
		Count:   len(records),
	}
}

// Upload 处理 POST /upload
func (h *Handler) Upload(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("upload panic", "session", sessionID(c), "panic", r)
			writeError(c, importer.InternalError(fmt.Errorf("panic: %v", r)))
		}
	}()

	tooLarge := importer.InputError(importer.ErrPayloadTooLarge,
		fmt.Sprintf(importer.MsgPayloadTooLarge, h.maxUpload>>20))

	if c.Request.ContentLength > h.maxUpload {
		writeError(c, tooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(c, tooLarge)
			return
		}
		writeError(c, importer.InputError(importer.ErrNoFile, importer.MsgNoFile))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(c, importer.InputError(importer.ErrEmptyFilename, importer.MsgEmptyFilename))
		return
	}
	if header.Size > h.maxUpload {
		writeError(c, tooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(c, importer.InternalError(err))
		return
	}

	ctx := c.Request.Context()
	sid := sessionID(c)
	logID := h.startUploadLog(ctx, sid, header.Filename, data)

	result, err := h.coordinator.Process(ctx, importer.Upload{Filename: header.Filename, Data: data})
	if err != nil {
		var e *importer.Error
		if !errors.As(err, &e) {
			e = importer.InternalError(err)
		}
		h.finishUploadLog(ctx, logID, store.UploadError, string(e.Kind), e.Message, 0)
		writeError(c, e)
		return
	}

	if err := h.sessions.Put(ctx, sid, result.Set); err != nil {
		h.finishUploadLog(ctx, logID, store.UploadError, string(importer.KindInternal), err.Error(), 0)
		writeError(c, importer.InternalError(err))
		return
	}
	h.finishUploadLog(ctx, logID, store.UploadSuccess, "", "", result.Set.Len())

	c.JSON(http.StatusOK, BuildUploadResponse(h.engine, result.Set.Records))
}

// startUploadLog 记录上传开始；日志失败不影响上传本身
func (h *Handler) startUploadLog(ctx context.Context, sid, filename string, data []byte) int64 {
	if h.uploads == nil {
		return 0
	}
	sum := sha256.Sum256(data)
	id, err := h.uploads.CreateUploadLog(ctx, sid, filename, int64(len(data)), hex.EncodeToString(sum[:]))
	if err != nil {
		h.logger.Warn("create upload log failed", "session", sid, "error", err)
		return 0
	}
	return id
}

func (h *Handler) finishUploadLog(ctx context.Context, id int64, status, kind, msg string, count int) {
	if h.uploads == nil || id == 0 {
		return
	}
	if err := h.uploads.FinishUploadLog(ctx, id, status, kind, msg, count); err != nil {
		h.logger.Warn("finish upload log failed", "id", id, "error", err)
	}
}
