package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motumbon/contratos/internal/importer"
)

// ErrorResponse 失败响应
type ErrorResponse struct {
	Error string        `json:"error"`
	Kind  importer.Kind `json:"kind"`
}

// statusFor 失败分类对应的 HTTP 状态码
func statusFor(err error) int {
	if errors.Is(err, importer.ErrPayloadTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch importer.KindOf(err) {
	case importer.KindInputValidation, importer.KindSchemaResolution, importer.KindRecordBuild:
		return http.StatusBadRequest
	case importer.KindContentFilter:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	var e *importer.Error
	if !errors.As(err, &e) {
		e = importer.InternalError(err)
	}
	c.JSON(statusFor(e), ErrorResponse{Error: e.Message, Kind: e.Kind})
}
