package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motumbon/contratos/internal/importer"
	"github.com/motumbon/contratos/internal/model"
	"github.com/motumbon/contratos/internal/service/calculator"
	"github.com/motumbon/contratos/internal/service/excel"
)

// DataResponse GET /data 响应
type DataResponse struct {
	Records []model.ContractRecord   `json:"records"`
	Count   int                      `json:"count"`
	Buckets *model.ExpirationBuckets `json:"buckets,omitempty"`
	Soonest []model.ContractRecord   `json:"soonest,omitempty"`
}

// parseQuery 读取筛选参数；linea/cliente/producto 可重复
func parseQuery(c *gin.Context) (calculator.Query, error) {
	r, err := calculator.ParseDateRange(c.Query("date_range"))
	if err != nil {
		return calculator.Query{}, importer.InputError(err, "Rango de fechas inválido: "+c.Query("date_range"))
	}
	return calculator.Query{
		Lineas:    c.QueryArray("linea"),
		Clientes:  c.QueryArray("cliente"),
		Productos: c.QueryArray("producto"),
		Range:     r,
	}, nil
}

// loadSet 读取当前会话的数据集；没有上传过时返回 nil
func (h *Handler) loadSet(c *gin.Context) (*model.RecordSet, error) {
	rs, ok, err := h.sessions.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		return nil, importer.InternalError(err)
	}
	if !ok {
		return nil, nil
	}
	return rs, nil
}

// GetData 处理 GET /data
func (h *Handler) GetData(c *gin.Context) {
	rs, err := h.loadSet(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if rs.Len() == 0 {
		c.JSON(http.StatusOK, DataResponse{Records: []model.ContractRecord{}})
		return
	}

	q, err := parseQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	records := h.engine.Apply(rs.Records, q)
	summary := h.engine.Summarize(records)
	c.JSON(http.StatusOK, DataResponse{
		Records: records,
		Count:   len(records),
		Buckets: &summary.Buckets,
		Soonest: summary.Soonest,
	})
}

// DeleteData 处理 DELETE /data，清空会话数据
func (h *Handler) DeleteData(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), sessionID(c)); err != nil {
		writeError(c, importer.InternalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Datos eliminados"})
}

// Export 处理 GET /export，按当前筛选导出 xlsx
func (h *Handler) Export(c *gin.Context) {
	rs, err := h.loadSet(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if rs.Len() == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No hay datos cargados", Kind: importer.KindInputValidation})
		return
	}

	q, err := parseQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	records := h.engine.Apply(rs.Records, q)
	buckets, _ := h.engine.Buckets(records)
	data, err := excel.ExportRecords(records, buckets)
	if err != nil {
		writeError(c, importer.InternalError(err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="contratos.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
