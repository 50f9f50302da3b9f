package model

import "time"

// DateLayout 记录中日期字段的格式
const DateLayout = "2006-01-02"

// ContractRecord 规范化后的合同行（一行 = 一个订单下的一个产品明细）
type ContractRecord struct {
	Linea         *string `json:"Linea"`
	Cliente       *string `json:"Nom_Cliente"`
	Pedido        string  `json:"Nº de pedido"`
	Denominacion  *string `json:"Denominación"`
	TipoContrato  *string `json:"Tipo Ctto"`
	InicioValidez *string `json:"Inicio de validez"`
	FinValidez    *string `json:"Fin de validez"`
}

// 到期分桶标签（固定顺序）
const (
	BucketExpired = "Vencidos"
	Bucket0To30   = "0-30 días"
	Bucket31To60  = "31-60 días"
	Bucket61To90  = "61-90 días"
	BucketOver90  = "90+ días"
)

// BucketLabels 分桶标签顺序
var BucketLabels = []string{BucketExpired, Bucket0To30, Bucket31To60, Bucket61To90, BucketOver90}

// ExpirationBuckets 到期天数直方图，JSON 字段顺序即展示顺序
type ExpirationBuckets struct {
	Expired    int `json:"Vencidos"`
	Days0To30  int `json:"0-30 días"`
	Days31To60 int `json:"31-60 días"`
	Days61To90 int `json:"61-90 días"`
	Over90     int `json:"90+ días"`
}

// Add 对应标签计数 +1
func (b *ExpirationBuckets) Add(label string) {
	switch label {
	case BucketExpired:
		b.Expired++
	case Bucket0To30:
		b.Days0To30++
	case Bucket31To60:
		b.Days31To60++
	case Bucket61To90:
		b.Days61To90++
	case BucketOver90:
		b.Over90++
	}
}

// Count 按标签取计数
func (b ExpirationBuckets) Count(label string) int {
	switch label {
	case BucketExpired:
		return b.Expired
	case Bucket0To30:
		return b.Days0To30
	case Bucket31To60:
		return b.Days31To60
	case Bucket61To90:
		return b.Days61To90
	case BucketOver90:
		return b.Over90
	}
	return 0
}

// Total 所有桶计数之和
func (b ExpirationBuckets) Total() int {
	return b.Expired + b.Days0To30 + b.Days31To60 + b.Days61To90 + b.Over90
}

// FilterOptions 前端筛选项（去重、排序、非空）
type FilterOptions struct {
	Lineas    []string `json:"lineas"`
	Clientes  []string `json:"clientes"`
	Productos []string `json:"productos"`
}

// RecordSet 会话中保存的数据集，每次上传整体替换
type RecordSet struct {
	Records    []ContractRecord  `json:"records"`
	Filename   string            `json:"filename"`
	Sheet      string            `json:"sheet"`
	Mapping    map[string]string `json:"mapping"`
	UploadedAt time.Time         `json:"uploadedAt"`
}

// Len 记录数
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Records)
}

// UploadLog 上传日志
type UploadLog struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"sessionId"`
	Filename     string    `json:"filename"`
	FileSize     int64     `json:"fileSize"`
	FileHash     string    `json:"fileHash"`
	Status       string    `json:"status"` // processing/success/error
	Kind         string    `json:"kind,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	RecordCount  int       `json:"recordCount"`
	CreatedAt    time.Time `json:"createdAt"`
}
