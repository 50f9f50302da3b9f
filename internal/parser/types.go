package parser

// CanonicalKey 规范语义字段名，与表头字面无关
type CanonicalKey string

const (
	KeyRep           CanonicalKey = "rep"
	KeyLinea         CanonicalKey = "linea"
	KeyNomCliente    CanonicalKey = "nom_cliente"
	KeyNPedido       CanonicalKey = "n_pedido"
	KeyDenominacion  CanonicalKey = "denominacion"
	KeyInicioValidez CanonicalKey = "inicio_validez"
	KeyFinValidez    CanonicalKey = "fin_validez"
	KeyTipoCtto      CanonicalKey = "tipo_ctto"
)

// DataKeys 数据字段（不含代表人列），顺序固定
var DataKeys = []CanonicalKey{
	KeyLinea,
	KeyNomCliente,
	KeyNPedido,
	KeyDenominacion,
	KeyInicioValidez,
	KeyFinValidez,
	KeyTipoCtto,
}

// ColumnMapping 规范字段 -> 实际表头；缺失的 key 表示未识别
type ColumnMapping map[CanonicalKey]string

// Header 取某字段对应的表头
func (m ColumnMapping) Header(key CanonicalKey) (string, bool) {
	h, ok := m[key]
	return h, ok && h != ""
}

// Strings 转为 JSON 友好的 map
func (m ColumnMapping) Strings() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// ColumnMatch 单个字段的识别结果
type ColumnMatch struct {
	Key    CanonicalKey `json:"key"`
	Header string       `json:"header"`
	Score  int          `json:"score"`
}

// MappingResult 表头识别结果
type MappingResult struct {
	Mapping    ColumnMapping  `json:"mapping"`
	Matches    []ColumnMatch  `json:"matches"`
	Unresolved []CanonicalKey `json:"unresolved"`
}

// SheetMatch Sheet 识别结果
type SheetMatch struct {
	SheetName string `json:"sheetName"`
	Score     int    `json:"score"`
	Exact     bool   `json:"exact"`
}

// RawTable 原始表格：有序表头 + 行（单元格类型不定：string/float64/time.Time/nil）
type RawTable struct {
	Headers []string
	Rows    [][]any

	index map[string]int
}

// NewRawTable 创建表格
func NewRawTable(headers []string, rows [][]any) *RawTable {
	t := &RawTable{Headers: headers, Rows: rows}
	t.buildIndex()
	return t
}

func (t *RawTable) buildIndex() {
	t.index = make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
}

// Len 数据行数
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty 没有数据行或没有列
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0 || len(t.Headers) == 0
}

// ColumnIndex 表头所在列
func (t *RawTable) ColumnIndex(header string) (int, bool) {
	if t.index == nil {
		t.buildIndex()
	}
	i, ok := t.index[header]
	return i, ok
}

// Cell 取第 row 行某表头的值；越界返回 nil
func (t *RawTable) Cell(row int, header string) any {
	col, ok := t.ColumnIndex(header)
	if !ok || row < 0 || row >= len(t.Rows) {
		return nil
	}
	r := t.Rows[row]
	if col >= len(r) {
		return nil
	}
	return r[col]
}

// Filter 按行过滤，保持原顺序
func (t *RawTable) Filter(keep func(row int) bool) *RawTable {
	rows := make([][]any, 0, len(t.Rows))
	for i, r := range t.Rows {
		if keep(i) {
			rows = append(rows, r)
		}
	}
	return &RawTable{Headers: t.Headers, Rows: rows, index: t.index}
}
