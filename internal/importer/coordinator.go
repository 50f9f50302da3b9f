package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/motumbon/contratos/internal/model"
	"github.com/motumbon/contratos/internal/parser"
	"github.com/motumbon/contratos/internal/service/excel"
)

// 默认业务常量
const (
	DefaultRequiredSheet = "DDBB"
	DefaultTargetRep     = "PABLO YEVENES"
)

// Options 处理选项；零值字段使用默认值
type Options struct {
	RequiredSheet         string
	TargetRep             string
	ContractTypes         []string
	SheetCutoff           int
	RepThreshold          int
	ContractTypeThreshold int
	FieldMapper           *parser.FieldMapper
}

// Upload 一次上传的文件内容
type Upload struct {
	Filename string
	Data     []byte
}

// Result 处理结果
type Result struct {
	Set     *model.RecordSet     `json:"-"`
	Sheet   parser.SheetMatch    `json:"sheet"`
	Mapping parser.MappingResult `json:"mapping"`
	Stats   parser.BuildStats    `json:"stats"`
	Funnel  Funnel               `json:"funnel"`
}

// Funnel 各阶段剩余行数
type Funnel struct {
	Rows           int `json:"rows"`
	ContractTypes  int `json:"contractTypes"`
	Representative int `json:"representative"`
	Records        int `json:"records"`
}

// Coordinator 上传处理协调器：工作簿 -> Sheet -> 表头 -> 行过滤 -> 记录
type Coordinator struct {
	opts       Options
	sheets     *parser.SheetRecognizer
	mapper     *parser.FieldMapper
	typeFilter *parser.ContractTypeFilter
	repFilter  *parser.RepresentativeFilter
	sink       EventSink
	now        func() time.Time
}

// NewCoordinator 创建协调器；sink 为 nil 时不输出事件
func NewCoordinator(opts Options, sink EventSink) *Coordinator {
	if opts.RequiredSheet == "" {
		opts.RequiredSheet = DefaultRequiredSheet
	}
	if opts.TargetRep == "" {
		opts.TargetRep = DefaultTargetRep
	}
	if opts.FieldMapper == nil {
		opts.FieldMapper = parser.NewFieldMapper(parser.FieldMapperOptions{})
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Coordinator{
		opts:       opts,
		sheets:     parser.NewSheetRecognizer(nil, opts.SheetCutoff),
		mapper:     opts.FieldMapper,
		typeFilter: parser.NewContractTypeFilter(opts.ContractTypes, opts.ContractTypeThreshold, nil),
		repFilter:  parser.NewRepresentativeFilter(opts.TargetRep, opts.RepThreshold, nil),
		sink:       sink,
		now:        time.Now,
	}
}

// TargetRep 目标代表人
func (c *Coordinator) TargetRep() string {
	return c.opts.TargetRep
}

// Process 同步处理一次上传；失败时返回 *Error
func (c *Coordinator) Process(ctx context.Context, up Upload) (*Result, error) {
	c.emit(ctx, EventStart, "procesando archivo", map[string]any{"filename": up.Filename, "size": len(up.Data)})

	res, err := c.process(ctx, up)
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			e = InternalError(err)
		}
		c.emit(ctx, EventError, e.Message, map[string]any{"kind": string(e.Kind), "filename": up.Filename})
		return nil, e
	}

	c.emit(ctx, EventDone, MsgSuccess, map[string]any{
		"filename": up.Filename,
		"sheet":    res.Sheet.SheetName,
		"records":  res.Funnel.Records,
	})
	return res, nil
}

func (c *Coordinator) process(ctx context.Context, up Upload) (*Result, error) {
	if up.Filename == "" {
		return nil, InputError(ErrEmptyFilename, MsgEmptyFilename)
	}
	if _, err := excel.FormatOf(up.Filename); err != nil {
		return nil, newError(KindInputValidation, ErrUnsupportedFormat, MsgUnsupportedFormat, err)
	}

	wb, err := excel.Open(up.Data, up.Filename)
	if err != nil {
		return nil, InternalError(err)
	}
	defer wb.Close()

	if err := ctx.Err(); err != nil {
		return nil, InternalError(err)
	}

	match, err := c.sheets.Recognize(c.opts.RequiredSheet, wb.SheetNames())
	if err != nil {
		return nil, newError(KindSchemaResolution, ErrSheetNotFound, fmt.Sprintf(MsgSheetNotFound, c.opts.RequiredSheet), err)
	}
	c.emit(ctx, EventSheetMatched, "hoja seleccionada", map[string]any{
		"sheet": match.SheetName, "score": match.Score, "exact": match.Exact,
	})

	table, err := wb.Table(match.SheetName)
	if err != nil {
		return nil, InternalError(err)
	}
	if table.Empty() {
		return nil, newError(KindSchemaResolution, ErrEmptySheet, MsgEmptySheet, nil)
	}

	mapping := c.mapper.Map(table.Headers)
	for _, m := range mapping.Matches {
		c.emit(ctx, EventColumnResolved, "columna identificada", map[string]any{
			"key": string(m.Key), "header": m.Header, "score": m.Score,
		})
	}
	for _, key := range mapping.Unresolved {
		c.emit(ctx, EventColumnMissing, "columna no identificada", map[string]any{"key": string(key)})
	}
	if len(mapping.Mapping) == 0 {
		return nil, newError(KindSchemaResolution, ErrNoColumns, MsgNoColumns, nil)
	}

	funnel := Funnel{Rows: table.Len()}

	typeHeader, _ := mapping.Mapping.Header(parser.KeyTipoCtto)
	table = c.typeFilter.Apply(table, typeHeader)
	funnel.ContractTypes = table.Len()
	c.emit(ctx, EventRowsFiltered, "filtro tipo de contrato", map[string]any{
		"filter": "contract_type", "column": typeHeader, "before": funnel.Rows, "after": funnel.ContractTypes,
	})
	if table.Len() == 0 {
		return nil, newError(KindContentFilter, ErrNoContractTypes, MsgNoContractTypes, nil)
	}

	repHeader, _ := mapping.Mapping.Header(parser.KeyRep)
	table = c.repFilter.Apply(table, repHeader)
	funnel.Representative = table.Len()
	c.emit(ctx, EventRowsFiltered, "filtro representante", map[string]any{
		"filter": "representative", "column": repHeader, "before": funnel.ContractTypes, "after": funnel.Representative,
	})
	if table.Len() == 0 {
		return nil, newError(KindContentFilter, ErrNoRepresentative, fmt.Sprintf(MsgNoRepresentative, c.opts.TargetRep), nil)
	}

	records, stats := parser.BuildRecords(table, mapping.Mapping)
	for _, issue := range stats.DateIssues {
		c.emit(ctx, EventDateIssue, "fecha no reconocida", map[string]any{
			"row": issue.Row, "key": string(issue.Key), "raw": issue.Raw,
		})
	}
	funnel.Records = len(records)
	if len(records) == 0 {
		return nil, newError(KindRecordBuild, ErrNoRecords, MsgNoColumns, nil)
	}

	return &Result{
		Set: &model.RecordSet{
			Records:    records,
			Filename:   up.Filename,
			Sheet:      match.SheetName,
			Mapping:    mapping.Mapping.Strings(),
			UploadedAt: c.now(),
		},
		Sheet:   match,
		Mapping: mapping,
		Stats:   stats,
		Funnel:  funnel,
	}, nil
}

func (c *Coordinator) emit(ctx context.Context, typ, msg string, data map[string]any) {
	c.sink.Emit(ctx, Event{Type: typ, Message: msg, Data: data, Timestamp: time.Now()})
}
