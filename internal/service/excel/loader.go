package excel

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"github.com/motumbon/contratos/internal/parser"
)

// Format 工作簿格式
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// ErrUnsupportedFormat 扩展名不是 .xlsx/.xls
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// ErrSheetMissing 工作簿中没有该 Sheet
var ErrSheetMissing = errors.New("sheet missing in workbook")

// FormatOf 根据文件名判断格式（不区分大小写）
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// Workbook 已加载的工作簿，屏蔽 xlsx/xls 差异
type Workbook struct {
	format Format
	xlsx   *excelize.File
	xls    xls.Workbook
	sheets []string
}

// Open 按扩展名打开工作簿；扩展名与内容不符时尝试另一种格式
func Open(data []byte, filename string) (*Workbook, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}

	order := []Format{FormatXLSX, FormatXLS}
	if format == FormatXLS {
		order = []Format{FormatXLS, FormatXLSX}
	}

	var firstErr error
	for _, f := range order {
		wb, err := openAs(f, data)
		if err == nil {
			return wb, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func openAs(format Format, data []byte) (*Workbook, error) {
	switch format {
	case FormatXLSX:
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open xlsx: %w", err)
		}
		return &Workbook{format: FormatXLSX, xlsx: f, sheets: f.GetSheetList()}, nil
	case FormatXLS:
		wb, err := openXLS(data)
		if err != nil {
			return nil, fmt.Errorf("failed to open xls: %w", err)
		}
		w := &Workbook{format: FormatXLS, xls: wb}
		sheets := w.xls.GetSheets()
		for i := range sheets {
			w.sheets = append(w.sheets, sheets[i].GetName())
		}
		return w, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// openXLS xlsReader 对损坏文件可能 panic，转为错误返回
func openXLS(data []byte) (wb xls.Workbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt xls: %v", r)
		}
	}()
	return xls.OpenReader(bytes.NewReader(data))
}

// Format 实际打开使用的格式
func (w *Workbook) Format() Format {
	return w.format
}

// SheetNames Sheet 名列表（保持工作簿顺序）
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.sheets...)
}

// Rows 读取 Sheet 的所有行（字符串形式）。xlsx 读原始值，日期单元格保留序列号
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	switch w.format {
	case FormatXLSX:
		rows, err := w.xlsx.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		return rows, nil
	case FormatXLS:
		return w.xlsRows(sheet)
	}
	return nil, ErrUnsupportedFormat
}

func (w *Workbook) xlsRows(sheet string) (out [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read sheet %q: %v", sheet, r)
		}
	}()

	sheets := w.xls.GetSheets()
	for i := range sheets {
		if sheets[i].GetName() != sheet {
			continue
		}
		for _, row := range sheets[i].GetRows() {
			cols := row.GetCols()
			line := make([]string, 0, len(cols))
			for _, cell := range cols {
				line = append(line, cell.GetString())
			}
			out = append(out, line)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrSheetMissing, sheet)
}

// Table 读取 Sheet 为 RawTable，第一行作为表头
func (w *Workbook) Table(sheet string) (*parser.RawTable, error) {
	rows, err := w.Rows(sheet)
	if err != nil {
		return nil, err
	}
	return parser.TableFromRows(rows), nil
}

// Close 释放资源
func (w *Workbook) Close() error {
	if w.xlsx != nil {
		return w.xlsx.Close()
	}
	return nil
}
