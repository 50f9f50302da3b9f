package importer

import (
	"errors"
	"fmt"
)

// Kind 上传失败分类
type Kind string

const (
	KindInputValidation  Kind = "InputValidation"
	KindSchemaResolution Kind = "SchemaResolution"
	KindContentFilter    Kind = "ContentFilter"
	KindRecordBuild      Kind = "RecordBuild"
	KindInternal         Kind = "Internal"
)

var (
	ErrNoFile            = errors.New("no file in request")
	ErrEmptyFilename     = errors.New("empty filename")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrSheetNotFound     = errors.New("required sheet not found")
	ErrEmptySheet        = errors.New("sheet is empty")
	ErrNoColumns         = errors.New("no canonical columns resolved")
	ErrNoContractTypes   = errors.New("no rows with a valid contract type")
	ErrNoRepresentative  = errors.New("no rows for target representative")
	ErrNoRecords         = errors.New("no records after normalization")
	ErrProcessing        = errors.New("processing failed")
)

// Error 带分类与面向用户消息的错误
type Error struct {
	Kind    Kind
	Code    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 同时暴露哨兵错误与底层错误
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Code != nil {
		out = append(out, e.Code)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func newError(kind Kind, code error, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: cause}
}

// InputError 请求参数类错误（供 HTTP 层使用）
func InputError(code error, message string) *Error {
	return newError(KindInputValidation, code, message, nil)
}

// InternalError 未预期的处理错误
func InternalError(cause error) *Error {
	msg := "desconocido"
	if cause != nil {
		msg = cause.Error()
	}
	return newError(KindInternal, ErrProcessing, fmt.Sprintf("Error procesando el archivo: %s", msg), cause)
}

// KindOf 取错误分类；非 *Error 视为 Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// 面向用户的提示
const (
	MsgNoFile            = "No se envió archivo"
	MsgEmptyFilename     = "Nombre de archivo vacío"
	MsgUnsupportedFormat = "Formato inválido. Cargue un Excel (.xlsx/.xls)"
	MsgPayloadTooLarge   = "El archivo supera el tamaño máximo permitido (%d MB)"
	MsgSheetNotFound     = "No se encontró la hoja \"%s\" en el Excel."
	MsgEmptySheet        = "La hoja seleccionada está vacía"
	MsgNoColumns         = "No se pudieron identificar las columnas requeridas."
	MsgNoContractTypes   = "No se encontraron registros con tipos de contrato válidos."
	MsgNoRepresentative  = "No se encontraron registros para \"%s\" o similar."
	MsgSuccess           = "Archivo procesado correctamente"
)
