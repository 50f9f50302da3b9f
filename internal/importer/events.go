package importer

import (
	"context"
	"log/slog"
	"time"
)

// 事件类型
const (
	EventStart          = "start"
	EventSheetMatched   = "sheet_matched"
	EventColumnResolved = "column_resolved"
	EventColumnMissing  = "column_missing"
	EventRowsFiltered   = "rows_filtered"
	EventDateIssue      = "date_unparseable"
	EventDone           = "done"
	EventError          = "error"
)

// Event 处理过程中的决策事件
type Event struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// EventSink 事件接收方
type EventSink interface {
	Emit(ctx context.Context, evt Event)
}

// NopSink 丢弃所有事件
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}

// SlogSink 把事件写入结构化日志
type SlogSink struct {
	Logger *slog.Logger
}

// NewSlogSink 创建日志事件接收方；logger 为 nil 时使用 slog.Default()
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{Logger: logger}
}

func (s *SlogSink) Emit(ctx context.Context, evt Event) {
	level := slog.LevelDebug
	switch evt.Type {
	case EventError:
		level = slog.LevelWarn
	case EventStart, EventDone, EventDateIssue, EventColumnMissing:
		level = slog.LevelInfo
	}

	attrs := make([]slog.Attr, 0, len(evt.Data)+1)
	attrs = append(attrs, slog.String("event", evt.Type))
	for k, v := range evt.Data {
		attrs = append(attrs, slog.Any(k, v))
	}
	s.Logger.LogAttrs(ctx, level, evt.Message, attrs...)
}
