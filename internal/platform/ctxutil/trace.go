package ctxutil

import "context"

type traceDataKey struct{}

// TraceData identifies the request a unit of work started from.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields returns trace_id and request_id as logger key/values, or nil
// when ctx carries no trace data.
func LogFields(ctx context.Context) []interface{} {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	return []interface{}{"trace_id", td.TraceID, "request_id", td.RequestID}
}

// Memo returns the trace data as a workflow memo, or nil.
func Memo(ctx context.Context) map[string]interface{} {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	return map[string]interface{}{"trace_id": td.TraceID, "request_id": td.RequestID}
}
