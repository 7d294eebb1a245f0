// Package agent holds the result envelope shared by every extraction agent.
package agent

import (
	"time"
)

// Result is what an agent hands back. Failures are values: Success is false
// and Errors says why.
type Result[T any] struct {
	Success    bool          `json:"success"`
	Data       T             `json:"data"`
	Confidence float64       `json:"confidence"`
	Source     string        `json:"source"`
	Errors     []string      `json:"errors,omitempty"`
	Duration   time.Duration `json:"duration"`
}

func OK[T any](data T, confidence float64, source string, started time.Time) Result[T] {
	return Result[T]{
		Success:    true,
		Data:       data,
		Confidence: confidence,
		Source:     source,
		Duration:   time.Since(started),
	}
}

func Fail[T any](source string, started time.Time, err error) Result[T] {
	msg := "Unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result[T]{
		Success:  false,
		Source:   source,
		Errors:   []string{msg},
		Duration: time.Since(started),
	}
}

// ProgressFunc receives fixed milestone percentages, 0 through 100.
type ProgressFunc func(stage string, percent int, message string)

func (f ProgressFunc) Report(stage string, percent int, message string) {
	if f != nil {
		f(stage, percent, message)
	}
}

// Clip returns at most n runes of s.
func Clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
