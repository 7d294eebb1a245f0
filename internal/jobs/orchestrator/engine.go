package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/brandlens-backend/internal/pkg/httpx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// -------------------- Public API --------------------

type RetryPolicy struct {
	MaxAttempts int
	Retryable   func(err error) bool

	MinBackoff time.Duration // default 1s
	MaxBackoff time.Duration // default 30s
	JitterFrac float64       // default 0.20
}

type Stage struct {
	Name string

	Timeout  time.Duration
	StartPct int
	EndPct   int
	StartMsg string
	DoneMsg  string
	Retry    RetryPolicy

	// Skip returns a non-empty reason when the stage should not run.
	Skip func(st *State) string
	Run  func(ctx context.Context, st *State) (map[string]any, error)

	// Required stops the run when the stage fails. Other stages record the
	// failure and the engine moves on.
	Required bool
}

// Reporter receives stage-boundary progress.
type Reporter interface {
	Report(stage string, percent int, message string)
}

type Engine struct {
	log      *logger.Logger
	progress Reporter

	// SpanName names the run span; stages get "<SpanName>.<stage>".
	SpanName string
}

func NewEngine(log *logger.Logger, progress Reporter) *Engine {
	return &Engine{log: log.With("component", "StageEngine"), progress: progress, SpanName: "orchestrator"}
}

// ErrStageFailed wraps the error of a Required stage.
var ErrStageFailed = errors.New("stage failed")

// Run executes stages in order. Failures of non-required stages are recorded
// on the returned state; a Required failure stops the run with ErrStageFailed.
func (e *Engine) Run(ctx context.Context, stages []Stage, st *State) (*State, error) {
	if st == nil {
		st = NewState()
	}
	st.ensure()
	if err := validateStages(stages); err != nil {
		return st, err
	}
	ctx, span := otel.Tracer("brandlens/orchestrator").Start(ctx, e.SpanName)
	defer span.End()

	for i := range stages {
		def := stages[i]
		ss := st.EnsureStage(def.Name)
		if ss.Status == StageSucceeded || ss.Status == StageSkipped {
			continue
		}
		if def.Skip != nil {
			if reason := def.Skip(st); reason != "" {
				ss.Status = StageSkipped
				ss.LastError = reason
				e.setProgress(st, def.Name, def.EndPct, reason)
				continue
			}
		}
		e.startStage(st, def, ss)
		if err := e.runStage(ctx, st, def, ss); err != nil {
			if def.Required {
				span.SetStatus(codes.Error, err.Error())
				return st, fmt.Errorf("%w: %s: %v", ErrStageFailed, def.Name, err)
			}
			continue
		}
	}
	return st, nil
}

// -------------------- tight helpers --------------------

func (e *Engine) startStage(st *State, def Stage, ss *StageState) {
	e.setProgress(st, def.Name, def.StartPct, msgOr(def.StartMsg, "Starting "+def.Name))
	ss.Status = StageRunning
	markStarted(ss)
}

func (e *Engine) runStage(ctx context.Context, st *State, def Stage, ss *StageState) error {
	sctx, span := otel.Tracer("brandlens/orchestrator").Start(ctx, e.SpanName+"."+def.Name)
	defer span.End()

	for {
		outs, err := safeRun(sctx, def, st)
		if err == nil {
			mergeOutputs(ss, outs)
			ss.Status = StageSucceeded
			ss.LastError = ""
			markFinished(ss, "")
			span.SetAttributes(attribute.Int("attempts", ss.Attempts+1))
			e.setProgress(st, def.Name, def.EndPct, msgOr(def.DoneMsg, "Done "+def.Name))
			return nil
		}
		ss.Attempts++
		if shouldRetry(def.Retry, ss.Attempts, err) {
			delay := computeBackoff(def.Retry, ss.Attempts)
			e.log.Warn("Stage failed, retrying", "stage", def.Name, "attempt", ss.Attempts, "delay", delay, "error", err)
			if serr := httpx.Sleep(ctx, delay); serr != nil {
				err = serr
			} else {
				continue
			}
		}
		ss.Status = StageFailed
		markFinished(ss, errString(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log.Warn("Stage failed", "stage", def.Name, "error", err)
		e.setProgress(st, def.Name, def.EndPct, fmt.Sprintf("%s failed: %s", def.Name, errString(err)))
		return err
	}
}

// -------------------- safety + validation --------------------

func validateStages(stages []Stage) error {
	seen := map[string]bool{}
	lastEnd := -1
	for _, s := range stages {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("stage missing Name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate stage name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Run == nil {
			return fmt.Errorf("stage %q: Run is nil", s.Name)
		}
		if s.StartPct < 0 || s.StartPct > 100 || s.EndPct < 0 || s.EndPct > 100 {
			return fmt.Errorf("stage %q: progress must be 0..100", s.Name)
		}
		if s.EndPct < s.StartPct {
			return fmt.Errorf("stage %q: EndPct must be >= StartPct", s.Name)
		}
		if s.EndPct < lastEnd {
			return fmt.Errorf("stage %q: EndPct must be >= previous stage EndPct", s.Name)
		}
		lastEnd = s.EndPct
	}
	return nil
}

// safeRun converts a panicking stage into an error and enforces Timeout.
func safeRun(ctx context.Context, def Stage, st *State) (outs map[string]any, err error) {
	run := func(c context.Context) (m map[string]any, e error) {
		defer func() {
			if r := recover(); r != nil {
				e = fmt.Errorf("stage %q panicked: %v", def.Name, r)
			}
		}()
		return def.Run(c, st)
	}
	if def.Timeout <= 0 {
		return run(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()
	type out struct {
		m map[string]any
		e error
	}
	ch := make(chan out, 1)
	go func() {
		m, e := run(tctx)
		ch <- out{m: m, e: e}
	}()
	select {
	case <-tctx.Done():
		return nil, fmt.Errorf("stage %q timed out: %w", def.Name, tctx.Err())
	case o := <-ch:
		return o.m, o.e
	}
}

// -------------------- progress + timestamps --------------------

func (e *Engine) setProgress(st *State, stage string, pct int, msg string) {
	if st == nil {
		return
	}
	if pct < st.LastProgress {
		pct = st.LastProgress
	} else {
		st.LastProgress = pct
	}
	if e.progress != nil {
		e.progress.Report(stage, pct, msg)
	}
}

func markStarted(ss *StageState) {
	if ss == nil || ss.StartedAt != nil {
		return
	}
	now := time.Now().UTC()
	ss.StartedAt = &now
}

func markFinished(ss *StageState, lastErr string) {
	if ss == nil {
		return
	}
	now := time.Now().UTC()
	ss.FinishedAt = &now
	if strings.TrimSpace(lastErr) != "" {
		ss.LastError = lastErr
	}
}

func mergeOutputs(ss *StageState, outs map[string]any) {
	if ss == nil || outs == nil {
		return
	}
	if ss.Outputs == nil {
		ss.Outputs = map[string]any{}
	}
	for k, v := range outs {
		ss.Outputs[k] = v
	}
}

// -------------------- retry/backoff --------------------

func shouldRetry(r RetryPolicy, attempts int, err error) bool {
	if r.MaxAttempts <= 0 || attempts >= r.MaxAttempts {
		return false
	}
	if r.Retryable == nil {
		return true
	}
	return r.Retryable(err)
}

func computeBackoff(r RetryPolicy, attempts int) time.Duration {
	minB := r.MinBackoff
	maxB := r.MaxBackoff
	j := r.JitterFrac
	if minB <= 0 {
		minB = 1 * time.Second
	}
	if maxB <= 0 {
		maxB = 30 * time.Second
	}
	if j <= 0 {
		j = 0.20
	}
	if attempts < 1 {
		attempts = 1
	}
	d := time.Duration(float64(minB) * math.Pow(2, float64(attempts-1)))
	if d > maxB {
		d = maxB
	}
	delta := float64(d) * j
	low := float64(d) - delta
	high := float64(d) + delta
	if low < 0 {
		low = 0
	}
	return time.Duration(low + rand.Float64()*(high-low))
}

// -------------------- misc --------------------

func msgOr(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
