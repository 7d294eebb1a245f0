package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/brandlens-backend/internal/modules/discovery"
	"github.com/yungbote/brandlens-backend/internal/modules/perception"
	"github.com/yungbote/brandlens-backend/internal/observability"
	errs "github.com/yungbote/brandlens-backend/internal/pkg/errors"
	"github.com/yungbote/brandlens-backend/internal/pkg/progress"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type Discoverer interface {
	Run(ctx context.Context, in discovery.Input, rep progress.Reporter) (*discovery.Result, error)
}

type Scanner interface {
	Run(ctx context.Context, profileID uuid.UUID, opts perception.Options, rep progress.Reporter) (*perception.ScanResult, error)
}

type Activities struct {
	Log       *logger.Logger
	Discovery Discoverer
	Scans     Scanner
	// HeartbeatInterval defaults to 10s.
	HeartbeatInterval time.Duration
}

func (a *Activities) Discover(ctx context.Context, in discovery.Input) (*discovery.Result, error) {
	if a == nil || a.Discovery == nil {
		return nil, temporal.NewNonRetryableApplicationError("discovery activity not configured", "config", nil)
	}
	ctx, span := observability.Tracer("pipeline").Start(ctx, ActivityDiscover)
	defer span.End()
	rep, stop := a.startHeartbeat(ctx)
	defer stop()

	start := time.Now()
	res, err := a.Discovery.Run(ctx, in, rep)
	observe(ActivityDiscover, start, err)
	if err != nil {
		span.RecordError(err)
		a.log().Warn("Discovery activity failed", "website_url", in.WebsiteURL, "error", err)
		return nil, classify(err)
	}
	return res, nil
}

func (a *Activities) Scan(ctx context.Context, in ScanInput) (*perception.ScanResult, error) {
	if a == nil || a.Scans == nil {
		return nil, temporal.NewNonRetryableApplicationError("scan activity not configured", "config", nil)
	}
	if in.ProfileID == uuid.Nil {
		return nil, temporal.NewNonRetryableApplicationError("missing profile id", "invalid_argument", nil)
	}
	ctx, span := observability.Tracer("pipeline").Start(ctx, ActivityScan)
	defer span.End()
	rep, stop := a.startHeartbeat(ctx)
	defer stop()

	start := time.Now()
	res, err := a.Scans.Run(ctx, in.ProfileID, in.Options, rep)
	observe(ActivityScan, start, err)
	if err != nil {
		span.RecordError(err)
		a.log().Warn("Scan activity failed", "profile_id", in.ProfileID, "error", err)
		return nil, classify(err)
	}
	observability.Current().SetScanScores(map[string]float64{
		"overall":        float64(res.AggregatedScores.Overall),
		"share_of_voice": float64(res.AggregatedScores.ByMetric.ShareOfVoice),
		"faithfulness":   float64(res.AggregatedScores.ByMetric.Faithfulness),
	})
	return res, nil
}

func observe(name string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.Current().ObserveActivity(name, status, time.Since(start))
}

// classify marks errors that a retry cannot fix as non-retryable.
func classify(err error) error {
	switch {
	case errors.Is(err, errs.ErrNoUsableInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), "no_usable_input", err)
	case errors.Is(err, errs.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), "not_found", err)
	case errors.Is(err, errs.ErrInvalidArgument):
		return temporal.NewNonRetryableApplicationError(err.Error(), "invalid_argument", err)
	default:
		return err
	}
}

// startHeartbeat heartbeats on every stage report and on a fixed interval in
// between, carrying the latest Progress.
func (a *Activities) startHeartbeat(ctx context.Context) (progress.Reporter, func()) {
	var (
		mu   sync.Mutex
		last Progress
	)
	beat := func() {
		mu.Lock()
		p := last
		mu.Unlock()
		activity.RecordHeartbeat(ctx, p)
	}
	rep := progress.Func(func(stage string, percent int, message string) {
		mu.Lock()
		last = Progress{Stage: stage, Percent: percent, Message: message}
		mu.Unlock()
		a.log().Debug("Activity progress", "stage", stage, "percent", percent, "message", message)
		beat()
	})

	interval := a.HeartbeatInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				beat()
			}
		}
	}()
	var once sync.Once
	return rep, func() { once.Do(func() { close(done) }) }
}

func (a *Activities) log() *logger.Logger {
	if a.Log == nil {
		return logger.Nop()
	}
	return a.Log
}
