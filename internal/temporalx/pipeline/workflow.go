package pipeline

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/brandlens-backend/internal/modules/discovery"
	"github.com/yungbote/brandlens-backend/internal/modules/perception"
)

func activityOptions(startToClose time.Duration) workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: startToClose,
		HeartbeatTimeout:    2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	}
}

// DiscoveryWorkflow runs one discovery orchestration as a single activity.
func DiscoveryWorkflow(ctx workflow.Context, in discovery.Input) (*discovery.Result, error) {
	ctx = workflow.WithActivityOptions(ctx, activityOptions(30*time.Minute))
	var out discovery.Result
	if err := workflow.ExecuteActivity(ctx, ActivityDiscover, in).Get(ctx, &out); err != nil {
		return nil, err
	}
	workflow.GetLogger(ctx).Info("Discovery workflow done", "profile_id", out.ProfileID, "completion_score", out.CompletionScore)
	return &out, nil
}

// ScanWorkflow runs one perception scan as a single activity.
func ScanWorkflow(ctx workflow.Context, in ScanInput) (*perception.ScanResult, error) {
	ctx = workflow.WithActivityOptions(ctx, activityOptions(2*time.Hour))
	var out perception.ScanResult
	if err := workflow.ExecuteActivity(ctx, ActivityScan, in).Get(ctx, &out); err != nil {
		return nil, err
	}
	workflow.GetLogger(ctx).Info("Scan workflow done", "scan_id", out.ScanID, "status", out.Status)
	return &out, nil
}
