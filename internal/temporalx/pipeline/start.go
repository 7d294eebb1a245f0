package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/brandlens-backend/internal/modules/discovery"
	"github.com/yungbote/brandlens-backend/internal/platform/ctxutil"
)

// Starter submits pipeline workflows to a task queue.
type Starter struct {
	tc        temporalsdkclient.Client
	taskQueue string
}

func NewStarter(tc temporalsdkclient.Client, taskQueue string) *Starter {
	return &Starter{tc: tc, taskQueue: taskQueue}
}

// Run is the handle returned for a started workflow.
type Run struct {
	WorkflowID string `json:"workflowId"`
	RunID      string `json:"runId"`
}

func (s *Starter) StartDiscovery(ctx context.Context, in discovery.Input) (Run, error) {
	return s.start(ctx, "discovery-"+uuid.NewString(), DiscoveryWorkflowName, in)
}

func (s *Starter) StartScan(ctx context.Context, in ScanInput) (Run, error) {
	return s.start(ctx, fmt.Sprintf("scan-%s-%s", in.ProfileID, uuid.NewString()), ScanWorkflowName, in)
}

func (s *Starter) start(ctx context.Context, id, name string, arg any) (Run, error) {
	if s == nil || s.tc == nil {
		return Run{}, fmt.Errorf("temporal client is not configured")
	}
	we, err := s.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        id,
		TaskQueue: s.taskQueue,
		Memo:      ctxutil.Memo(ctx),
	}, name, arg)
	if err != nil {
		return Run{}, fmt.Errorf("start %s: %w", name, err)
	}
	return Run{WorkflowID: we.GetID(), RunID: we.GetRunID()}, nil
}
