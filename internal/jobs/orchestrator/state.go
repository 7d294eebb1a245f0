package orchestrator

import (
	"time"
)

type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageRunning   StageStatus = "running"
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

type StageState struct {
	Name       string         `json:"name"`
	Status     StageStatus    `json:"status"`
	Attempts   int            `json:"attempts"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
	Outputs    map[string]any `json:"outputs,omitempty"`
}

// Duration is zero until the stage has both started and finished.
func (s *StageState) Duration() time.Duration {
	if s == nil || s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(*s.StartedAt)
}

// State is the in-memory record of one engine run. Stage bodies share data
// through Meta and read earlier stages' Outputs.
type State struct {
	Stages       map[string]*StageState `json:"stages"`
	Order        []string               `json:"order"`
	LastProgress int                    `json:"last_progress"`
	Meta         map[string]any         `json:"meta,omitempty"`
}

func NewState() *State {
	st := &State{}
	st.ensure()
	return st
}

func (s *State) ensure() {
	if s.Stages == nil {
		s.Stages = map[string]*StageState{}
	}
	if s.Meta == nil {
		s.Meta = map[string]any{}
	}
}

func (s *State) EnsureStage(name string) *StageState {
	s.ensure()
	ss := s.Stages[name]
	if ss == nil {
		ss = &StageState{
			Name:    name,
			Status:  StagePending,
			Outputs: map[string]any{},
		}
		s.Stages[name] = ss
		s.Order = append(s.Order, name)
	}
	if ss.Outputs == nil {
		ss.Outputs = map[string]any{}
	}
	return ss
}

// Stage returns the named stage state, or nil if it never ran.
func (s *State) Stage(name string) *StageState {
	if s == nil {
		return nil
	}
	return s.Stages[name]
}

// Failed lists the stages that ended in failure, in run order.
func (s *State) Failed() []*StageState {
	var out []*StageState
	for _, name := range s.Order {
		if ss := s.Stages[name]; ss != nil && ss.Status == StageFailed {
			out = append(out, ss)
		}
	}
	return out
}
