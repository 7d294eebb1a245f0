package pipeline

import (
	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/modules/perception"
)

const (
	DiscoveryWorkflowName = "brand_discovery"
	ScanWorkflowName      = "perception_scan"

	ActivityDiscover = "brand_discovery.run"
	ActivityScan     = "perception_scan.run"
)

type ScanInput struct {
	ProfileID uuid.UUID          `json:"profileId"`
	Options   perception.Options `json:"options"`
}

// Progress is the heartbeat payload; it is also what Describe shows for a
// running activity.
type Progress struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}
