package model

import (
	"fmt"
	"time"

	"github.com/secmon-lab/complior/pkg/domain/types"
)

// Artifact names are fixed per stage; a name is unique within a run.
const (
	ArtifactSourceArchive types.ArtifactName = "source/archive.zip"
	ArtifactScanReport    types.ArtifactName = "scan-report/report.json"
)

// ArtifactRef points at one stored blob. Artifacts are write-once and are
// referenced across stages instead of copied.
type ArtifactRef struct {
	RunID     types.RunID        `json:"run_id"`
	Name      types.ArtifactName `json:"name"`
	Key       string             `json:"key"` // backend object key
	Size      int64              `json:"size"`
	SHA256    string             `json:"sha256,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// ArtifactKey builds the per-run object key prefix layout:
// runs/<runID>/<name>
func ArtifactKey(runID types.RunID, name types.ArtifactName) string {
	return fmt.Sprintf("runs/%s/%s", runID, name)
}
