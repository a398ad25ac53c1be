package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/model/checkov"
	"github.com/secmon-lab/complior/pkg/domain/model/iac"
	"github.com/secmon-lab/complior/pkg/domain/model/policy"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/utils/logging"
	"github.com/secmon-lab/complior/pkg/utils/safe"
)

// scanDirectory evaluates the control catalog against the IaC declarations
// found under dir and returns the finalized report. Structural controls are
// decided by the built-in rules, ai controls by the text-completion
// collaborator, and the optional external engine contributes its own checks.
func (x *UseCase) scanDirectory(ctx context.Context, run *model.Run, dir string) (*model.Report, error) {
	resources, err := iac.ParseDir(dir)
	if err != nil {
		return nil, err
	}
	logging.From(ctx).Info("parsed IaC declarations", slog.Int("resources", len(resources)))

	report := &model.Report{
		RunID:     run.ID,
		Repo:      run.Repo,
		Branch:    run.Branch,
		CommitID:  run.CommitID,
		Timestamp: logging.CtxTime(ctx).UTC(),
	}

	for _, c := range x.catalog.StructuralControls() {
		for _, res := range resources {
			if !c.AppliesTo(res.Type) {
				continue
			}
			report.Findings = append(report.Findings, evalStructural(c, res))
		}
	}

	for _, c := range x.catalog.AIControls() {
		for _, res := range resources {
			if !c.AppliesTo(res.Type) {
				continue
			}
			report.Findings = append(report.Findings, x.analyzeControl(ctx, run, c, res))
		}
	}

	if x.clients.RuleEngine() != nil {
		external, err := x.runExternalEngine(ctx, dir)
		if err != nil {
			return nil, err
		}
		report.Findings = append(report.Findings, external...)
	}

	if err := report.Validate(); err != nil {
		return nil, err
	}
	report.Finalize()

	return report, nil
}

// evalStructural decides one structural control for one resource. A control
// without a built-in rule is never guessed: it goes to human review.
func evalStructural(c policy.Control, res *iac.Resource) model.Finding {
	finding := model.Finding{
		Control:  c.ID,
		Resource: res.Address(),
		File:     res.File,
		Severity: c.Severity,
		Required: c.Required,
	}

	rule, ok := structuralRules[c.ID]
	if !ok {
		finding.Status = types.FindingNeedsReview
		finding.Rationale = "no built-in rule for this control"
		return finding
	}

	pass, rationale := rule(res)
	if pass {
		finding.Status = types.FindingPass
	} else {
		finding.Status = types.FindingFail
	}
	finding.Rationale = rationale

	return finding
}

var structuralRules = map[types.ControlID]func(*iac.Resource) (bool, string){
	"encryption-at-rest": func(res *iac.Resource) (bool, string) {
		if res.FindBlock("server_side_encryption_configuration") != nil {
			return true, "server-side encryption is configured"
		}
		return false, "no server_side_encryption_configuration block"
	},
	"no-public-access": func(res *iac.Resource) (bool, string) {
		if acl, ok := res.Attr("acl"); ok {
			if s, ok := acl.(string); ok && (s == "public-read" || s == "public-read-write") {
				return false, fmt.Sprintf("acl grants public access: %s", s)
			}
		}
		return true, "no public ACL"
	},
	"access-logging": func(res *iac.Resource) (bool, string) {
		if res.FindBlock("logging") != nil {
			return true, "access logging is configured"
		}
		return false, "no logging block"
	},
	"versioning-enabled": func(res *iac.Resource) (bool, string) {
		if v, ok := res.AttrDeep("versioning", "enabled"); ok && iac.BoolAttr(v) {
			return true, "versioning is enabled"
		}
		return false, "versioning is not enabled"
	},
}

// runExternalEngine runs the checkov subprocess on the source directory.
// An engine crash is retried once before failing the run.
func (x *UseCase) runExternalEngine(ctx context.Context, dir string) ([]model.Finding, error) {
	report, err := x.execExternalEngine(ctx, dir)
	if err != nil {
		logging.From(ctx).Warn("rule engine failed, retrying once", slog.Any("error", err))
		report, err = x.execExternalEngine(ctx, dir)
		if err != nil {
			return nil, goerr.Wrap(types.ErrScanEngine, "rule engine failed twice", goerr.V("cause", err.Error()))
		}
	}

	return report.Findings(), nil
}

func (x *UseCase) execExternalEngine(ctx context.Context, dir string) (*checkov.Report, error) {
	tmpDir, err := os.MkdirTemp("", "complior_engine.*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temp directory for engine output")
	}
	defer safe.RemoveAll(tmpDir)

	if err := x.clients.RuleEngine().Run(ctx, []string{
		"--directory", dir,
		"--output", "json",
		"--output-file-path", tmpDir,
		"--quiet",
	}); err != nil {
		return nil, err
	}

	fd, err := os.Open(filepath.Clean(filepath.Join(tmpDir, "results_json.json")))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open engine report")
	}
	defer safe.Close(fd)

	return checkov.Load(fd)
}
