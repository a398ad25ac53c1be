package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/model/iac"
	"github.com/secmon-lab/complior/pkg/domain/model/policy"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/utils/logging"
)

// analyzeControl grades one ambiguous control for one resource via the
// text-completion collaborator. The response is treated as unreliable
// prose: an unusable answer downgrades the control to needs_review and
// never decides pass or fail.
func (x *UseCase) analyzeControl(ctx context.Context, run *model.Run, c policy.Control, res *iac.Resource) model.Finding {
	finding := model.Finding{
		Control:  c.ID,
		Resource: res.Address(),
		File:     res.File,
		Severity: c.Severity,
		Required: c.Required,
	}

	verdict, rationale, err := x.completeWithRetry(ctx, c, res)
	if err != nil {
		x.downgrade(ctx, run, &finding, fmt.Sprintf("analysis unavailable: %v", err))
		return finding
	}

	switch verdict {
	case types.FindingPass, types.FindingFail:
		finding.Status = verdict
		finding.Rationale = rationale
	default:
		x.downgrade(ctx, run, &finding, "analysis response was not parsable")
	}

	return finding
}

func (x *UseCase) downgrade(ctx context.Context, run *model.Run, finding *model.Finding, reason string) {
	finding.Status = types.FindingNeedsReview
	finding.Rationale = reason
	aiDowngrades.Inc()

	if repo := x.clients.RunRepository(); repo != nil {
		note := fmt.Sprintf("control %s on %s needs human review: %s", finding.Control, finding.Resource, reason)
		if err := repo.Annotate(ctx, run.ID, note); err != nil {
			logging.From(ctx).Warn("failed to annotate run", slog.Any("error", err))
		}
	}
	logging.From(ctx).Warn("AI analysis downgraded",
		slog.Any("control", finding.Control),
		slog.String("resource", finding.Resource),
		slog.String("reason", reason),
	)
}

// completeWithRetry calls the collaborator with a bounded timeout and a
// fixed retry budget with exponential backoff. The pipeline must never
// hang on the collaborator.
func (x *UseCase) completeWithRetry(ctx context.Context, c policy.Control, res *iac.Resource) (types.FindingStatus, string, error) {
	req := &model.CompletionRequest{
		Prompt:      buildPrompt(c, res),
		MaxTokens:   x.maxTokens,
		Temperature: x.temperature,
		ModelID:     x.modelID,
	}

	var verdict types.FindingStatus
	var rationale string

	backoff := retry.WithMaxRetries(x.aiRetryLimit, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, x.aiTimeout)
		defer cancel()

		resp, err := x.clients.TextCompleter().Complete(callCtx, req)
		if err != nil {
			return retry.RetryableError(err)
		}

		verdict, rationale = parseVerdict(resp.Text)
		return nil
	})
	if err != nil {
		return "", "", err
	}

	return verdict, rationale, nil
}

func buildPrompt(c policy.Control, res *iac.Resource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are reviewing an infrastructure-as-code resource against a compliance control.\n\n")
	fmt.Fprintf(&b, "Control: %s\n%s\n\n", c.Title, c.Text)
	fmt.Fprintf(&b, "Resource declaration (%s):\n%s\n\n", res.Address(), res.Source)
	fmt.Fprintf(&b, "Answer with exactly one line \"RESULT: PASS\" or \"RESULT: FAIL\", ")
	fmt.Fprintf(&b, "followed by one line \"RATIONALE: <short explanation>\".\n")
	return b.String()
}

// parseVerdict extracts a pass/fail decision from free text. Anything
// ambiguous, including both or neither token present, yields an empty
// verdict so the caller downgrades the control.
func parseVerdict(text string) (types.FindingStatus, string) {
	var verdict types.FindingStatus
	var rationale string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "RESULT:"):
			value := strings.TrimSpace(upper[len("RESULT:"):])
			var parsed types.FindingStatus
			switch value {
			case "PASS":
				parsed = types.FindingPass
			case "FAIL":
				parsed = types.FindingFail
			default:
				return "", ""
			}
			if verdict != "" && verdict != parsed {
				return "", ""
			}
			verdict = parsed

		case strings.HasPrefix(upper, "RATIONALE:"):
			if rationale == "" {
				rationale = strings.TrimSpace(line[len("RATIONALE:"):])
			}
		}
	}

	return verdict, rationale
}
