package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/complior/pkg/domain/model/iac"
	"github.com/secmon-lab/complior/pkg/domain/model/policy"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/usecase"
)

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		verdict   types.FindingStatus
		rationale string
	}{
		{
			name:      "pass with rationale",
			text:      "RESULT: PASS\nRATIONALE: encryption is configured",
			verdict:   types.FindingPass,
			rationale: "encryption is configured",
		},
		{
			name:      "fail with rationale",
			text:      "RESULT: FAIL\nRATIONALE: wildcard principal in policy",
			verdict:   types.FindingFail,
			rationale: "wildcard principal in policy",
		},
		{
			name:    "lowercase result line",
			text:    "result: pass\nrationale: looks fine",
			verdict: types.FindingPass,
		},
		{
			name:    "surrounding prose is tolerated",
			text:    "Let me review the resource.\n\nRESULT: FAIL\nRATIONALE: open to the world\n\nLet me know if you need more detail.",
			verdict: types.FindingFail,
		},
		{
			name:    "no result token",
			text:    "The bucket looks compliant to me.",
			verdict: "",
		},
		{
			name:    "unknown verdict value",
			text:    "RESULT: MAYBE\nRATIONALE: unsure",
			verdict: "",
		},
		{
			name:    "conflicting result lines",
			text:    "RESULT: PASS\nRESULT: FAIL",
			verdict: "",
		},
		{
			name:    "repeated identical result is fine",
			text:    "RESULT: PASS\nRESULT: PASS",
			verdict: types.FindingPass,
		},
		{
			name:    "empty response",
			text:    "",
			verdict: "",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			verdict, rationale := usecase.ParseVerdictForTest(c.text)
			gt.V(t, verdict).Equal(c.verdict)
			if c.rationale != "" {
				gt.V(t, rationale).Equal(c.rationale)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	c := policy.Control{
		ID:    "least-privilege",
		Title: "Access policies must follow least privilege",
		Text:  "Does this resource grant broader permissions than necessary?",
	}
	res := &iac.Resource{
		Type:   "aws_iam_policy",
		Name:   "admin",
		Source: `resource "aws_iam_policy" "admin" { policy = "*" }`,
	}

	prompt := usecase.BuildPromptForTest(c, res)

	gt.S(t, prompt).Contains(c.Title)
	gt.S(t, prompt).Contains(c.Text)
	gt.S(t, prompt).Contains("aws_iam_policy.admin")
	gt.S(t, prompt).Contains(res.Source)
	gt.S(t, prompt).Contains("RESULT: PASS")
	gt.S(t, prompt).Contains("RATIONALE:")
}

func TestEvalStructural(t *testing.T) {
	control := policy.Control{
		ID:       "encryption-at-rest",
		Severity: types.SeverityHigh,
		Required: true,
	}

	t.Run("encrypted bucket passes", func(t *testing.T) {
		res := &iac.Resource{
			Type: "aws_s3_bucket",
			Name: "secure",
			Blocks: []*iac.Block{
				{Type: "server_side_encryption_configuration"},
			},
		}
		finding := usecase.EvalStructuralForTest(control, res)
		gt.V(t, finding.Status).Equal(types.FindingPass)
	})

	t.Run("unencrypted bucket fails", func(t *testing.T) {
		res := &iac.Resource{Type: "aws_s3_bucket", Name: "plain", File: "main.tf"}
		finding := usecase.EvalStructuralForTest(control, res)
		gt.V(t, finding.Status).Equal(types.FindingFail)
		gt.V(t, finding.Control).Equal(types.ControlID("encryption-at-rest"))
		gt.V(t, finding.Resource).Equal("aws_s3_bucket.plain")
		gt.V(t, finding.File).Equal("main.tf")
		gt.True(t, finding.Required)
	})

	t.Run("control without built-in rule goes to review", func(t *testing.T) {
		unknown := policy.Control{ID: "custom-control", Mode: policy.ModeStructural}
		finding := usecase.EvalStructuralForTest(unknown, &iac.Resource{Type: "aws_s3_bucket", Name: "x"})
		gt.V(t, finding.Status).Equal(types.FindingNeedsReview)
		gt.S(t, finding.Rationale).Contains("no built-in rule")
	})

	t.Run("public ACL fails no-public-access", func(t *testing.T) {
		c := policy.Control{ID: "no-public-access", Required: true}
		res := &iac.Resource{
			Type:  "aws_s3_bucket",
			Name:  "open",
			Attrs: map[string]any{"acl": "public-read"},
		}
		finding := usecase.EvalStructuralForTest(c, res)
		gt.V(t, finding.Status).Equal(types.FindingFail)
		gt.S(t, finding.Rationale).Contains("public-read")
	})

	t.Run("private ACL passes no-public-access", func(t *testing.T) {
		c := policy.Control{ID: "no-public-access", Required: true}
		res := &iac.Resource{
			Type:  "aws_s3_bucket",
			Name:  "closed",
			Attrs: map[string]any{"acl": "private"},
		}
		finding := usecase.EvalStructuralForTest(c, res)
		gt.V(t, finding.Status).Equal(types.FindingPass)
	})
}
