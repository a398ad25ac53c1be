package policy_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/complior/pkg/domain/model/policy"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

func TestLoad(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		catalog := gt.R1(policy.Load(strings.NewReader(`
controls:
  - id: encryption-at-rest
    title: Data at rest must be encrypted
    severity: high
    required: true
    mode: structural
    resource_types:
      - aws_s3_bucket
  - id: least-privilege
    title: Least privilege
    severity: medium
    mode: ai
    text: Does this resource grant broader permissions than necessary?
`))).NoError(t)

		gt.A(t, catalog.Controls).Length(2)
		gt.A(t, catalog.StructuralControls()).Length(1)
		gt.A(t, catalog.AIControls()).Length(1)
	})

	t.Run("empty catalog is rejected", func(t *testing.T) {
		_, err := policy.Load(strings.NewReader(`controls: []`))
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrValidationFailed))
	})

	t.Run("duplicated control ID is rejected", func(t *testing.T) {
		_, err := policy.Load(strings.NewReader(`
controls:
  - id: encryption-at-rest
    mode: structural
  - id: encryption-at-rest
    mode: structural
`))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("duplicated control ID")
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		_, err := policy.Load(strings.NewReader(`
controls:
  - id: encryption-at-rest
    mode: magic
`))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("unknown control mode")
	})

	t.Run("ai control without text is rejected", func(t *testing.T) {
		_, err := policy.Load(strings.NewReader(`
controls:
  - id: least-privilege
    mode: ai
`))
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("ai control without text")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		_, err := policy.Load(strings.NewReader(`
controls:
  - id: encryption-at-rest
    mode: structural
    severty: high
`))
		gt.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	catalog := policy.Default()
	gt.A(t, catalog.Controls).Longer(0)

	byID := map[types.ControlID]policy.Control{}
	for _, c := range catalog.Controls {
		byID[c.ID] = c
	}

	enc, ok := byID["encryption-at-rest"]
	gt.True(t, ok)
	gt.True(t, enc.Required)
	gt.V(t, enc.Mode).Equal(policy.ModeStructural)

	lp, ok := byID["least-privilege"]
	gt.True(t, ok)
	gt.V(t, lp.Mode).Equal(policy.ModeAI)
	gt.V(t, lp.Text).NotEqual("")
}

func TestControlAppliesTo(t *testing.T) {
	scoped := policy.Control{ResourceTypes: []string{"aws_s3_bucket"}}
	gt.True(t, scoped.AppliesTo("aws_s3_bucket"))
	gt.False(t, scoped.AppliesTo("aws_iam_policy"))

	unscoped := policy.Control{}
	gt.True(t, unscoped.AppliesTo("aws_s3_bucket"))
	gt.True(t, unscoped.AppliesTo("aws_iam_policy"))
}
