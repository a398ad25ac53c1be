package checkov_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/complior/pkg/domain/model/checkov"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

const testReport = `{
  "check_type": "terraform",
  "results": {
    "failed_checks": [
      {
        "check_id": "CKV_AWS_18",
        "check_name": "Ensure the S3 bucket has access logging enabled",
        "resource": "aws_s3_bucket.data",
        "file_path": "/main.tf",
        "severity": "HIGH"
      }
    ],
    "passed_checks": [
      {
        "check_id": "CKV_AWS_21",
        "check_name": "Ensure the S3 bucket has versioning enabled",
        "resource": "aws_s3_bucket.data",
        "file_path": "/main.tf"
      }
    ]
  }
}`

func TestLoad(t *testing.T) {
	report := gt.R1(checkov.Load(strings.NewReader(testReport))).NoError(t)

	gt.V(t, report.CheckType).Equal("terraform")
	gt.A(t, report.Results.FailedChecks).Length(1)
	gt.A(t, report.Results.PassedChecks).Length(1)
	gt.V(t, report.Results.FailedChecks[0].CheckID).Equal("CKV_AWS_18")
}

func TestLoadInvalidJSON(t *testing.T) {
	_, err := checkov.Load(strings.NewReader(`{"results": [`))
	gt.Error(t, err)
}

func TestFindings(t *testing.T) {
	report := gt.R1(checkov.Load(strings.NewReader(testReport))).NoError(t)

	findings := report.Findings()
	gt.A(t, findings).Length(2)

	failed := findings[0]
	gt.V(t, failed.Control).Equal(types.ControlID("CKV_AWS_18"))
	gt.V(t, failed.Resource).Equal("aws_s3_bucket.data")
	gt.V(t, failed.File).Equal("/main.tf")
	gt.V(t, failed.Status).Equal(types.FindingFail)
	gt.V(t, failed.Severity).Equal(types.SeverityHigh)
	gt.True(t, failed.Required)
	gt.V(t, failed.Rationale).Equal("Ensure the S3 bucket has access logging enabled")

	passed := findings[1]
	gt.V(t, passed.Control).Equal(types.ControlID("CKV_AWS_21"))
	gt.V(t, passed.Status).Equal(types.FindingPass)
	// severity defaults to medium when the engine omits it
	gt.V(t, passed.Severity).Equal(types.SeverityMedium)
}
