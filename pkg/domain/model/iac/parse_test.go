package iac_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/complior/pkg/domain/model/iac"
)

const testConfig = `
resource "aws_s3_bucket" "plain" {
  bucket = "my-plain-bucket"
  acl    = "public-read"
}

resource "aws_s3_bucket" "hardened" {
  bucket = "my-hardened-bucket"

  server_side_encryption_configuration {
    rule {
      apply_server_side_encryption_by_default {
        sse_algorithm = "aws:kms"
      }
    }
  }

  versioning {
    enabled = true
  }

  logging {
    target_bucket = "my-log-bucket"
  }
}

variable "region" {
  default = "us-east-1"
}
`

func TestParse(t *testing.T) {
	resources := gt.R1(iac.Parse([]byte(testConfig), "main.tf")).NoError(t)
	gt.A(t, resources).Length(2)

	plain := resources[0]
	gt.V(t, plain.Address()).Equal("aws_s3_bucket.plain")
	gt.V(t, plain.File).Equal("main.tf")

	acl, ok := plain.Attr("acl")
	gt.True(t, ok)
	gt.V(t, acl).Equal("public-read")
	gt.V(t, plain.FindBlock("server_side_encryption_configuration")).Equal(nil)

	hardened := resources[1]
	gt.V(t, hardened.Address()).Equal("aws_s3_bucket.hardened")
	gt.V(t, hardened.FindBlock("server_side_encryption_configuration")).NotEqual(nil)
	gt.V(t, hardened.FindBlock("server_side_encryption_configuration", "rule")).NotEqual(nil)
	gt.V(t, hardened.FindBlock("logging")).NotEqual(nil)

	enabled, ok := hardened.AttrDeep("versioning", "enabled")
	gt.True(t, ok)
	gt.True(t, iac.BoolAttr(enabled))

	// the raw declaration text survives for the AI collaborator
	gt.S(t, hardened.Source).Contains(`resource "aws_s3_bucket" "hardened"`)
	gt.S(t, hardened.Source).Contains("sse_algorithm")
}

func TestParseSkipsNonLiteralAttrs(t *testing.T) {
	config := `
resource "aws_s3_bucket" "ref" {
  bucket = var.bucket_name
  acl    = "private"
}
`
	resources := gt.R1(iac.Parse([]byte(config), "ref.tf")).NoError(t)
	gt.A(t, resources).Length(1)

	_, ok := resources[0].Attr("bucket")
	gt.False(t, ok)

	acl, ok := resources[0].Attr("acl")
	gt.True(t, ok)
	gt.V(t, acl).Equal("private")
}

func TestParseInvalidHCL(t *testing.T) {
	_, err := iac.Parse([]byte(`resource "aws_s3_bucket" {`), "broken.tf")
	gt.Error(t, err)
}

func TestParseDir(t *testing.T) {
	tmpDir := gt.R1(os.MkdirTemp("", "iac-test-*")).NoError(t)
	defer os.RemoveAll(tmpDir)

	gt.NoError(t, os.WriteFile(filepath.Join(tmpDir, "main.tf"), []byte(testConfig), 0644))
	gt.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "modules", "storage"), 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(tmpDir, "modules", "storage", "bucket.tf"), []byte(`
resource "aws_s3_bucket" "nested" {
  bucket = "nested-bucket"
}
`), 0644))
	// non-tf files are ignored
	gt.NoError(t, os.WriteFile(filepath.Join(tmpDir, "README.md"), []byte("# readme"), 0644))

	resources := gt.R1(iac.ParseDir(tmpDir)).NoError(t)
	gt.A(t, resources).Length(3)
}

func TestBoolAttr(t *testing.T) {
	gt.True(t, iac.BoolAttr(true))
	gt.True(t, iac.BoolAttr("true"))
	gt.True(t, iac.BoolAttr("True"))
	gt.False(t, iac.BoolAttr(false))
	gt.False(t, iac.BoolAttr("enabled"))
	gt.False(t, iac.BoolAttr(nil))
	gt.False(t, iac.BoolAttr(1.0))
}
