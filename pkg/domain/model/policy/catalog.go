package policy

import (
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/secmon-lab/complior/pkg/domain/types"
)

// Mode selects how a control is evaluated.
type Mode string

const (
	// ModeStructural controls are decided by the built-in rule set from
	// the parsed resource declarations.
	ModeStructural Mode = "structural"
	// ModeAI controls are ambiguous or context dependent and are graded
	// by the text-completion collaborator.
	ModeAI Mode = "ai"
)

// Control is a single compliance requirement.
type Control struct {
	ID       types.ControlID `yaml:"id"`
	Title    string          `yaml:"title"`
	Severity types.Severity  `yaml:"severity"`
	Required bool            `yaml:"required"`
	Mode     Mode            `yaml:"mode"`

	// ResourceTypes restricts which resource types the control applies
	// to. Empty means every resource.
	ResourceTypes []string `yaml:"resource_types,omitempty"`

	// Text is the control statement handed to the AI collaborator for
	// ModeAI controls.
	Text string `yaml:"text,omitempty"`
}

func (x *Control) AppliesTo(resourceType string) bool {
	if len(x.ResourceTypes) == 0 {
		return true
	}
	for _, t := range x.ResourceTypes {
		if t == resourceType {
			return true
		}
	}
	return false
}

// Catalog is the process-wide control set, loaded once at startup.
type Catalog struct {
	Controls []Control `yaml:"controls"`
}

// Load reads a catalog and rejects duplicate control IDs instead of letting
// a later definition silently shadow an earlier one.
func Load(r io.Reader) (*Catalog, error) {
	var catalog Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, goerr.Wrap(err, "failed to decode control catalog")
	}

	if len(catalog.Controls) == 0 {
		return nil, goerr.Wrap(types.ErrValidationFailed, "control catalog is empty")
	}

	seen := map[types.ControlID]struct{}{}
	for _, c := range catalog.Controls {
		if c.ID == "" {
			return nil, goerr.Wrap(types.ErrValidationFailed, "control without ID", goerr.V("title", c.Title))
		}
		if _, ok := seen[c.ID]; ok {
			return nil, goerr.Wrap(types.ErrValidationFailed, "duplicated control ID", goerr.V("id", c.ID))
		}
		seen[c.ID] = struct{}{}

		switch c.Mode {
		case ModeStructural:
		case ModeAI:
			if c.Text == "" {
				return nil, goerr.Wrap(types.ErrValidationFailed, "ai control without text", goerr.V("id", c.ID))
			}
		default:
			return nil, goerr.Wrap(types.ErrValidationFailed, "unknown control mode",
				goerr.V("id", c.ID),
				goerr.V("mode", c.Mode),
			)
		}
	}

	return &catalog, nil
}

// LoadFile loads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	fd, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open control catalog", goerr.V("path", path))
	}
	defer fd.Close()

	return Load(fd)
}

// Default returns the built-in control set used when no catalog file is
// given.
func Default() *Catalog {
	return &Catalog{
		Controls: []Control{
			{
				ID:            "encryption-at-rest",
				Title:         "Data at rest must be encrypted",
				Severity:      types.SeverityHigh,
				Required:      true,
				Mode:          ModeStructural,
				ResourceTypes: []string{"aws_s3_bucket"},
			},
			{
				ID:            "no-public-access",
				Title:         "Storage must deny public access",
				Severity:      types.SeverityCritical,
				Required:      true,
				Mode:          ModeStructural,
				ResourceTypes: []string{"aws_s3_bucket"},
			},
			{
				ID:            "access-logging",
				Title:         "Storage access must be logged",
				Severity:      types.SeverityMedium,
				Required:      false,
				Mode:          ModeStructural,
				ResourceTypes: []string{"aws_s3_bucket"},
			},
			{
				ID:            "versioning-enabled",
				Title:         "Stored objects must be versioned",
				Severity:      types.SeverityLow,
				Required:      false,
				Mode:          ModeStructural,
				ResourceTypes: []string{"aws_s3_bucket"},
			},
			{
				ID:       "least-privilege",
				Title:    "Access policies must follow least privilege",
				Severity: types.SeverityMedium,
				Required: false,
				Mode:     ModeAI,
				Text: "Does this resource grant broader permissions than necessary " +
					"for its apparent purpose? Consider wildcard principals, " +
					"wildcard actions and overly wide network ranges.",
			},
		},
	}
}

// AIControls returns controls graded by the AI collaborator.
func (x *Catalog) AIControls() []Control {
	var out []Control
	for _, c := range x.Controls {
		if c.Mode == ModeAI {
			out = append(out, c)
		}
	}
	return out
}

// StructuralControls returns controls decided by the built-in rule set.
func (x *Catalog) StructuralControls() []Control {
	var out []Control
	for _, c := range x.Controls {
		if c.Mode == ModeStructural {
			out = append(out, c)
		}
	}
	return out
}
