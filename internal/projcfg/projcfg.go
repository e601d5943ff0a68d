// Package projcfg decodes the optional alumina.yaml project manifest
// (spec.md SPEC_FULL.md §A.2): a sysroot path and default cfg values a
// CLI invocation can fall back to when the corresponding flag is
// absent. Grounded on the teacher's internal/eval_harness.LoadSpec:
// read the file, yaml.Unmarshal into a typed struct, validate.
package projcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the decoded shape of alumina.yaml.
type Manifest struct {
	Sysroot string            `yaml:"sysroot"`
	Cfg     map[string]string `yaml:"cfg"`
	Library bool              `yaml:"library"`
}

// Load reads and decodes the manifest at path. A missing file is not
// an error — the manifest is optional (spec.md SPEC_FULL.md §A.2) — it
// returns a nil *Manifest and nil error in that case.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read project manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse project manifest: %w", err)
	}
	return &m, nil
}

// CfgFlags renders the manifest's default cfg map into the same
// "name" / "name=value" strings --cfg accepts on the command line, so
// callers can merge manifest defaults and explicit flags through one
// parsing path in cmd/aluminac.
func (m *Manifest) CfgFlags() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.Cfg))
	for name, value := range m.Cfg {
		if value == "" {
			out = append(out, name)
			continue
		}
		out = append(out, name+"="+value)
	}
	return out
}
