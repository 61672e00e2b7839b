package extract

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SourceRules overrides the selector chains for one platform. Empty lists
// keep the built-in chain.
type SourceRules struct {
	Price []string `yaml:"price"`
	Title []string `yaml:"title"`
}

// Rules is the selector-rules file: per-platform chain overrides that let
// a deployment patch around a markup change without a rebuild.
type Rules struct {
	Amazon   SourceRules `yaml:"amazon"`
	Flipkart SourceRules `yaml:"flipkart"`
	Myntra   SourceRules `yaml:"myntra"`
}

// LoadRules reads selector overrides from a YAML file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read rules %s", path)
	}

	// The YAML has a top-level "selectors" key.
	var wrapper struct {
		Selectors Rules `yaml:"selectors"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "extract: parse rules")
	}

	return &wrapper.Selectors, nil
}
