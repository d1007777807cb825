// Package suite defines report definitions and executes them against shared
// datasets. A suite file lists several reports; single commands run one
// definition through the same path.
package suite

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/adalundhe/statlab/core/config"
)

// Kind names one report type.
type Kind string

const (
	KindDescribe   Kind = "describe"
	KindCluster    Kind = "cluster"
	KindClassify   Kind = "classify"
	KindPoisson    Kind = "poisson"
	KindExperiment Kind = "experiment"
	KindConjoint   Kind = "conjoint"
)

var kinds = map[Kind]bool{
	KindDescribe:   true,
	KindCluster:    true,
	KindClassify:   true,
	KindPoisson:    true,
	KindExperiment: true,
	KindConjoint:   true,
}

// Report is one analysis definition. Only the fields its kind reads are
// meaningful; Validate enforces the required ones.
type Report struct {
	Name    string `yaml:"name" json:"name"`
	Kind    Kind   `yaml:"kind" json:"kind"`
	Dataset string `yaml:"dataset" json:"dataset,omitempty"`

	// Column selections. Columns accepts glob patterns.
	Columns       []string `yaml:"columns" json:"columns,omitempty"`
	Features      []string `yaml:"features" json:"features,omitempty"`
	Label         string   `yaml:"label" json:"label,omitempty"`
	Outcome       string   `yaml:"outcome" json:"outcome,omitempty"`
	Treatment     string   `yaml:"treatment" json:"treatment,omitempty"`
	Covariates    []string `yaml:"covariates" json:"covariates,omitempty"`
	BinaryOutcome string   `yaml:"binary_outcome" json:"binary_outcome,omitempty"`
	Choice        string   `yaml:"choice" json:"choice,omitempty"`
	Group         string   `yaml:"group" json:"group,omitempty"`
	Price         string   `yaml:"price" json:"price,omitempty"`

	// Tuning. Zero values fall back to the effective configuration.
	K            int       `yaml:"k" json:"k,omitempty"`
	Neighbors    int       `yaml:"neighbors" json:"neighbors,omitempty"`
	TestFraction float64   `yaml:"test_fraction" json:"test_fraction,omitempty"`
	Standardize  bool      `yaml:"standardize" json:"standardize,omitempty"`
	Simulate     bool      `yaml:"simulate" json:"simulate,omitempty"`
	Predict      []float64 `yaml:"predict" json:"predict,omitempty"`
	Seed         uint64    `yaml:"seed" json:"seed,omitempty"`

	// Output. Plot is a file name under the suite output directory; Plots
	// asks the experiment kind for its CLT and LLN simulation plots.
	Plot  string `yaml:"plot" json:"plot,omitempty"`
	Plots bool   `yaml:"plots" json:"plots,omitempty"`

	// Config overrides the loaded configuration for this report only.
	Config *config.Config `yaml:"config" json:"-"`
}

// Suite is a parsed suite file.
type Suite struct {
	Name    string   `yaml:"name"`
	Output  string   `yaml:"output"`
	Reports []Report `yaml:"reports"`
}

// Load reads and validates a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("suite %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks every report definition.
func (s *Suite) Validate() error {
	if len(s.Reports) == 0 {
		return errors.New("no reports")
	}
	seen := make(map[string]bool, len(s.Reports))
	for i := range s.Reports {
		r := &s.Reports[i]
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate report name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// Validate checks that the definition names its kind's required inputs.
func (r *Report) Validate() error {
	if r.Name == "" {
		return errors.New("report has no name")
	}
	if !kinds[r.Kind] {
		return fmt.Errorf("report %s: unknown kind %q", r.Name, r.Kind)
	}
	if r.Dataset == "" && !(r.Kind == KindConjoint && r.Simulate) {
		return fmt.Errorf("report %s: no dataset", r.Name)
	}

	switch r.Kind {
	case KindClassify:
		if r.Label == "" {
			return fmt.Errorf("report %s: classify needs a label column", r.Name)
		}
	case KindPoisson:
		if r.Outcome == "" || len(r.Features) == 0 {
			return fmt.Errorf("report %s: poisson needs an outcome and features", r.Name)
		}
	case KindExperiment:
		if r.Outcome == "" || r.Treatment == "" {
			return fmt.Errorf("report %s: experiment needs outcome and treatment columns", r.Name)
		}
	case KindConjoint:
		if !r.Simulate && (r.Choice == "" || r.Group == "" || len(r.Features) == 0) {
			return fmt.Errorf("report %s: conjoint needs choice, group, and features", r.Name)
		}
	}
	return nil
}
