package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/phpnarrow/internal/assertion"
	"github.com/roach88/phpnarrow/internal/codebase"
	"github.com/roach88/phpnarrow/internal/reconciler"
	"github.com/roach88/phpnarrow/internal/ttype"
	"github.com/roach88/phpnarrow/internal/typespec"
	"github.com/roach88/phpnarrow/internal/varpath"
)

// Scenario is one reconciliation fixture.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// PHPVersion as PHP_VERSION_ID. Zero means the reconciler default.
	PHPVersion int `yaml:"php_version,omitempty"`

	// RunID fixes the run id for golden comparison.
	RunID string `yaml:"run_id,omitempty"`

	// Codebase declares classes on top of the built-ins.
	Codebase codebase.File `yaml:"codebase,omitempty"`

	// Scope seeds the types of variables and array items by path.
	Scope map[string]typespec.Spec `yaml:"scope,omitempty"`

	// Refs binds variables by reference: "$b": "$a" is $b = &$a.
	Refs map[string]string `yaml:"refs,omitempty"`

	Steps []Step `yaml:"steps"`
}

// Step is one condition applied to the scope.
type Step struct {
	Clauses    []ClauseSpec `yaml:"clauses"`
	InsideLoop bool         `yaml:"inside_loop,omitempty"`
	Negated    bool         `yaml:"negated,omitempty"`

	// Quiet turns diagnostics off for the step.
	Quiet bool `yaml:"quiet,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// ClauseSpec is what the condition proves about one path.
type ClauseSpec struct {
	Path   string            `yaml:"path"`
	Groups [][]AssertionSpec `yaml:"groups"`
}

// AssertionSpec is the YAML form of an assertion. Which operand is
// required depends on Kind.
type AssertionSpec struct {
	Kind   string         `yaml:"kind"`
	Type   *typespec.Spec `yaml:"type,omitempty"`
	Key    any            `yaml:"key,omitempty"`
	Count  *int           `yaml:"count,omitempty"`
	Values *typespec.Spec `yaml:"values,omitempty"`
}

// Expect checks the scope after a step. Nil fields are not checked.
type Expect struct {
	// Types maps paths to expected type ids.
	Types map[string]string `yaml:"types,omitempty"`

	// Changed lists the paths the step should report, sorted.
	Changed *[]string `yaml:"changed,omitempty"`

	// Issues lists the kinds the step should report, in order.
	Issues *[]string `yaml:"issues,omitempty"`
}

// LoadScenario reads, schema-checks and validates a scenario file.
// Unknown fields are rejected so typos do not pass silently.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, File: path, Message: "failed to read scenario file", Err: err}
	}
	s, err := ParseScenario(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: "failed to parse YAML", Err: err}
	}
	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: "failed to decode scenario", Err: err}
	}

	if _, err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// compiled is a scenario with every type, path and assertion built.
type compiled struct {
	cb    *codebase.Memory
	scope *reconciler.Scope
	refs  *reconciler.RefGraph
	steps [][]reconciler.Clause
}

// compile builds s into fresh reconciler inputs. It is called once to
// validate on load and again for every run, so runs never share a scope.
func (s *Scenario) compile() (*compiled, error) {
	invalid := func(format string, args ...any) error {
		return &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf(format, args...)}
	}
	if s.Name == "" {
		return nil, invalid("name is required")
	}
	if len(s.Steps) == 0 {
		return nil, invalid("steps list is required and must be non-empty")
	}

	c := &compiled{
		cb:    codebase.NewMemory(),
		scope: reconciler.NewScope(),
		refs:  reconciler.NewRefGraph(s.Refs),
	}
	if err := c.cb.AddFile(s.Codebase); err != nil {
		return nil, invalid("%v", err)
	}

	for path, spec := range s.Scope {
		p, err := varpath.Parse(path)
		if err != nil {
			return nil, invalid("scope %s: %v", path, err)
		}
		u, err := spec.Build()
		if err != nil {
			return nil, invalid("scope %s: %v", path, err)
		}
		c.scope.Set(p, u)
	}

	for i, step := range s.Steps {
		if len(step.Clauses) == 0 {
			return nil, invalid("steps[%d]: clauses list is required", i)
		}
		clauses := make([]reconciler.Clause, 0, len(step.Clauses))
		for j, cs := range step.Clauses {
			cl, err := cs.build()
			if err != nil {
				return nil, invalid("steps[%d].clauses[%d]: %v", i, j, err)
			}
			clauses = append(clauses, cl)
		}
		if step.Expect != nil {
			for path := range step.Expect.Types {
				if _, err := varpath.Parse(path); err != nil {
					return nil, invalid("steps[%d].expect.types %s: %v", i, path, err)
				}
			}
		}
		c.steps = append(c.steps, clauses)
	}
	return c, nil
}

func (cs ClauseSpec) build() (reconciler.Clause, error) {
	p, err := varpath.Parse(cs.Path)
	if err != nil {
		return reconciler.Clause{}, err
	}
	if len(cs.Groups) == 0 {
		return reconciler.Clause{}, fmt.Errorf("path %s: groups list is required", cs.Path)
	}
	out := reconciler.Clause{Path: p, Groups: make([][]assertion.Assertion, 0, len(cs.Groups))}
	for g, group := range cs.Groups {
		if len(group) == 0 {
			return reconciler.Clause{}, fmt.Errorf("groups[%d] is empty", g)
		}
		alts := make([]assertion.Assertion, 0, len(group))
		for a, spec := range group {
			built, err := spec.Build()
			if err != nil {
				return reconciler.Clause{}, fmt.Errorf("groups[%d][%d]: %w", g, a, err)
			}
			alts = append(alts, built)
		}
		out.Groups = append(out.Groups, alts)
	}
	return out, nil
}

// Build converts the spec into an assertion.
func (as AssertionSpec) Build() (assertion.Assertion, error) {
	kind, err := assertion.ParseKind(as.Kind)
	if err != nil {
		return assertion.Assertion{}, err
	}
	out := assertion.Of(kind)

	positive := kind
	if kind.IsNegation() {
		positive = kind.Negation()
	}
	switch positive {
	case assertion.IsType, assertion.IsIdentical, assertion.IsEqual:
		if as.Type == nil {
			return assertion.Assertion{}, fmt.Errorf("%s needs a type", kind)
		}
		u, err := as.Type.Build()
		if err != nil {
			return assertion.Assertion{}, err
		}
		a, ok := u.Single()
		if !ok {
			return assertion.Assertion{}, fmt.Errorf("%s needs a single type, got %s", kind, u.ID())
		}
		out.Type = a
	case assertion.HasArrayKey, assertion.HasNonnullEntryForKey:
		if as.Key == nil {
			return assertion.Assertion{}, fmt.Errorf("%s needs a key", kind)
		}
		key, ok := ttype.CoerceKey(as.Key)
		if !ok {
			return assertion.Assertion{}, fmt.Errorf("%s: invalid key %v", kind, as.Key)
		}
		out.Key = key
	case assertion.HasExactCount:
		if as.Count == nil {
			return assertion.Assertion{}, fmt.Errorf("%s needs a count", kind)
		}
		out.Count = *as.Count
	case assertion.InArray:
		if as.Values == nil {
			return assertion.Assertion{}, fmt.Errorf("%s needs values", kind)
		}
		u, err := as.Values.Build()
		if err != nil {
			return assertion.Assertion{}, err
		}
		out.Values = u
	}
	return out, nil
}
