package core

import (
	"fmt"

	"ctcore/internal/parts"
	"ctcore/pkg/rig"
)

// Severity classifies a validation finding.
type Severity string

const (
	// SeverityWarning marks a finding the setup can operate with; derived
	// quantities may degrade to neutral values.
	SeverityWarning Severity = "warning"
	// SeverityError marks a finding that makes beam computations fail.
	SeverityError Severity = "error"
)

// Issue is one validation finding.
type Issue struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report aggregates the findings of one validation run.
type Report struct {
	Valid  bool    `json:"valid"`
	Simple bool    `json:"simple"`
	Issues []Issue `json:"issues,omitempty"`
}

// HasErrors reports whether any finding is an error.
func (r Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Merge appends the findings of another report.
func (r *Report) Merge(other Report) {
	r.Issues = append(r.Issues, other.Issues...)
}

// Rule inspects one aspect of a setup.
type Rule interface {
	Name() string
	Evaluate(system *rig.System) Report
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// NewDefaultRulesEngine builds an engine with the built-in rule set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(CompletenessRule{})
	engine.Register(ModifierModelRule{})
	engine.Register(SourceParameterRule{})
	return engine
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their findings.
func (e *RulesEngine) Evaluate(system *rig.System) Report {
	combined := Report{Valid: system.IsValid(), Simple: system.IsSimple()}
	for _, rule := range e.rules {
		combined.Merge(rule.Evaluate(system))
	}
	return combined
}

/// CompletenessRule checks the structural composition of the setup: a usable
// setup needs at least one source, gantry and detector, and the beam
// computations additionally assume a simple setup.
type CompletenessRule struct{}

// Name implements Rule.
func (CompletenessRule) Name() string { return "completeness" }

// Evaluate implements Rule.
func (r CompletenessRule) Evaluate(system *rig.System) Report {
	var report Report
	add := func(severity Severity, format string, args ...any) {
		report.Issues = append(report.Issues, Issue{Rule: r.Name(), Severity: severity, Message: fmt.Sprintf(format, args...)})
	}
	if system.IsEmpty() {
		add(SeverityError, "setup has no components")
		return report
	}
	if len(system.Sources()) == 0 {
		add(SeverityError, "setup has no source")
	}
	if len(system.Detectors()) == 0 {
		add(SeverityError, "setup has no detector")
	}
	if len(system.Gantries()) == 0 {
		add(SeverityError, "setup has no gantry")
	}
	if system.IsValid() && !system.IsSimple() {
		add(SeverityWarning, "setup is valid but not simple; beam computations use the first source and detector")
	}
	return report
}

// ModifierModelRule flags beam modifiers that cannot transform the beam,
// such as a spectral filter without an attenuation model.
type ModifierModelRule struct{}

// Name implements Rule.
func (ModifierModelRule) Name() string { return "modifier-model" }

// Evaluate implements Rule.
func (r ModifierModelRule) Evaluate(system *rig.System) Report {
	var report Report
	for _, c := range system.Modifiers() {
		filter, ok := c.(*parts.SpectralFilter)
		if !ok {
			continue
		}
		if filter.AttenuationModel() == nil {
			report.Issues = append(report.Issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityError,
				Message:  fmt.Sprintf("spectral filter %q has no attenuation model", filter.Name()),
			})
		} else if filter.Thickness() < 0 {
			report.Issues = append(report.Issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("spectral filter %q has negative thickness %g", filter.Name(), filter.Thickness()),
			})
		}
	}
	return report
}

// SourceParameterRule sanity-checks source parameters. Findings are warnings:
// the setup stays operable but derived quantities may be meaningless.
type SourceParameterRule struct{}

// Name implements Rule.
func (SourceParameterRule) Name() string { return "source-parameters" }

// Evaluate implements Rule.
func (r SourceParameterRule) Evaluate(system *rig.System) Report {
	var report Report
	add := func(format string, args ...any) {
		report.Issues = append(report.Issues, Issue{Rule: r.Name(), Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
	}
	for _, c := range system.Sources() {
		tube, ok := c.(*parts.XRayTube)
		if !ok {
			continue
		}
		if tube.Voltage() <= 0 {
			add("x-ray tube %q has non-positive voltage %g kVp", tube.Name(), tube.Voltage())
		}
		if tube.Exposure() < 0 {
			add("x-ray tube %q has negative exposure %g mAs", tube.Name(), tube.Exposure())
		}
		if tube.EmissionModel() == nil {
			add("x-ray tube %q has no emission model; its spectrum is empty", tube.Name())
		}
	}
	return report
}
