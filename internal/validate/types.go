// Package validate performs static pre-flight checks on generated source
// before it is packaged. All checks are pure functions of the source text;
// nothing here executes or imports the code under inspection.
package validate

// Severity grades a finding.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Category groups findings by the check that produced them.
type Category string

const (
	CategorySyntax   Category = "syntax"
	CategorySecurity Category = "security"
	CategoryResource Category = "resource"
)

// Issue is a single finding with its location in the source.
type Issue struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Message  string   `json:"message"`

	// Line is 1-based; zero means the finding is not tied to a line.
	Line int `json:"line,omitempty"`
}

// ResourceEstimate predicts the runtime footprint of the program.
type ResourceEstimate struct {
	MemoryMB int     `json:"memory_mb"`
	CPUCores float64 `json:"cpu_cores"`
}

// Report is the combined outcome of the syntax, security, and resource
// passes. All three always run; a syntax failure does not short-circuit
// the security scan.
type Report struct {
	SyntaxValid      bool             `json:"syntax_valid"`
	SyntaxError      string           `json:"syntax_error,omitempty"`
	SecurityScore    float64          `json:"security_score"`
	Issues           []Issue          `json:"issues,omitempty"`
	ResourceEstimate ResourceEstimate `json:"resource_estimate"`
}

// CriticalIssues returns the critical findings only.
func (r *Report) CriticalIssues() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			out = append(out, issue)
		}
	}
	return out
}
