package validate

import (
	"errors"
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"regexp"
	"strings"
)

// Penalty weights for the security score. The score starts at 1.0 and
// each finding subtracts its weight, floored at zero.
const (
	penaltyDangerousImport   = 0.3
	penaltyHardcodedSecret   = 0.4
	penaltyShellConstruction = 0.2
)

// dangerousImports are packages a generated program has no business
// importing. The sandbox would contain the damage, but flagging them
// before packaging saves a build.
var dangerousImports = map[string]string{
	"os/exec": "spawns subprocesses",
	"syscall": "raw system call access",
	"unsafe":  "defeats memory safety",
	"plugin":  "loads arbitrary shared objects",
}

// credentialAssignment matches an assignment of a string literal to a
// credential-shaped identifier. Assignments of the empty string and
// values read from the environment are exempt; only a literal secret
// baked into the source is a finding.
var credentialAssignment = regexp.MustCompile(
	`(?i)\b(\w*(?:password|passwd|secret|token|api_?key|credential|private_?key)\w*)\s*(?::?=)\s*"([^"]*)"`)

var envLookup = regexp.MustCompile(`(?i)\bos\.(?:Getenv|LookupEnv)\b`)

// Check runs the syntax, security, and resource passes over the source.
// It is a pure function: same source, same report, no side effects.
// All three passes run even when an earlier one finds problems.
func Check(source string) *Report {
	report := &Report{SecurityScore: 1.0}

	checkSyntax(source, report)
	checkSecurity(source, report)
	estimateResources(source, report)

	return report
}

// checkSyntax parses the source with the language's own parser. The
// first error's position and message become the corrective feedback
// handed back to the synthesizer.
func checkSyntax(source string, report *Report) {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "main.go", source, 0)
	if err == nil {
		report.SyntaxValid = true
		return
	}

	report.SyntaxValid = false

	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		report.SyntaxError = fmt.Sprintf("line %d: %s", first.Pos.Line, first.Msg)
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityCritical,
			Category: CategorySyntax,
			Message:  first.Msg,
			Line:     first.Pos.Line,
		})
		return
	}

	report.SyntaxError = err.Error()
	report.Issues = append(report.Issues, Issue{
		Severity: SeverityCritical,
		Category: CategorySyntax,
		Message:  err.Error(),
	})
}

func checkSecurity(source string, report *Report) {
	for i, line := range strings.Split(source, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		for pkg, reason := range dangerousImports {
			if importsPackage(trimmed, pkg) {
				report.SecurityScore -= penaltyDangerousImport
				report.Issues = append(report.Issues, Issue{
					Severity: SeverityCritical,
					Category: CategorySecurity,
					Message:  fmt.Sprintf("import of %q: %s", pkg, reason),
					Line:     lineNo,
				})
			}
		}

		if m := credentialAssignment.FindStringSubmatch(trimmed); m != nil {
			// Empty literals are placeholders, and environment lookups
			// are the sanctioned way to receive a secret.
			if m[2] != "" && !envLookup.MatchString(trimmed) {
				report.SecurityScore -= penaltyHardcodedSecret
				report.Issues = append(report.Issues, Issue{
					Severity: SeverityCritical,
					Category: CategorySecurity,
					Message:  fmt.Sprintf("hardcoded credential assigned to %q", m[1]),
					Line:     lineNo,
				})
			}
		}

		if strings.Contains(trimmed, "sh -c") || strings.Contains(trimmed, "/bin/sh") {
			report.SecurityScore -= penaltyShellConstruction
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityWarning,
				Category: CategorySecurity,
				Message:  "shell command construction",
				Line:     lineNo,
			})
		}
	}

	if report.SecurityScore < 0 {
		report.SecurityScore = 0
	}
}

// importsPackage matches both the single-import and import-block forms.
func importsPackage(line, pkg string) bool {
	quoted := `"` + pkg + `"`
	if line == quoted || strings.HasSuffix(line, " "+quoted) {
		return true
	}
	return strings.HasPrefix(line, "import ") && strings.Contains(line, quoted)
}

// Resource footprint lookup. Estimates start from a batch-program
// baseline and grow with the heavier capabilities the source imports.
var resourceWeights = []struct {
	marker   string
	memoryMB int
	cpuCores float64
}{
	{`"net/http"`, 128, 0.25},
	{`"database/sql"`, 128, 0.25},
	{`"encoding/csv"`, 64, 0},
	{`"image`, 256, 0.5},
	{`"compress/`, 64, 0.25},
}

func estimateResources(source string, report *Report) {
	est := ResourceEstimate{MemoryMB: 64, CPUCores: 0.25}

	for _, w := range resourceWeights {
		if strings.Contains(source, w.marker) {
			est.MemoryMB += w.memoryMB
			est.CPUCores += w.cpuCores
		}
	}

	if est.CPUCores > 2.0 {
		est.CPUCores = 2.0
	}
	if est.MemoryMB > 1024 {
		est.MemoryMB = 1024
	}

	report.ResourceEstimate = est
}
