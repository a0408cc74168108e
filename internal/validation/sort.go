package validation

import "sort"

// sortDiagnostics orders diagnostics by code for deterministic rendering,
// per §4.2: "Ordering ... is not semantically significant, but
// implementations should sort ... by code".
func sortDiagnostics(diagnostics []Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		return diagnostics[i].Code < diagnostics[j].Code
	})
}
