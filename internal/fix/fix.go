// Package fix implements the fix engine (C10): applying a single pass of
// non-conflicting edits to one file's source, and — in Apply mode — looping
// that pass to convergence as newly-fixed source uncovers further fixable
// diagnostics.
package fix

import (
	"fmt"
	"sort"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

// Mode selects how the fix engine treats a file's accepted fixes.
type Mode int

const (
	// ModeGenerate computes fixes but reports them without touching any
	// file (the default `check` behaviour; --diff uses ModeDiff).
	ModeGenerate Mode = iota
	// ModeApply writes the transformed source back to disk and loops to
	// convergence.
	ModeApply
	// ModeDiff computes the final transformed text for display without
	// persisting it.
	ModeDiff
)

// MaxPasses bounds the Apply-mode convergence loop; spec's cap of 20.
const MaxPasses = 20

// SkipReason explains why a fix with edits was not applied in a given pass.
type SkipReason int

const (
	// SkipConflict means the fix's edits overlapped an already-accepted
	// fix in this pass.
	SkipConflict SkipReason = iota
	// SkipUnsafe means the fix's applicability exceeded what unsafeAllowed
	// permitted for this run.
	SkipUnsafe
	// SkipDisplayOnly means the fix is informational only and is never
	// applied.
	SkipDisplayOnly
)

// String implements fmt.Stringer.
func (r SkipReason) String() string {
	switch r {
	case SkipConflict:
		return "conflicts with another fix in this pass"
	case SkipUnsafe:
		return "fix is unsafe and unsafe fixes were not requested"
	case SkipDisplayOnly:
		return "fix is display-only"
	default:
		return "unknown reason"
	}
}

// AppliedFix records one fix accepted and applied during a pass.
type AppliedFix struct {
	RuleCode string
	Location rules.Location
}

// SkippedFix records one fix with edits that was not applied, carrying the
// original diagnostic so a caller reporting residuals keeps its real
// message, detail, and (unapplied) fix rather than a synthesized stand-in.
type SkippedFix struct {
	Diagnostic rules.Diagnostic
	Reason     SkipReason
}

// Result is the fix engine's output for one file.
type Result struct {
	TransformedText []byte
	AppliedCounts   map[string]int // rule code -> number of accepted applications
	Applied         []AppliedFix
	Skipped         []SkippedFix
	Residual        []rules.Diagnostic
	Passes          int
	CappedWarning   bool
}

// partition splits diagnostics into those whose fix is applicable this run
// and those that are display-only or have no fix at all.
func partition(diagnostics []rules.Diagnostic, unsafeAllowed bool) (applicable, display []rules.Diagnostic) {
	for _, d := range diagnostics {
		if d.Fix == nil {
			display = append(display, d)
			continue
		}
		switch d.Fix.Applicability {
		case rules.Safe:
			applicable = append(applicable, d)
		case rules.Unsafe:
			if unsafeAllowed {
				applicable = append(applicable, d)
			} else {
				display = append(display, d)
			}
		default:
			display = append(display, d)
		}
	}
	return applicable, display
}

// sweep runs one left-to-right pass over applicable: sort by primary edit
// start then rule code, accept a fix iff every edit in its bundle is
// strictly disjoint from every already-accepted edit, and apply the
// accepted edits to source.
func sweep(source []byte, applicable []rules.Diagnostic) (transformed []byte, applied []AppliedFix, skipped []SkippedFix) {
	sorted := make([]rules.Diagnostic, len(applicable))
	copy(sorted, applicable)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := sorted[i].Fix.PrimaryEdit(), sorted[j].Fix.PrimaryEdit()
		if si.Range.Start != sj.Range.Start {
			return si.Range.Start < sj.Range.Start
		}
		return sorted[i].RuleCode < sorted[j].RuleCode
	})

	var accepted []rules.Edit
	for _, d := range sorted {
		if d.Fix.ConflictsWithAny(accepted) {
			skipped = append(skipped, SkippedFix{Diagnostic: d, Reason: SkipConflict})
			continue
		}
		accepted = append(accepted, d.Fix.Edits...)
		applied = append(applied, AppliedFix{RuleCode: d.RuleCode, Location: d.Location})
	}

	transformed = applyEdits(source, accepted)
	return transformed, applied, skipped
}

// applyEdits applies a set of pairwise-disjoint edits to source in a single
// pass, right-to-left by start offset so earlier offsets stay stable as
// later edits are spliced in.
func applyEdits(source []byte, edits []rules.Edit) []byte {
	ordered := make([]rules.Edit, len(edits))
	copy(ordered, edits)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Range.Start > ordered[j].Range.Start })

	out := make([]byte, len(source))
	copy(out, source)
	for _, e := range ordered {
		var replacement []byte
		switch e.Kind {
		case rules.Insertion, rules.Replacement:
			replacement = []byte(e.NewText)
		case rules.Deletion:
			replacement = nil
		}
		out = append(out[:e.Range.Start:e.Range.Start], append(replacement, out[e.Range.End:]...)...)
	}
	return out
}

// Analyze is the signature the convergence loop uses to re-run the per-file
// analyser on mutated source during Apply mode; cmd/fortitude supplies an
// analyzer.Analyzer-backed implementation.
type Analyze func(content []byte) []rules.Diagnostic

// Run executes the fix engine's full algorithm for one file: a single pass
// in ModeGenerate/ModeDiff, or a convergence loop (re-analyze, re-sweep)
// bounded by MaxPasses in ModeApply. reanalyze is called only in ModeApply
// (and may be nil); ModeGenerate and ModeDiff use only the diagnostics
// already computed. In ModeGenerate, TransformedText is the unchanged source.
func Run(source []byte, diagnostics []rules.Diagnostic, mode Mode, unsafeAllowed bool, reanalyze Analyze) Result {
	result := Result{AppliedCounts: make(map[string]int)}

	current := source
	currentDiags := diagnostics

	for pass := 1; ; pass++ {
		applicable, display := partition(currentDiags, unsafeAllowed)
		transformed, applied, skipped := sweep(current, applicable)

		result.Passes = pass
		result.Applied = append(result.Applied, applied...)
		result.Skipped = append(result.Skipped, skipped...)
		for _, a := range applied {
			result.AppliedCounts[a.RuleCode]++
		}

		current = transformed

		if mode != ModeApply || len(applied) == 0 {
			result.Residual = append(display, diagnosticsFor(skipped)...)
			break
		}
		if reanalyze == nil {
			result.Residual = append(display, diagnosticsFor(skipped)...)
			break
		}
		if pass >= MaxPasses {
			result.CappedWarning = true
			result.Residual = append(display, diagnosticsFor(skipped)...)
			break
		}
		currentDiags = reanalyze(current)
	}

	result.TransformedText = current
	if mode == ModeGenerate {
		// ModeGenerate reports what would apply but leaves the text as it was.
		result.TransformedText = source
	}
	return result
}

// diagnosticsFor returns each skipped fix's original diagnostic, with its
// Detail annotated to say why the fix was postponed this run, so a caller
// reporting residuals keeps the real message/location/fix instead of a
// synthesized stand-in.
func diagnosticsFor(skipped []SkippedFix) []rules.Diagnostic {
	out := make([]rules.Diagnostic, 0, len(skipped))
	for _, s := range skipped {
		d := s.Diagnostic
		d.Detail = fmt.Sprintf("fix not applied: %s", s.Reason)
		out = append(out, d)
	}
	return out
}
