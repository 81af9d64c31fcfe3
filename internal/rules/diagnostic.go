package rules

import "sort"

// Applicability classifies how safe a fix is to apply automatically.
type Applicability int

const (
	// Safe fixes never alter observable program semantics and are applied
	// in Generate/Apply/Diff modes whenever the violated rule is enabled.
	Safe Applicability = iota
	// Unsafe fixes may change behaviour; applied only when the caller opts
	// in (unsafe_fixes).
	Unsafe
	// DisplayOnly fixes are shown to the user but never mutate files.
	DisplayOnly
)

// String implements fmt.Stringer.
func (a Applicability) String() string {
	switch a {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	case DisplayOnly:
		return "display"
	default:
		return "unknown"
	}
}

// EditKind distinguishes the three edit shapes a Fix may bundle.
type EditKind int

const (
	Insertion EditKind = iota
	Deletion
	Replacement
)

// Edit is one atomic text change: insert text at a point, delete a range, or
// replace a range with text. Range is always expressed as 0<=Start<=End<=len
// against the source the owning rule observed.
type Edit struct {
	Kind    EditKind
	Range   TextRange
	NewText string
}

// InsertEdit inserts text at position (a zero-width range at pos).
func InsertEdit(pos int, text string) Edit {
	return Edit{Kind: Insertion, Range: PointRange(pos), NewText: text}
}

// DeleteEdit removes the bytes in r.
func DeleteEdit(r TextRange) Edit {
	return Edit{Kind: Deletion, Range: r}
}

// ReplaceEdit replaces the bytes in r with text.
func ReplaceEdit(r TextRange, text string) Edit {
	return Edit{Kind: Replacement, Range: r, NewText: text}
}

// Overlaps reports whether two edits' half-open ranges share a byte. A
// zero-width insertion shares no byte with anything, so it never overlaps
// another edit, not even an insertion at the same offset; adjacent ranges
// that merely touch are not in conflict either.
func (e Edit) Overlaps(other Edit) bool {
	return e.Range.Overlaps(other.Range)
}

// Fix is a non-empty, atomically-applied bundle of edits tagged with a
// safety classification. Edits[0] is the primary edit used for sort
// ordering in the fix engine; any remaining edits are secondary and must
// apply together with it or not at all.
type Fix struct {
	Edits         []Edit
	Applicability Applicability
	Title         string
}

// NewFix builds a Fix from one or more edits. Panics if edits is empty: a
// Fix is defined to be non-empty.
func NewFix(applicability Applicability, title string, edits ...Edit) Fix {
	if len(edits) == 0 {
		panic("rules: Fix must have at least one edit")
	}
	return Fix{Edits: edits, Applicability: applicability, Title: title}
}

// SafeFix is sugar for NewFix(Safe, ...).
func SafeFix(title string, edits ...Edit) Fix {
	return NewFix(Safe, title, edits...)
}

// UnsafeFix is sugar for NewFix(Unsafe, ...).
func UnsafeFix(title string, edits ...Edit) Fix {
	return NewFix(Unsafe, title, edits...)
}

// DisplayFix is sugar for NewFix(DisplayOnly, ...).
func DisplayFix(title string, edits ...Edit) Fix {
	return NewFix(DisplayOnly, title, edits...)
}

// PrimaryEdit returns the fix's first (primary) edit.
func (f Fix) PrimaryEdit() Edit {
	return f.Edits[0]
}

// ConflictsWithAny reports whether any edit in f overlaps any edit in
// accepted.
func (f Fix) ConflictsWithAny(accepted []Edit) bool {
	for _, e := range f.Edits {
		for _, a := range accepted {
			if e.Overlaps(a) {
				return true
			}
		}
	}
	return false
}

// SelfOverlaps reports whether f's own edits overlap one another — an
// internal-invariant violation a rule must never produce.
func (f Fix) SelfOverlaps() bool {
	for i := range f.Edits {
		for j := i + 1; j < len(f.Edits); j++ {
			if f.Edits[i].Overlaps(f.Edits[j]) {
				return true
			}
		}
	}
	return false
}

// Diagnostic is a single reported problem: the rule that found it, a
// human-readable message, the primary range it applies to, and an optional
// fix.
type Diagnostic struct {
	RuleCode string
	Message  string
	Detail   string
	DocURL   string
	Location Location
	Fix      *Fix
}

// NewDiagnostic builds a diagnostic with no fix attached.
func NewDiagnostic(ruleCode, message string, loc Location) Diagnostic {
	return Diagnostic{RuleCode: ruleCode, Message: message, Location: loc}
}

// WithFix attaches a fix by value, returning the updated diagnostic.
func (d Diagnostic) WithFix(f Fix) Diagnostic {
	d.Fix = &f
	return d
}

// WithDetail attaches additional context.
func (d Diagnostic) WithDetail(detail string) Diagnostic {
	d.Detail = detail
	return d
}

// WithDocURL attaches a documentation link.
func (d Diagnostic) WithDocURL(url string) Diagnostic {
	d.DocURL = url
	return d
}

// CompareKey returns the tuple the core total order is defined over:
// (path, start_offset, end_offset, rule_code).
func (d Diagnostic) CompareKey() (string, int, int, string) {
	return d.Location.File, d.Location.Range.Start, d.Location.Range.End, d.RuleCode
}

// Less implements the strict total order from spec §4.1/§8 property 2.
func (d Diagnostic) Less(other Diagnostic) bool {
	af, as, ae, ac := d.CompareKey()
	bf, bs, be, bc := other.CompareKey()
	if af != bf {
		return af < bf
	}
	if as != bs {
		return as < bs
	}
	if ae != be {
		return ae < be
	}
	return ac < bc
}

// SortDiagnostics returns a stably-sorted copy of diagnostics in the core's
// total order.
func SortDiagnostics(diagnostics []Diagnostic) []Diagnostic {
	sorted := make([]Diagnostic, len(diagnostics))
	copy(sorted, diagnostics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})
	return sorted
}
