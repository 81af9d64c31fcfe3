package rules

import (
	"fmt"
	"sort"
	"strings"
)

// Category sorts rules into logical groups and supplies the common prefix
// that rule codes and CLI selectors share. The domain and prefixes are fixed
// by the on-disk rule codes (e.g. "C001", "MOD014", "FORT001") and must never
// change once a rule has shipped.
type Category string

const (
	CategoryError          Category = "error"
	CategoryStyle          Category = "style"
	CategoryCorrectness    Category = "correctness"
	CategoryModules        Category = "modules"
	CategoryObsolescent    Category = "obsolescent"
	CategoryPortability    Category = "portability"
	CategoryModernisation  Category = "modernisation"
	CategoryIO             Category = "io"
	CategoryPrecision      Category = "precision"
	CategoryReadability    Category = "readability"
	CategoryTyping         Category = "typing"
	CategoryFortitudeMeta  Category = "fortitude-meta"
)

// categoryPrefixes lists every category with its common code prefix. Order
// does not affect matching: some prefixes are proper prefixes of others
// ("M" of "MOD", "P" of "PORT"), and ParseCode picks the longest match.
var categoryPrefixes = []struct {
	category Category
	prefix   string
}{
	{CategoryError, "E"},
	{CategoryStyle, "S"},
	{CategoryCorrectness, "C"},
	{CategoryModules, "M"},
	{CategoryObsolescent, "OB"},
	{CategoryPortability, "PORT"},
	{CategoryModernisation, "MOD"},
	{CategoryIO, "IO"},
	{CategoryPrecision, "P"},
	{CategoryReadability, "R"},
	{CategoryTyping, "T"},
	{CategoryFortitudeMeta, "FORT"},
}

// Prefix returns the common code prefix for c, or "" if c is not a known
// category.
func (c Category) Prefix() string {
	for _, cp := range categoryPrefixes {
		if cp.category == c {
			return cp.prefix
		}
	}
	return ""
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// AllCategories returns every known category, in a stable order.
func AllCategories() []Category {
	out := make([]Category, len(categoryPrefixes))
	for i, cp := range categoryPrefixes {
		out[i] = cp.category
	}
	return out
}

// ParseCode splits a rule code into its category and suffix by longest
// matching prefix, e.g. "MOD014" -> (CategoryModernisation, "014"). Returns
// false if no category prefix matches.
func ParseCode(code string) (Category, string, bool) {
	code = strings.TrimSpace(code)
	best := -1
	var bestCat Category
	for _, cp := range categoryPrefixes {
		if strings.HasPrefix(code, cp.prefix) && len(cp.prefix) > best {
			best = len(cp.prefix)
			bestCat = cp.category
		}
	}
	if best < 0 {
		return "", "", false
	}
	return bestCat, code[best:], true
}

// ValidateCategoryDomain returns an error if the prefix table contains a
// duplicate prefix, and nil otherwise. Nothing in this module calls it; with
// the fixed table above it always returns nil, and it documents and defends
// the uniqueness invariant.
func ValidateCategoryDomain() error {
	seen := make(map[string]Category, len(categoryPrefixes))
	prefixes := make([]string, 0, len(categoryPrefixes))
	for _, cp := range categoryPrefixes {
		if other, ok := seen[cp.prefix]; ok {
			return fmt.Errorf("rules: duplicate category prefix %q used by %s and %s", cp.prefix, other, cp.category)
		}
		seen[cp.prefix] = cp.category
		prefixes = append(prefixes, cp.prefix)
	}
	sort.Strings(prefixes)
	return nil
}
