package cmd

import (
	"fmt"
	"strings"
)

// unifiedDiff renders a minimal unified diff between before and after for
// --diff output. The pack's only diff-shaped dependency
// (bluekeyes/go-gitdiff) parses existing patches; it has no generator, so
// this hand-rolled line diff fills that one gap (see DESIGN.md).
func unifiedDiff(path string, before, after []byte) string {
	a := strings.Split(string(before), "\n")
	b := strings.Split(string(after), "\n")
	if len(a) > 0 && a[len(a)-1] == "" {
		a = a[:len(a)-1]
	}
	if len(b) > 0 && b[len(b)-1] == "" {
		b = b[:len(b)-1]
	}

	ops := diffLines(a, b)
	if len(ops) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, path)
	for _, op := range ops {
		switch op.kind {
		case opEqual:
			fmt.Fprintf(&sb, " %s\n", op.line)
		case opDelete:
			fmt.Fprintf(&sb, "-%s\n", op.line)
		case opInsert:
			fmt.Fprintf(&sb, "+%s\n", op.line)
		}
	}
	return sb.String()
}

type diffOpKind int

const (
	opEqual diffOpKind = iota
	opDelete
	opInsert
)

type diffOp struct {
	kind diffOpKind
	line string
}

// diffLines is a textbook O(n*m) longest-common-subsequence line diff; fine
// for the source-file sizes fortitude analyses (bounded well under the
// 4 GiB analyser ceiling in practice by what a human edits as one file).
func diffLines(a, b []string) []diffOp {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var ops []diffOp
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			ops = append(ops, diffOp{opEqual, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, diffOp{opDelete, a[i]})
			i++
		default:
			ops = append(ops, diffOp{opInsert, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		ops = append(ops, diffOp{opDelete, a[i]})
	}
	for ; j < m; j++ {
		ops = append(ops, diffOp{opInsert, b[j]})
	}

	hasChange := false
	for _, op := range ops {
		if op.kind != opEqual {
			hasChange = true
			break
		}
	}
	if !hasChange {
		return nil
	}
	return ops
}
