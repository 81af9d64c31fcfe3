package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/fortitude-sh/fortitude/internal/rules"
	"github.com/fortitude-sh/fortitude/internal/selector"
)

func explainCommand() *cli.Command {
	return &cli.Command{
		Name:      "explain",
		Usage:     "Print a rule's full documentation",
		ArgsUsage: "[CODE|NAME|ALL...]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			reg := registry()
			tokens := cmd.Args().Slice()
			if len(tokens) == 0 {
				tokens = []string{"ALL"}
			}

			var toPrint []rules.Rule
			for _, tok := range tokens {
				sel, err := selector.Parse(reg, tok)
				if err != nil {
					fmt.Fprintf(os.Stderr, "fortitude: %v\n", err)
					return cli.Exit("", ExitViolations)
				}
				toPrint = append(toPrint, matchRules(reg, sel)...)
			}

			sort.Slice(toPrint, func(i, j int) bool {
				return toPrint[i].Metadata().Code() < toPrint[j].Metadata().Code()
			})

			seen := map[string]bool{}
			for _, r := range toPrint {
				m := r.Metadata()
				if seen[m.Code()] {
					continue
				}
				seen[m.Code()] = true
				printExplanation(m)
			}
			return nil
		},
	}
}

func printExplanation(m rules.RuleMetadata) {
	fmt.Printf("%s (%s)\n", m.Code(), m.Name)
	fmt.Printf("  group: %s\n", m.Group)
	fmt.Printf("  fix:   %s\n", m.FixAvailability)
	fmt.Printf("  %s\n\n", m.Summary)
}

// matchRules expands a selector into the concrete rules it names,
// mirroring internal/config's own selector-to-rules expansion (duplicated
// here rather than exported from config, since explain needs it without
// resolving a full run's Settings).
func matchRules(reg *rules.Registry, sel selector.Selector) []rules.Rule {
	switch sel.Kind {
	case selector.KindAll:
		return reg.All()
	case selector.KindCategory:
		return reg.ByCategory(sel.Category)
	default:
		var out []rules.Rule
		for _, r := range reg.ByCategory(sel.Category) {
			suffix := r.Metadata().Suffix
			if len(sel.Code) <= len(suffix) && suffix[:len(sel.Code)] == sel.Code {
				out = append(out, r)
			}
		}
		return out
	}
}
