package cmd

import (
	// Registering a rule package's init() with the default registry is the
	// only way a rule body becomes reachable from the CLI; blank-import
	// every implementation package here rather than in the library code,
	// so that importing internal/rules never pulls in rule bodies.
	_ "github.com/fortitude-sh/fortitude/internal/rulesimpl/meta"
	_ "github.com/fortitude-sh/fortitude/internal/rulesimpl/stable"

	"github.com/fortitude-sh/fortitude/internal/rules"
)

func registry() *rules.Registry { return rules.DefaultRegistry() }
