package core

import "formcore/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in invariant set.
// The rules run on every transaction commit and block violations structurally,
// independent of which service path produced the mutation.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(OptionItemIntegrityRule())
	engine.Register(GovernanceTransitionRule())
	return engine
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
