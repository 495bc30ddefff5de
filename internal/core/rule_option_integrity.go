package core

import (
	"context"
	"fmt"

	"formcore/pkg/domain"
)

// OptionItemIntegrityRule blocks commits that would leave a dictionary in an
// inconsistent shape: unknown item statuses, duplicate values, or merge
// pointers that do not target a live item in the same set.
func OptionItemIntegrityRule() domain.Rule {
	return optionItemIntegrityRule{}
}

type optionItemIntegrityRule struct{}

var validItemStatuses = toSet(
	string(domain.OptionItemStaging),
	string(domain.OptionItemActive),
	string(domain.OptionItemDeprecated),
)

func (optionItemIntegrityRule) Name() string { return "option_item_integrity" }

func (optionItemIntegrityRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityOptionSet {
			continue
		}
		set, ok := change.After.(domain.OptionSet)
		if !ok {
			continue
		}
		res.Merge(checkSetIntegrity(set))
	}
	return res, nil
}

func checkSetIntegrity(set domain.OptionSet) domain.Result {
	res := domain.Result{}
	block := func(message string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "option_item_integrity",
			Severity: domain.SeverityBlock,
			Message:  message,
			Entity:   domain.EntityOptionSet,
			EntityID: set.ID,
		})
	}

	seen := map[string]domain.OptionItem{}
	for _, item := range set.Items {
		if _, dup := seen[item.Value]; dup {
			block(fmt.Sprintf("duplicate item value %s in set %s", item.Value, set.Code))
		}
		seen[item.Value] = item
		if _, valid := validItemStatuses[string(item.Status)]; !valid {
			block(fmt.Sprintf("item %s has invalid status %s", item.Value, item.Status))
		}
		if item.MergedInto != "" && item.Status != domain.OptionItemDeprecated {
			block(fmt.Sprintf("item %s is merged into %s but not deprecated", item.Value, item.MergedInto))
		}
	}
	for _, item := range set.Items {
		if item.MergedInto == "" {
			continue
		}
		target, ok := seen[item.MergedInto]
		if !ok {
			block(fmt.Sprintf("item %s merged into unknown value %s", item.Value, item.MergedInto))
			continue
		}
		if target.Status != domain.OptionItemActive {
			block(fmt.Sprintf("item %s merged into %s whose status is %s", item.Value, item.MergedInto, target.Status))
		}
	}
	return res
}
