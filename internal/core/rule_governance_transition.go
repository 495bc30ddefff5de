package core

import (
	"context"
	"fmt"

	"formcore/pkg/domain"
)

// GovernanceTransitionRule blocks illegal state transitions on the reviewable
// entities: change requests and submissions never leave their terminal
// states, drafts never change after approval, and every status stays within
// its enum.
func GovernanceTransitionRule() domain.Rule {
	return governanceTransitionRule{}
}

type governanceTransitionRule struct{}

type transitionMachine struct {
	entity    domain.EntityType
	label     string
	terminal  map[string]struct{}
	valid     map[string]struct{}
	extractor func(payload any) (id string, state string, ok bool)
}

var transitionMachines = map[domain.EntityType]transitionMachine{
	domain.EntityOptionRequest: {
		entity:   domain.EntityOptionRequest,
		label:    "option request",
		terminal: toSet(string(domain.RequestApproved), string(domain.RequestRejected)),
		valid: toSet(
			string(domain.RequestPending),
			string(domain.RequestApproved),
			string(domain.RequestRejected),
		),
		extractor: func(payload any) (string, string, bool) {
			r, ok := payload.(domain.OptionRequest)
			if !ok {
				return "", "", false
			}
			return r.ID, string(r.Status), true
		},
	},
	domain.EntityOptionSetDraft: {
		entity:   domain.EntityOptionSetDraft,
		label:    "option set draft",
		terminal: toSet(string(domain.DraftApproved)),
		valid: toSet(
			string(domain.DraftEditing),
			string(domain.DraftPendingReview),
			string(domain.DraftApproved),
			string(domain.DraftRejected),
		),
		extractor: func(payload any) (string, string, bool) {
			d, ok := payload.(domain.OptionSetDraft)
			if !ok {
				return "", "", false
			}
			return d.ID, string(d.Status), true
		},
	},
	domain.EntityTemplateDraft: {
		entity:   domain.EntityTemplateDraft,
		label:    "template draft",
		terminal: toSet(string(domain.DraftApproved)),
		valid: toSet(
			string(domain.DraftEditing),
			string(domain.DraftPendingReview),
			string(domain.DraftApproved),
			string(domain.DraftRejected),
		),
		extractor: func(payload any) (string, string, bool) {
			d, ok := payload.(domain.TemplateDraft)
			if !ok {
				return "", "", false
			}
			return d.ID, string(d.Status), true
		},
	},
	domain.EntitySubmission: {
		entity:   domain.EntitySubmission,
		label:    "submission",
		terminal: toSet(string(domain.SubmissionCancelled)),
		valid: toSet(
			string(domain.SubmissionActive),
			string(domain.SubmissionCancelled),
		),
		extractor: func(payload any) (string, string, bool) {
			s, ok := payload.(domain.Submission)
			if !ok {
				return "", "", false
			}
			return s.ID, string(s.Status), true
		},
	},
}

func (governanceTransitionRule) Name() string { return "governance_transition" }

func (governanceTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		machine, ok := transitionMachines[change.Entity]
		if !ok {
			continue
		}

		afterID, newState, ok := machine.extractor(change.After)
		if ok {
			if _, valid := machine.valid[newState]; !valid {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "governance_transition",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("%s %s is set to invalid state %s", machine.label, afterID, newState),
					Entity:   machine.entity,
					EntityID: afterID,
				})
				continue
			}
		}

		beforeID, beforeState, ok := machine.extractor(change.Before)
		if !ok {
			continue
		}
		if _, terminal := machine.terminal[beforeState]; !terminal {
			continue
		}
		// Deletes carry no After payload. Removing a terminal draft is legal;
		// mutating a terminal record is not.
		if _, _, ok := machine.extractor(change.After); !ok {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "governance_transition",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("cannot modify %s %s in terminal state %s", machine.label, beforeID, beforeState),
			Entity:   machine.entity,
			EntityID: beforeID,
		})
	}
	return res, nil
}
