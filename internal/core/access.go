package core

import (
	"strings"

	"formcore/pkg/domain"
)

// Role classifies a verified principal.
type Role string

// Principal roles. Staff submit data, leaders propose governance changes,
// admins review them.
const (
	RoleStaff  Role = "staff"
	RoleLeader Role = "leader"
	RoleAdmin  Role = "admin"
)

// Actor is a pre-authorized principal: the access gate resolves it once per
// request and downstream components trust it instead of re-deriving roles.
type Actor struct {
	Email string
	Role  Role
}

// AccessPolicy resolves a verified email into an Actor. Role assignments are
// configuration, loaded once at startup and never mutated in process.
type AccessPolicy struct {
	orgDomain string
	admins    map[string]struct{}
	leaders   map[string]struct{}
}

// NewAccessPolicy builds a policy for the given organization email domain and
// allow-lists. Emails are matched case-insensitively.
func NewAccessPolicy(orgDomain string, adminEmails, leaderEmails []string) *AccessPolicy {
	p := &AccessPolicy{
		orgDomain: strings.ToLower(strings.TrimPrefix(orgDomain, "@")),
		admins:    make(map[string]struct{}, len(adminEmails)),
		leaders:   make(map[string]struct{}, len(leaderEmails)),
	}
	for _, e := range adminEmails {
		p.admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	for _, e := range leaderEmails {
		p.leaders[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return p
}

// Resolve maps a verified email to an Actor, rejecting principals outside the
// organization domain.
func (p *AccessPolicy) Resolve(email string) (Actor, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return Actor{}, domain.Authorizationf("missing principal email")
	}
	if p.orgDomain != "" && !strings.HasSuffix(normalized, "@"+p.orgDomain) {
		return Actor{}, domain.Authorizationf("email %s is outside the organization domain", normalized)
	}
	role := RoleStaff
	if _, ok := p.leaders[normalized]; ok {
		role = RoleLeader
	}
	if _, ok := p.admins[normalized]; ok {
		role = RoleAdmin
	}
	return Actor{Email: normalized, Role: role}, nil
}

// requireAdmin gates review and catalog mutations.
func requireAdmin(actor Actor) error {
	if actor.Role != RoleAdmin {
		return domain.Authorizationf("%s is not an admin", actor.Email)
	}
	return nil
}

// requireLeader gates proposal creation. Admins qualify as leaders.
func requireLeader(actor Actor) error {
	if actor.Role != RoleLeader && actor.Role != RoleAdmin {
		return domain.Authorizationf("%s is not a leader", actor.Email)
	}
	return nil
}
