package service

import (
	"fmt"

	"github.com/morphcute/mlbb-gifters/internal/model"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
)

// Actor is the capability-tagged caller context. It is built once by the
// session middleware and passed into every mutating core operation; the
// authorization check happens at a single boundary instead of ad hoc role
// tests scattered per operation.
type Actor struct {
	UserID string
	Role   model.Role
}

// rbacModel matches (role, object, action) triples, with role inheritance via
// the g relation.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// AuthorizationService answers "may this actor perform this action" for every
// core operation.
type AuthorizationService struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizationService builds the casbin enforcer with the fixed
// marketplace policy: three roles, ADMIN inheriting GIFTER.
func NewAuthorizationService() (*AuthorizationService, error) {
	m, err := casbinmodel.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RBAC model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize enforcer: %w", err)
	}

	policies := [][]string{
		// Gifter capabilities (ADMIN inherits these via the g rule below).
		{string(model.RoleGifter), "orders", "follow"},
		{string(model.RoleGifter), "orders", "send"},
		{string(model.RoleGifter), "orders", "list_own"},
		{string(model.RoleGifter), "slots", "add_own"},
		{string(model.RoleGifter), "slots", "view_own"},

		// Admin-only capabilities.
		{string(model.RoleAdmin), "orders", "assign"},
		{string(model.RoleAdmin), "orders", "refund"},
		{string(model.RoleAdmin), "orders", "invalidate"},
		{string(model.RoleAdmin), "orders", "delete"},
		{string(model.RoleAdmin), "orders", "list"},
		{string(model.RoleAdmin), "slots", "add"},
		{string(model.RoleAdmin), "slots", "list"},
		{string(model.RoleAdmin), "skins", "manage"},
		{string(model.RoleAdmin), "users", "ban"},
		{string(model.RoleAdmin), "users", "manage"},
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("failed to add policies: %w", err)
	}
	if _, err := e.AddGroupingPolicy(string(model.RoleAdmin), string(model.RoleGifter)); err != nil {
		return nil, fmt.Errorf("failed to add role inheritance: %w", err)
	}

	return &AuthorizationService{enforcer: e}, nil
}

// Authorize returns ErrForbidden unless the actor's role permits the action
// on the object. Checked before any state access.
func (s *AuthorizationService) Authorize(actor Actor, object, action string) error {
	allowed, err := s.enforcer.Enforce(string(actor.Role), object, action)
	if err != nil {
		return fmt.Errorf("authorization check failed: %w", err)
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}
