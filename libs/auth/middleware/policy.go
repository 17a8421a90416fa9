package middleware

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// defaultPolicies maps each role to the API areas it may reach
var defaultPolicies = [][]string{
	{"ADMIN", "/api/admin/*", "^(GET|POST|PUT|DELETE)$"},
	{"STUDENT", "/api/student/*", "^(GET|POST)$"},
	{"MENTOR", "/api/mentor/*", "^GET$"},
}

// NewRoleEnforcer builds an in-memory casbin enforcer loaded with the role policies
func NewRoleEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("failed to add policies: %w", err)
	}

	return e, nil
}
