package auth

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleAnonymous = "anonymous"
	RoleUser      = "user"
)

// Resources
const (
	ResourceToken        = "token"
	ResourceUser         = "user"
	ResourceProfile      = "profile"
	ResourceRecipe       = "recipe"
	ResourceIngredient   = "ingredient"
	ResourceFavorite     = "favorite"
	ResourceShoppingCart = "shopping_cart"
	ResourceSubscription = "subscription"
)

// Actions
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Ownership of the target object relative to the requester.
const (
	OwnerAny   = "any"
	OwnerSelf  = "self"
	OwnerOther = "other"
)

const policyModel = `
[request_definition]
r = sub, obj, act, own

[policy_definition]
p = sub, obj, act, own

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act && (p.own == "any" || r.own == p.own)
`

// Authenticated users inherit everything anonymous visitors can do.
const policyRules = `
p, anonymous, token, create, any
p, anonymous, user, create, any
p, anonymous, user, read, any
p, anonymous, recipe, read, any
p, anonymous, ingredient, read, any

p, user, token, delete, any
p, user, profile, read, self
p, user, profile, update, self
p, user, recipe, create, any
p, user, recipe, update, self
p, user, recipe, delete, self
p, user, favorite, create, any
p, user, favorite, delete, any
p, user, shopping_cart, read, any
p, user, shopping_cart, create, any
p, user, shopping_cart, delete, any
p, user, subscription, read, any
p, user, subscription, create, any
p, user, subscription, delete, any

g, user, anonymous
`

// Policy answers access questions for the API. It is safe for concurrent use.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if err := loadRules(enforcer, policyRules); err != nil {
		return nil, err
	}
	return &Policy{enforcer: enforcer}, nil
}

func loadRules(enforcer *casbin.SyncedEnforcer, rules string) error {
	for _, line := range strings.Split(rules, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		var err error
		switch {
		case parts[0] == "p" && len(parts) == 5:
			_, err = enforcer.AddPolicy(parts[1], parts[2], parts[3], parts[4])
		case parts[0] == "g" && len(parts) == 3:
			_, err = enforcer.AddGroupingPolicy(parts[1], parts[2])
		default:
			err = fmt.Errorf("malformed rule %q", line)
		}
		if err != nil {
			return fmt.Errorf("failed to add rule %q: %w", line, err)
		}
	}
	return nil
}

// Allowed reports whether role may perform action on resource with the given ownership.
func (p *Policy) Allowed(role, resource, action, owner string) bool {
	ok, err := p.enforcer.Enforce(role, resource, action, owner)
	return err == nil && ok
}

// RoleFor maps a possibly anonymous user id to a policy role.
func RoleFor(userID uint) string {
	if userID == 0 {
		return RoleAnonymous
	}
	return RoleUser
}

// Ownership compares the requester with the owner of an object.
func Ownership(requesterID, ownerID uint) string {
	if requesterID != 0 && requesterID == ownerID {
		return OwnerSelf
	}
	return OwnerOther
}
