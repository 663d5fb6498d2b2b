package domain

import (
	"fmt"
	"slices"
	"strings"
)

type Scope string

const (
	ScopeReader Scope = "READER" // read threads and messages
	ScopeWriter Scope = "WRITER" // create threads, post/edit/delete own messages
	ScopeEditor Scope = "EDITOR" // lock and pin threads
)

type Role string

const (
	RoleBoardUser  Role = "BOARDUSER"
	RoleBoardAdmin Role = "BOARDADMIN"
)

var roleScopes = map[Role][]Scope{
	RoleBoardUser:  {ScopeReader, ScopeWriter},
	RoleBoardAdmin: {ScopeReader, ScopeWriter, ScopeEditor},
}

func ParseScope(s string) (Scope, error) {
	switch scope := Scope(strings.ToUpper(s)); scope {
	case ScopeReader, ScopeWriter, ScopeEditor:
		return scope, nil
	default:
		return "", fmt.Errorf("unknown scope %q", s)
	}
}

// RoleScopes returns the scopes granted by a role, nil for unknown roles.
func RoleScopes(role Role) []Scope {
	return roleScopes[Role(strings.ToUpper(string(role)))]
}

// ExpandScopes merges explicit scopes with the scopes of every role.
// Unknown names are skipped. The result is sorted and deduplicated.
func ExpandScopes(roles []string, scopes []string) []Scope {
	var out []Scope
	for _, r := range roles {
		out = append(out, RoleScopes(Role(r))...)
	}
	for _, s := range scopes {
		if scope, err := ParseScope(s); err == nil {
			out = append(out, scope)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
