package domain

import "slices"

// User is an already authenticated identity attached to a request.
type User struct {
	Id     UserId
	Scopes []Scope
	Admin  bool
}

func (u *User) Subject() UserId {
	return u.Id
}

func (u *User) HasScope(scope Scope) bool {
	return slices.Contains(u.Scopes, scope)
}

func (u *User) IsAdmin() bool {
	return u.Admin
}
