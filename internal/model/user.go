package model

import (
	"fmt"
	"sort"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleLeader Role = "leader"
	RoleUser   Role = "user"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:  {},
	RoleEditor: {},
	RoleLeader: {},
	RoleUser:   {},
}

// ParseRole accepts only the four platform roles.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := knownRoles[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleSet is the set of roles a caller holds.
type RoleSet []Role

func NewRoleSet(roles ...Role) RoleSet {
	seen := make(map[Role]struct{}, len(roles))
	out := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s RoleSet) Has(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// Intersects reports whether the set shares at least one role with allowed.
func (s RoleSet) Intersects(allowed ...Role) bool {
	for _, a := range allowed {
		if s.Has(a) {
			return true
		}
	}
	return false
}

// Policy decides access from a caller's role set.
type Policy func(RoleSet) bool

// AnyOf builds a policy satisfied by any of the listed roles.
func AnyOf(roles ...Role) Policy {
	return func(s RoleSet) bool { return s.Intersects(roles...) }
}

var (
	CanManageContent = AnyOf(RoleAdmin, RoleEditor)
	CanViewReports   = AnyOf(RoleAdmin, RoleLeader)
	CanManageUsers   = AnyOf(RoleAdmin)
	CanLearn         = AnyOf(RoleAdmin, RoleEditor, RoleLeader, RoleUser)
)

// swagger:model User
type User struct {
	BaseModel
	Name      string          `gorm:"size:100;not null" json:"name"`
	Email     string          `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string          `gorm:"size:100;not null" json:"-"`
	Avatar    string          `gorm:"size:255" json:"avatar"`
	Disabled  bool            `gorm:"default:false" json:"disabled"`
	LastLogin *time.Time      `json:"lastLogin,omitempty"`
	Grants    []UserRoleGrant `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Roles flattens the user's grants; every account is at least a user.
func (u *User) Roles() RoleSet {
	roles := []Role{RoleUser}
	for _, g := range u.Grants {
		roles = append(roles, g.Role)
	}
	return NewRoleSet(roles...)
}

type UserRoleGrant struct {
	Record
	UserID uint `gorm:"not null;uniqueIndex:idx_user_role" json:"userId"`
	Role   Role `gorm:"size:20;not null;uniqueIndex:idx_user_role" json:"role"`
}

func (UserRoleGrant) TableName() string {
	return "user_roles"
}
