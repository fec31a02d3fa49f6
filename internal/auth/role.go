package auth

import (
	"fmt"
	"strings"
)

// Role decides which dashboard a user sees.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Roles lists every role in sign-up form order.
func Roles() []Role {
	return []Role{RoleTeacher, RoleStudent}
}

// ParseRole converts a form or token value to a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleTeacher, RoleStudent:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Title is the role as shown in page headings.
func (r Role) Title() string {
	switch r {
	case RoleTeacher:
		return "Teacher"
	case RoleStudent:
		return "Student"
	default:
		return string(r)
	}
}
