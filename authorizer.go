package kebapi

import (
	"strings"
)

// Requirement is an authorization rule evaluated against verified claims.
// The set is a closed enum on purpose: two requirement kinds composed from
// three predicates cover every route, so there is no handler registry.
type Requirement int

const (
	// CanReadUser allows admins and the resource owner
	CanReadUser Requirement = iota
	// CanUpdateUser allows admins and the resource owner
	CanUpdateUser
	// CanReadUsersHome allows admins and anyone with the User role
	CanReadUsersHome
	// IsInRoleAdmin allows admins only
	IsInRoleAdmin
)

const ownedPathPrefix = "users"

// Authorizer decides who can do what. It consumes claims that have already
// been validated upstream and never re-verifies tokens; a missing or empty
// claim is an untrusted identity and resolves to deny, never to an error.
type Authorizer struct{}

// NewAuthorizer returns a new Authorizer
func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// IsAdmin checks if the claims carry the Admin role
func (a *Authorizer) IsAdmin(claims AuthClaims) bool {
	return claims != nil && claims.HasRole(string(RoleAdmin))
}

// IsUser checks if the claims carry the User role
func (a *Authorizer) IsUser(claims AuthClaims) bool {
	return claims != nil && claims.HasRole(string(RoleUser))
}

// IsOwner checks if the claims own the resource at the given path. The model
// is: anything under "/users/{id}" is owned by that user. Claims are strings
// by definition, so the id comparison stays a string comparison.
func (a *Authorizer) IsOwner(claims AuthClaims, path string) bool {
	if claims == nil {
		return false
	}

	resourceID := ownedResourceID(path)
	if resourceID == "" {
		return false
	}

	userID := claims.UserID()
	if userID == "" {
		return false
	}

	return userID == resourceID
}

// Can evaluates a requirement for the given claims and resource path
func (a *Authorizer) Can(claims AuthClaims, requirement Requirement, path string) bool {
	switch requirement {
	case CanReadUser, CanUpdateUser:
		return a.IsAdmin(claims) || a.IsOwner(claims, path)
	case CanReadUsersHome:
		return a.IsAdmin(claims) || a.IsUser(claims)
	case IsInRoleAdmin:
		return a.IsAdmin(claims)
	default:
		return false
	}
}

// ownedResourceID extracts the id segment from an owned-resource path,
// returning "" when the path does not have the /users/{id} shape.
func ownedResourceID(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[0] != ownedPathPrefix {
		return ""
	}
	return segments[1]
}
