// Package access decides whether an authenticated actor may use a role's operations.
package access

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
)

// Actor is the authenticated caller, loaded fresh from the users table on every request.
type Actor struct {
	ID         uuid.UUID
	Username   string
	Role       models.Role
	Active     bool
	FirstLogin bool
}

// ActorFromUser builds an Actor from a stored user.
func ActorFromUser(u *models.User) Actor {
	return Actor{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		Active:     u.Active,
		FirstLogin: u.FirstLogin,
	}
}

// Decision is either Allowed or Denied.
type Decision interface {
	decision()
}

type Allowed struct{}

type Denied struct {
	Reason string
}

func (Allowed) decision() {}
func (Denied) decision()  {}

// Authorize allows the actor when the account is active and its role is one of required.
// With no required roles any active actor is allowed.
func Authorize(actor Actor, required ...models.Role) Decision {
	if !actor.Active {
		return Denied{Reason: "account is deactivated"}
	}
	if len(required) == 0 {
		return Allowed{}
	}
	for _, r := range required {
		if actor.Role == r {
			return Allowed{}
		}
	}
	names := make([]string, len(required))
	for i, r := range required {
		names[i] = string(r)
	}
	return Denied{Reason: strings.Join(names, " or ") + " role required"}
}

// IsAllowed is a shorthand for callers that only need the boolean.
func IsAllowed(d Decision) bool {
	_, ok := d.(Allowed)
	return ok
}
