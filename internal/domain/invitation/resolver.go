package invitation

import (
	"context"
	"fmt"
	"strings"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

// Resolution is the outcome of resolving a username-or-email input.
type Resolution struct {
	// UserOrEmail echoes the raw input.
	UserOrEmail string

	// InvitedUser is set when the input matched an existing user.
	InvitedUser *model.User

	// Email is the literal input when no user matched.
	Email string
}

// Candidate returns the invitee identity used by validation.
func (r *Resolution) Candidate() Candidate {
	if r.InvitedUser != nil {
		id := r.InvitedUser.ID
		return Candidate{InvitedUserID: &id}
	}
	return Candidate{Email: r.Email}
}

// Resolver turns free text into either a known user or an email address.
type Resolver struct {
	users outbound.UserDirectoryPort
}

// NewResolver creates a new resolver.
func NewResolver(users outbound.UserDirectoryPort) *Resolver {
	return &Resolver{users: users}
}

// Resolve looks the input up as a username or email.
func (r *Resolver) Resolve(ctx context.Context, userOrEmail string) (*Resolution, error) {
	res := &Resolution{UserOrEmail: userOrEmail}

	lookup := strings.TrimSpace(userOrEmail)
	if lookup != "" {
		user, err := r.users.FindByUsernameOrEmail(ctx, lookup)
		if err != nil {
			return nil, fmt.Errorf("resolve invitee: %w", err)
		}
		if user != nil {
			res.InvitedUser = user
			return res, nil
		}
	}

	res.Email = userOrEmail
	return res, nil
}
