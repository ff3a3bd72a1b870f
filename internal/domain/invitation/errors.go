package invitation

import "errors"

// Validation errors. Their messages are the user facing messages.
var (
	ErrMissingTarget       = errors.New("must belong to a project")
	ErrUnauthorizedInviter = errors.New("must belong to a valid user")
	ErrAlreadyMember       = errors.New("is already a member of the project")
	ErrDuplicateInvitation = errors.New("already has a pending invitation")
	ErrInvalidIdentifier   = errors.New("is not a valid username or email")
)

// Domain errors for the invitation module.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidTargetKind    = errors.New("invalid target kind")
	ErrInvalidRole          = errors.New("invalid role")
	ErrTargetNotFound       = errors.New("target not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")
	ErrInvitationNotForYou  = errors.New("invitation is not for you")
	ErrForbidden            = errors.New("forbidden")
)
