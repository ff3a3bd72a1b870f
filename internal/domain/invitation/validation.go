package invitation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/uniedit/invite-server/internal/model"
)

// FieldUserOrEmail is the request field that identity errors are attached to.
const FieldUserOrEmail = "user_or_email"

var emailValidator = validator.New()

// isEmail reports whether s is a syntactically valid email address.
func isEmail(s string) bool {
	if s == "" {
		return false
	}
	return emailValidator.Var(s, "required,email") == nil
}

// Candidate is the resolved invitee of an invitation being created.
type Candidate struct {
	InvitedUserID *uuid.UUID
	Email         string
}

// Facts are the storage observations the validation rules decide on.
// Only the facts reachable from the evaluated rules need to be populated.
type Facts struct {
	Target         *model.Target
	Inviter        *model.User
	InviterIsAdmin bool

	InviteeIsMember   bool
	HasPendingForUser bool
	HasOpenForEmail   bool
}

// ValidationResult holds at most one error per slot.
// Target and Inviter are base errors; UserOrEmail is attached to the user_or_email field.
type ValidationResult struct {
	Target      error
	Inviter     error
	UserOrEmail error
}

// Valid returns true if no rule failed.
func (r ValidationResult) Valid() bool {
	return r.Target == nil && r.Inviter == nil && r.UserOrEmail == nil
}

// Base returns the messages of the invitation level errors.
func (r ValidationResult) Base() []string {
	base := make([]string, 0, 2)
	if r.Target != nil {
		base = append(base, r.Target.Error())
	}
	if r.Inviter != nil {
		base = append(base, r.Inviter.Error())
	}
	return base
}

// Fields returns the messages of the field level errors keyed by field.
func (r ValidationResult) Fields() map[string][]string {
	fields := make(map[string][]string)
	if r.UserOrEmail != nil {
		fields[FieldUserOrEmail] = []string{r.UserOrEmail.Error()}
	}
	return fields
}

// Err returns the result as an error, or nil if valid.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationErrors{Result: r}
}

// ValidationErrors is returned when an invitation fails validation.
// errors.Is matches each failed rule's sentinel.
type ValidationErrors struct {
	Result ValidationResult
}

func (e *ValidationErrors) Error() string {
	parts := make([]string, 0, 3)
	for _, msg := range e.Result.Base() {
		parts = append(parts, msg)
	}
	if e.Result.UserOrEmail != nil {
		parts = append(parts, FieldUserOrEmail+" "+e.Result.UserOrEmail.Error())
	}
	return "invitation invalid: " + strings.Join(parts, "; ")
}

// Unwrap exposes the individual rule errors.
func (e *ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, 3)
	for _, err := range []error{e.Result.Target, e.Result.Inviter, e.Result.UserOrEmail} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Validate applies the invitation rules in order.
// A missing target stops evaluation; an unauthorized inviter does not.
func Validate(c Candidate, f Facts) ValidationResult {
	var result ValidationResult

	if f.Target == nil {
		result.Target = ErrMissingTarget
		return result
	}

	if f.Inviter == nil || f.Inviter.IsDeleted() || !f.InviterIsAdmin {
		result.Inviter = ErrUnauthorizedInviter
	}

	if c.InvitedUserID != nil {
		switch {
		case f.InviteeIsMember:
			result.UserOrEmail = ErrAlreadyMember
		case f.HasPendingForUser:
			result.UserOrEmail = ErrDuplicateInvitation
		}
		return result
	}

	switch {
	case !isEmail(c.Email):
		result.UserOrEmail = ErrInvalidIdentifier
	case f.HasOpenForEmail:
		result.UserOrEmail = ErrDuplicateInvitation
	}
	return result
}
