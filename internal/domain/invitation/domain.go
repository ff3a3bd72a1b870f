package invitation

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/inbound"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

var tracer = otel.Tracer("invitation")

// Domain implements the invitation domain logic.
type Domain struct {
	invitationDB outbound.InvitationDatabasePort
	memberDB     outbound.MembershipDatabasePort
	targetDB     outbound.TargetDatabasePort
	users        outbound.UserDirectoryPort
	txPort       outbound.TransactionPort
	dispatcher   outbound.NotificationDispatcherPort
	metrics      outbound.InvitationMetricsPort
	resolver     *Resolver
	engine       *Engine
	random       io.Reader
	now          func() time.Time
	cfg          *Config
	logger       *zap.Logger
}

// NewDomain creates a new invitation domain.
func NewDomain(
	invitationDB outbound.InvitationDatabasePort,
	memberDB outbound.MembershipDatabasePort,
	targetDB outbound.TargetDatabasePort,
	users outbound.UserDirectoryPort,
	txPort outbound.TransactionPort,
	dispatcher outbound.NotificationDispatcherPort,
	metrics outbound.InvitationMetricsPort,
	cfg *Config,
	logger *zap.Logger,
) *Domain {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	_ = cfg.Validate()

	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Domain{
		invitationDB: invitationDB,
		memberDB:     memberDB,
		targetDB:     targetDB,
		users:        users,
		txPort:       txPort,
		dispatcher:   dispatcher,
		metrics:      metrics,
		resolver:     NewResolver(users),
		engine:       NewEngine(memberDB, logger),
		random:       rand.Reader,
		now:          time.Now,
		cfg:          cfg,
		logger:       logger,
	}
}

// ========== Creation ==========

// CreateInvitation validates, persists and announces a new invitation.
func (d *Domain) CreateInvitation(ctx context.Context, inviterID uuid.UUID, input *inbound.CreateInvitationInput) (_ *inbound.InvitationOutput, err error) {
	ctx, span := tracer.Start(ctx, "Invitation.Domain.CreateInvitation")
	defer func() { endSpan(span, err) }()

	if input == nil {
		return nil, ErrInvalidRequest
	}
	if !input.TargetKind.IsValid() {
		return nil, ErrInvalidTargetKind
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	if input.OrganizationRole != nil && !input.OrganizationRole.IsValid() {
		return nil, ErrInvalidRole
	}
	span.SetAttributes(
		attribute.String("target.kind", string(input.TargetKind)),
		attribute.String("target.id", input.TargetID.String()),
	)

	target, err := d.loadTarget(ctx, input.TargetKind, input.TargetID)
	if err != nil {
		return nil, err
	}

	resolution, err := d.resolver.Resolve(ctx, input.UserOrEmail)
	if err != nil {
		return nil, err
	}
	candidate := resolution.Candidate()

	facts, err := d.gatherFacts(ctx, target, inviterID, candidate)
	if err != nil {
		return nil, err
	}
	if result := Validate(candidate, facts); !result.Valid() {
		d.recordValidationFailure(result)
		return nil, result.Err()
	}

	now := d.now()
	inv := &model.Invitation{
		ID:            uuid.New(),
		InviterID:     inviterID,
		InvitedUserID: candidate.InvitedUserID,
		Email:         candidate.Email,
		TargetKind:    input.TargetKind,
		TargetID:      input.TargetID,
		Role:          input.Role,
		Status:        model.InvitationStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if input.OrganizationRole != nil {
		inv.Membership.Role = *input.OrganizationRole
	}
	if resolution.InvitedUser != nil && inv.Email == "" {
		inv.Email = resolution.InvitedUser.Email
	}
	if err := ensureToken(inv, d.random); err != nil {
		return nil, err
	}

	err = d.txPort.RunInTransaction(ctx, func(txCtx context.Context) error {
		return d.invitationDB.Create(txCtx, inv)
	})
	if err != nil {
		if errors.Is(err, outbound.ErrDuplicate) {
			result := ValidationResult{UserOrEmail: ErrDuplicateInvitation}
			d.recordValidationFailure(result)
			return nil, result.Err()
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	d.logger.Info("invitation created",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("inviter_id", inviterID.String()),
		zap.String("target_kind", string(inv.TargetKind)),
		zap.String("target_id", inv.TargetID.String()),
		zap.Bool("known_user", inv.InvitedUserID != nil),
	)

	notified := false
	if !input.Silent {
		notified = d.notify(ctx, inv, target, facts.Inviter)
	}
	d.metrics.RecordInvitationCreated(inv.TargetKind, notified)

	out := toOutput(inv, target)
	out.UserOrEmail = resolution.UserOrEmail
	return out, nil
}

// gatherFacts performs only the lookups the validation rules can reach.
func (d *Domain) gatherFacts(ctx context.Context, target *model.Target, inviterID uuid.UUID, c Candidate) (Facts, error) {
	facts := Facts{Target: target}
	if target == nil {
		return facts, nil
	}

	inviter, err := d.users.FindByID(ctx, inviterID)
	if err != nil {
		return facts, fmt.Errorf("find inviter: %w", err)
	}
	facts.Inviter = inviter
	if inviter != nil && !inviter.IsDeleted() {
		if facts.InviterIsAdmin, err = d.isAdmin(ctx, target, inviter.ID); err != nil {
			return facts, err
		}
	}

	if c.InvitedUserID != nil {
		if facts.InviteeIsMember, err = d.isMember(ctx, target, *c.InvitedUserID); err != nil {
			return facts, err
		}
		if facts.InviteeIsMember {
			return facts, nil
		}
		pending, err := d.invitationDB.FindPendingForUser(ctx, target.Kind, target.ID(), *c.InvitedUserID)
		if err != nil {
			return facts, fmt.Errorf("find pending invitation: %w", err)
		}
		facts.HasPendingForUser = pending != nil
		return facts, nil
	}

	if !isEmail(c.Email) {
		return facts, nil
	}
	open, err := d.invitationDB.FindOpenForEmail(ctx, target.Kind, target.ID(), c.Email)
	if err != nil {
		return facts, fmt.Errorf("find open invitation: %w", err)
	}
	facts.HasOpenForEmail = open != nil
	return facts, nil
}

// notify hands the invitation notification to the dispatcher.
// Failures are logged and never fail the creation.
func (d *Domain) notify(ctx context.Context, inv *model.Invitation, target *model.Target, inviter *model.User) bool {
	if d.dispatcher == nil {
		return false
	}

	job := &model.NotificationJob{
		InvitationID: inv.ID,
		Kind:         model.NotificationSignupInvitation,
		Email:        inv.Email,
		TargetKind:   target.Kind,
		TargetName:   target.Name(),
		AcceptURL:    d.acceptURL(inv.Token),
		EnqueuedAt:   d.now(),
	}
	if inv.InvitedUserID != nil {
		job.Kind = model.NotificationProjectInvitation
	}
	if inviter != nil {
		job.InviterName = inviter.DisplayName()
	}

	if err := d.dispatcher.Dispatch(ctx, job); err != nil {
		d.logger.Error("invitation notification dispatch failed",
			zap.String("invitation_id", inv.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.Error(err),
		)
		d.metrics.RecordNotification(job.Kind, "dispatch_failed")
		return false
	}
	return true
}

func (d *Domain) acceptURL(token string) string {
	return strings.TrimRight(d.cfg.BaseURL, "/") + "/invitations/" + token
}

// ========== Acceptance ==========

// AcceptInvitation accepts an invitation on behalf of the invited user.
func (d *Domain) AcceptInvitation(ctx context.Context, invitationID, userID uuid.UUID) (_ *inbound.AcceptanceOutput, err error) {
	ctx, span := tracer.Start(ctx, "Invitation.Domain.AcceptInvitation")
	defer func() { endSpan(span, err) }()

	inv, err := d.findInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	user, err := d.findActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isAddressedTo(inv, user) {
		return nil, ErrInvitationNotForYou
	}

	return d.accept(ctx, inv, user)
}

// AcceptInvitationByToken accepts an invitation identified by its token.
// Email-only invitations can be accepted by any user holding the token.
func (d *Domain) AcceptInvitationByToken(ctx context.Context, token string, userID uuid.UUID) (_ *inbound.AcceptanceOutput, err error) {
	ctx, span := tracer.Start(ctx, "Invitation.Domain.AcceptInvitationByToken")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(token) == "" {
		return nil, ErrInvitationNotFound
	}

	inv, err := d.invitationDB.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}
	user, err := d.findActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if inv.InvitedUserID != nil && *inv.InvitedUserID != user.ID {
		return nil, ErrInvitationNotForYou
	}

	return d.accept(ctx, inv, user)
}

func (d *Domain) accept(ctx context.Context, inv *model.Invitation, user *model.User) (*inbound.AcceptanceOutput, error) {
	if !inv.IsPending() {
		return nil, ErrInvitationNotPending
	}

	target, err := d.loadTarget(ctx, inv.TargetKind, inv.TargetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrTargetNotFound
	}

	var acceptance *Acceptance
	err = d.txPort.RunInTransaction(ctx, func(txCtx context.Context) error {
		ok, err := d.invitationDB.TransitionStatus(txCtx, inv.ID, model.InvitationStatusPending, model.InvitationStatusAccepted)
		if err != nil {
			return fmt.Errorf("update invitation status: %w", err)
		}
		if !ok {
			return ErrInvitationNotPending
		}

		acceptance, err = d.engine.Accept(txCtx, inv, target, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	now := d.now()
	inv.Status = model.InvitationStatusAccepted
	inv.AcceptedAt = &now
	d.metrics.RecordInvitationAccepted(inv.TargetKind)

	d.logger.Info("invitation accepted",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("target_kind", string(inv.TargetKind)),
		zap.String("target_id", inv.TargetID.String()),
	)

	return &inbound.AcceptanceOutput{
		Invitation:         toOutput(inv, target),
		OrganizationMember: acceptance.OrganizationMember,
		ProjectMember:      acceptance.ProjectMember,
	}, nil
}

// isAddressedTo reports whether the invitation was issued to user,
// by account or by the email address of the account.
func isAddressedTo(inv *model.Invitation, user *model.User) bool {
	if inv.InvitedUserID != nil {
		return *inv.InvitedUserID == user.ID
	}
	return inv.Email != "" && strings.EqualFold(strings.TrimSpace(inv.Email), user.Email)
}

// ========== Queries ==========

// GetInvitation returns an invitation visible to the requester.
func (d *Domain) GetInvitation(ctx context.Context, invitationID, requesterID uuid.UUID) (_ *inbound.InvitationOutput, err error) {
	ctx, span := tracer.Start(ctx, "Invitation.Domain.GetInvitation")
	defer func() { endSpan(span, err) }()

	inv, target, err := d.loadEditable(ctx, invitationID, requesterID)
	if err != nil {
		return nil, err
	}
	return toOutput(inv, target), nil
}

// ListInvitations lists the invitations of a target for one of its admins.
func (d *Domain) ListInvitations(ctx context.Context, kind model.TargetKind, targetID, requesterID uuid.UUID, status *model.InvitationStatus, limit, offset int) (_ *inbound.InvitationPage, err error) {
	ctx, span := tracer.Start(ctx, "Invitation.Domain.ListInvitations")
	defer func() { endSpan(span, err) }()

	if !kind.IsValid() {
		return nil, ErrInvalidTargetKind
	}
	if status != nil && !status.IsValid() {
		return nil, ErrInvalidRequest
	}

	target, err := d.loadTarget(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrTargetNotFound
	}

	admin, err := d.isAdmin(ctx, target, requesterID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, ErrForbidden
	}

	if limit <= 0 {
		limit = d.cfg.DefaultListLimit
	}
	if limit > d.cfg.MaxListLimit {
		limit = d.cfg.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	invitations, err := d.invitationDB.FindByTarget(ctx, kind, targetID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	outputs := make([]*inbound.InvitationOutput, 0, len(invitations))
	for _, inv := range invitations {
		outputs = append(outputs, toOutput(inv, target))
	}
	return &inbound.InvitationPage{Items: outputs, Limit: limit, Offset: offset}, nil
}

// RevokeInvitation withdraws a pending invitation.
func (d *Domain) RevokeInvitation(ctx context.Context, invitationID, requesterID uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "Invitation.Domain.RevokeInvitation")
	defer func() { endSpan(span, err) }()

	inv, _, err := d.loadEditable(ctx, invitationID, requesterID)
	if err != nil {
		return err
	}
	if !inv.IsPending() {
		return ErrInvitationNotPending
	}

	ok, err := d.invitationDB.TransitionStatus(ctx, inv.ID, model.InvitationStatusPending, model.InvitationStatusRevoked)
	if err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}
	if !ok {
		return ErrInvitationNotPending
	}

	d.logger.Info("invitation revoked",
		zap.String("invitation_id", inv.ID.String()),
		zap.String("requester_id", requesterID.String()),
	)
	return nil
}

// CanEdit reports whether the user may view or change the invitation.
func (d *Domain) CanEdit(ctx context.Context, invitationID, userID uuid.UUID) (bool, error) {
	inv, err := d.findInvitation(ctx, invitationID)
	if err != nil {
		return false, err
	}
	target, err := d.loadTarget(ctx, inv.TargetKind, inv.TargetID)
	if err != nil {
		return false, err
	}
	admin, err := d.isAdmin(ctx, target, userID)
	if err != nil {
		return false, err
	}
	return CanEdit(inv, userID, admin), nil
}

// ========== Helpers ==========

func (d *Domain) loadEditable(ctx context.Context, invitationID, requesterID uuid.UUID) (*model.Invitation, *model.Target, error) {
	inv, err := d.findInvitation(ctx, invitationID)
	if err != nil {
		return nil, nil, err
	}
	target, err := d.loadTarget(ctx, inv.TargetKind, inv.TargetID)
	if err != nil {
		return nil, nil, err
	}
	admin, err := d.isAdmin(ctx, target, requesterID)
	if err != nil {
		return nil, nil, err
	}
	if !CanEdit(inv, requesterID, admin) {
		return nil, nil, ErrForbidden
	}
	return inv, target, nil
}

func (d *Domain) findInvitation(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	inv, err := d.invitationDB.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	if inv == nil {
		return nil, ErrInvitationNotFound
	}
	return inv, nil
}

func (d *Domain) findActiveUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := d.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil || user.IsDeleted() {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// loadTarget returns nil, nil when the group does not exist.
func (d *Domain) loadTarget(ctx context.Context, kind model.TargetKind, id uuid.UUID) (*model.Target, error) {
	switch kind {
	case model.TargetKindProject:
		project, err := d.targetDB.FindProject(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find project: %w", err)
		}
		if project == nil {
			return nil, nil
		}
		return model.ProjectTarget(project), nil

	case model.TargetKindOrganization:
		org, err := d.targetDB.FindOrganization(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find organization: %w", err)
		}
		if org == nil {
			return nil, nil
		}
		return model.OrganizationTarget(org), nil

	default:
		return nil, nil
	}
}

// isAdmin reports whether the user administers the target.
// Organization admins administer every project of the organization.
func (d *Domain) isAdmin(ctx context.Context, target *model.Target, userID uuid.UUID) (bool, error) {
	if target == nil || userID == uuid.Nil {
		return false, nil
	}

	orgID := target.ID()
	if target.Kind == model.TargetKindProject {
		member, err := d.memberDB.FindProjectMember(ctx, target.Project.ID, userID)
		if err != nil {
			return false, fmt.Errorf("find project member: %w", err)
		}
		if member != nil && member.IsAdmin() {
			return true, nil
		}
		orgID = target.Project.OrganizationID
	}

	member, err := d.memberDB.FindOrganizationMember(ctx, orgID, userID)
	if err != nil {
		return false, fmt.Errorf("find organization member: %w", err)
	}
	return member != nil && member.IsAdmin(), nil
}

func (d *Domain) isMember(ctx context.Context, target *model.Target, userID uuid.UUID) (bool, error) {
	switch target.Kind {
	case model.TargetKindProject:
		member, err := d.memberDB.FindProjectMember(ctx, target.Project.ID, userID)
		if err != nil {
			return false, fmt.Errorf("find project member: %w", err)
		}
		return member != nil, nil
	case model.TargetKindOrganization:
		member, err := d.memberDB.FindOrganizationMember(ctx, target.Organization.ID, userID)
		if err != nil {
			return false, fmt.Errorf("find organization member: %w", err)
		}
		return member != nil, nil
	default:
		return false, nil
	}
}

func (d *Domain) recordValidationFailure(result ValidationResult) {
	for _, err := range []error{result.Target, result.Inviter, result.UserOrEmail} {
		if err != nil {
			d.metrics.RecordValidationFailure(validationReason(err))
		}
	}
}

func validationReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingTarget):
		return "missing_target"
	case errors.Is(err, ErrUnauthorizedInviter):
		return "unauthorized_inviter"
	case errors.Is(err, ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, ErrDuplicateInvitation):
		return "duplicate_invitation"
	case errors.Is(err, ErrInvalidIdentifier):
		return "invalid_identifier"
	default:
		return "unknown"
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

type noopMetrics struct{}

func (noopMetrics) RecordInvitationCreated(model.TargetKind, bool)    {}
func (noopMetrics) RecordValidationFailure(string)                    {}
func (noopMetrics) RecordInvitationAccepted(model.TargetKind)         {}
func (noopMetrics) RecordNotification(model.NotificationKind, string) {}

// Compile-time interface check
var _ inbound.InvitationDomain = (*Domain)(nil)
