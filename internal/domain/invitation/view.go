package invitation

import (
	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/inbound"
)

// toOutput builds the API representation of an invitation.
// target may be nil when the group no longer exists.
func toOutput(inv *model.Invitation, target *model.Target) *inbound.InvitationOutput {
	out := &inbound.InvitationOutput{
		ID:            inv.ID,
		UserID:        inv.InviterID,
		InvitedUserID: inv.InvitedUserID,
		Role:          inv.Role,
		Email:         inv.Email,
		Status:        inv.Status,
		CreatedAt:     inv.CreatedAt,
		AcceptedAt:    inv.AcceptedAt,
	}

	if target != nil {
		summary := &inbound.TargetSummary{
			Permalink: target.Permalink(),
			Name:      target.Name(),
		}
		switch target.Kind {
		case model.TargetKindProject:
			out.Project = summary
		case model.TargetKindOrganization:
			out.Organization = summary
		}
	}

	return out
}
