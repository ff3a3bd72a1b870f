package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/inbound"
)

// invitationHandler implements inbound.InvitationHttpPort.
type invitationHandler struct {
	domain      inbound.InvitationDomain
	createGuard []gin.HandlerFunc
}

// NewInvitationHandler creates a new invitation HTTP handler.
// createGuard runs before the create endpoints, e.g. a rate limiter.
func NewInvitationHandler(domain inbound.InvitationDomain, createGuard ...gin.HandlerFunc) inbound.InvitationHttpPort {
	return &invitationHandler{domain: domain, createGuard: createGuard}
}

// RegisterRoutes registers invitation routes.
func (h *invitationHandler) RegisterRoutes(r *gin.RouterGroup) {
	create := append(append([]gin.HandlerFunc{}, h.createGuard...), h.CreateInvitation)

	projects := r.Group("/projects/:id/invitations")
	{
		projects.POST("", append([]gin.HandlerFunc{withTarget(model.TargetKindProject)}, create...)...)
		projects.GET("", withTarget(model.TargetKindProject), h.ListInvitations)
	}

	orgs := r.Group("/organizations/:id/invitations")
	{
		orgs.POST("", append([]gin.HandlerFunc{withTarget(model.TargetKindOrganization)}, create...)...)
		orgs.GET("", withTarget(model.TargetKindOrganization), h.ListInvitations)
	}

	invitations := r.Group("/invitations")
	{
		invitations.GET("/:id", h.GetInvitation)
		invitations.DELETE("/:id", h.RevokeInvitation)
		invitations.POST("/:id/accept", h.AcceptInvitation)
		invitations.POST("/token/:token/accept", h.AcceptInvitationByToken)
	}
}

const targetKindKey = "invitation_target_kind"

// withTarget records which kind of group the :id path parameter names.
func withTarget(kind model.TargetKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(targetKindKey, kind)
		c.Next()
	}
}

func targetKind(c *gin.Context) model.TargetKind {
	kind, _ := c.Get(targetKindKey)
	k, _ := kind.(model.TargetKind)
	return k
}

// CreateInvitation invites a user or email address to a project or organization.
//
//	@Summary		Create invitation
//	@Description	Invite an existing user (by username or email) or an email address to a project or organization
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string							true	"Project or organization ID"
//	@Param			request	body		inbound.CreateInvitationInput	true	"Invitation request"
//	@Success		201		{object}	inbound.InvitationOutput
//	@Failure		400		{object}	model.ErrorResponse
//	@Failure		401		{object}	model.ErrorResponse
//	@Failure		404		{object}	model.ErrorResponse
//	@Failure		422		{object}	model.ValidationErrorResponse
//	@Failure		429		{object}	model.ErrorResponse
//	@Router			/projects/{id}/invitations [post]
//	@Router			/organizations/{id}/invitations [post]
func (h *invitationHandler) CreateInvitation(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input inbound.CreateInvitationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    "invalid_request",
			Message: err.Error(),
		})
		return
	}
	input.TargetKind = targetKind(c)
	input.TargetID = targetID

	out, err := h.domain.CreateInvitation(c.Request.Context(), userID, &input)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

// ListInvitations lists the invitations of a project or organization.
//
//	@Summary		List invitations
//	@Tags			Invitations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Project or organization ID"
//	@Param			status	query		string	false	"pending, accepted or revoked"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Offset"
//	@Success		200		{object}	model.ListResponse[inbound.InvitationOutput]
//	@Failure		400		{object}	model.ErrorResponse
//	@Failure		403		{object}	model.ErrorResponse
//	@Router			/projects/{id}/invitations [get]
//	@Router			/organizations/{id}/invitations [get]
func (h *invitationHandler) ListInvitations(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	targetID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var status *model.InvitationStatus
	if s := c.Query("status"); s != "" {
		st := model.InvitationStatus(s)
		if !st.IsValid() {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Code:    "invalid_status",
				Message: "Invalid status filter",
			})
			return
		}
		status = &st
	}

	limit := queryInt(c, "limit", 0)
	offset := queryInt(c, "offset", 0)

	page, err := h.domain.ListInvitations(c.Request.Context(), targetKind(c), targetID, userID, status, limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	data := make([]inbound.InvitationOutput, len(page.Items))
	for i, out := range page.Items {
		data[i] = *out
	}

	c.JSON(http.StatusOK, model.ListResponse[inbound.InvitationOutput]{
		Data:   data,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// GetInvitation returns an invitation the caller may edit.
//
//	@Summary		Get invitation
//	@Tags			Invitations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Invitation ID"
//	@Success		200	{object}	inbound.InvitationOutput
//	@Failure		403	{object}	model.ErrorResponse
//	@Failure		404	{object}	model.ErrorResponse
//	@Router			/invitations/{id} [get]
func (h *invitationHandler) GetInvitation(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	out, err := h.domain.GetInvitation(c.Request.Context(), id, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// AcceptInvitation accepts an invitation addressed to the caller.
//
//	@Summary		Accept invitation
//	@Tags			Invitations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Invitation ID"
//	@Success		200	{object}	inbound.AcceptanceOutput
//	@Failure		403	{object}	model.ErrorResponse
//	@Failure		404	{object}	model.ErrorResponse
//	@Failure		409	{object}	model.ErrorResponse
//	@Router			/invitations/{id}/accept [post]
func (h *invitationHandler) AcceptInvitation(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	out, err := h.domain.AcceptInvitation(c.Request.Context(), id, userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// AcceptInvitationByToken accepts the invitation identified by an emailed token.
//
//	@Summary		Accept invitation by token
//	@Tags			Invitations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			token	path		string	true	"Invitation token"
//	@Success		200		{object}	inbound.AcceptanceOutput
//	@Failure		403		{object}	model.ErrorResponse
//	@Failure		404		{object}	model.ErrorResponse
//	@Failure		409		{object}	model.ErrorResponse
//	@Router			/invitations/token/{token}/accept [post]
func (h *invitationHandler) AcceptInvitationByToken(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	out, err := h.domain.AcceptInvitationByToken(c.Request.Context(), c.Param("token"), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// RevokeInvitation revokes a pending invitation.
//
//	@Summary		Revoke invitation
//	@Tags			Invitations
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Invitation ID"
//	@Success		204
//	@Failure		403	{object}	model.ErrorResponse
//	@Failure		404	{object}	model.ErrorResponse
//	@Failure		409	{object}	model.ErrorResponse
//	@Router			/invitations/{id} [delete]
func (h *invitationHandler) RevokeInvitation(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}

	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.domain.RevokeInvitation(c.Request.Context(), id, userID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
