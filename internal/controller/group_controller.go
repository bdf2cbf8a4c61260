package controller

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/service"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/gin-gonic/gin"
)

type GroupController struct {
	GroupService *service.GroupService
}

func NewGroupController(groupService *service.GroupService) *GroupController {
	return &GroupController{GroupService: groupService}
}

type InviteRequest struct {
	InviteeID uint `json:"inviteeId" binding:"required"`
}

type RespondRequest struct {
	Accept bool `json:"accept"`
}

type AssignCoachRequest struct {
	CoachID uint `json:"coachId" binding:"required"`
}

// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.GroupRequest true "group"
// @Success 201 {object} util.Response
// @Router /api/groups [post]
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	group, err := c.GroupService.CreateGroup(user.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, group)
}

// @Summary Group detail with members
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "group ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{groupId} [get]
func (c *GroupController) GetGroup(ctx *gin.Context) {
	groupID, ok := pathID(ctx, "groupId")
	if !ok {
		return
	}

	group, err := c.GroupService.GetGroup(groupID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, group)
}

// @Summary Groups the caller belongs to
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/groups/mine [get]
func (c *GroupController) ListMyGroups(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groups, err := c.GroupService.ListMyGroups(user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, groups)
}

// @Summary Pending invitations for the caller
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/groups/invitations [get]
func (c *GroupController) ListMyInvitations(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	invitations, err := c.GroupService.ListMyInvitations(user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, invitations)
}

// @Summary Invite a user to a group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "group ID"
// @Param body body InviteRequest true "invitee"
// @Success 201 {object} util.Response
// @Router /api/groups/{groupId}/invitations [post]
func (c *GroupController) Invite(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groupID, ok := pathID(ctx, "groupId")
	if !ok {
		return
	}

	var req InviteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	invitation, err := c.GroupService.Invite(groupID, user.UserID, req.InviteeID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, invitation)
}

// @Summary Accept or decline an invitation
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationId path int true "invitation ID"
// @Param body body RespondRequest true "verdict"
// @Success 200 {object} util.Response
// @Router /api/groups/invitations/{invitationId} [post]
func (c *GroupController) Respond(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	invitationID, ok := pathID(ctx, "invitationId")
	if !ok {
		return
	}

	var req RespondRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.GroupService.Respond(invitationID, user.UserID, req.Accept); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Invitation updated"})
}

// @Summary Join a group directly
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "group ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{groupId}/join [post]
func (c *GroupController) Join(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groupID, ok := pathID(ctx, "groupId")
	if !ok {
		return
	}

	if err := c.GroupService.Join(groupID, user.UserID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Joined"})
}

// @Summary Leave a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "group ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{groupId}/leave [post]
func (c *GroupController) Leave(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groupID, ok := pathID(ctx, "groupId")
	if !ok {
		return
	}

	if err := c.GroupService.Leave(groupID, user.UserID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Left the group"})
}

// @Summary Remove a member from a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "group ID"
// @Param userId path int true "member user ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{groupId}/members/{userId} [delete]
func (c *GroupController) RemoveMember(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groupID, ok := pathID(ctx, "groupId")
	if !ok {
		return
	}
	targetID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	if err := c.GroupService.RemoveMember(groupID, user.UserID, targetID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Member removed"})
}

// @Summary Assign the group coach
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "group ID"
// @Param body body AssignCoachRequest true "coach"
// @Success 200 {object} util.Response
// @Router /api/groups/{groupId}/coach [put]
func (c *GroupController) AssignCoach(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groupID, ok := pathID(ctx, "groupId")
	if !ok {
		return
	}

	var req AssignCoachRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.GroupService.AssignCoach(groupID, user.UserID, req.CoachID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Coach assigned"})
}

// @Summary Remove the group coach
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "group ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{groupId}/coach [delete]
func (c *GroupController) RemoveCoach(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groupID, ok := pathID(ctx, "groupId")
	if !ok {
		return
	}

	if err := c.GroupService.RemoveCoach(groupID, user.UserID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Coach removed"})
}

// @Summary Delete a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "group ID"
// @Success 200 {object} util.Response
// @Router /api/groups/{groupId} [delete]
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groupID, ok := pathID(ctx, "groupId")
	if !ok {
		return
	}

	if err := c.GroupService.DeleteGroup(groupID, user.UserID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Group deleted"})
}

// @Summary Upload a video to a group
// @Tags groups
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "group ID"
// @Param title formData string false "video title"
// @Param file formData file true "video file"
// @Success 201 {object} util.Response
// @Router /api/groups/{groupId}/videos [post]
func (c *GroupController) AddVideo(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	groupID, ok := pathID(ctx, "groupId")
	if !ok {
		return
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "video file is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	title := ctx.PostForm("title")
	if title == "" {
		title = fh.Filename
	}

	video, err := c.GroupService.AddVideo(ctx.Request.Context(), groupID, user.UserID, title, fh.Filename, fh.Size, fh.Header.Get("Content-Type"), f)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, video)
}
