package service

import (
	"context"
	"testing"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedGroup(t *testing.T, f *fixture, creatorID uint) *model.Group {
	t.Helper()
	group, err := f.groupService.CreateGroup(creatorID, GroupRequest{Name: "Morning squad"})
	require.NoError(t, err)
	return group
}

func TestCreateGroupAddsCreator(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)

	group := seedGroup(t, f, creator.ID)

	isMember, err := f.groups.IsMember(group.ID, creator.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestCreatorCannotLeave(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)
	group := seedGroup(t, f, creator.ID)

	require.ErrorIs(t, f.groupService.Leave(group.ID, creator.ID), util.ErrForbidden)
}

func TestJoinAndLeave(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)
	member := seedUser(t, f, "member@example.com", model.Student)
	group := seedGroup(t, f, creator.ID)

	require.NoError(t, f.groupService.Join(group.ID, member.ID))
	require.ErrorIs(t, f.groupService.Join(group.ID, member.ID), util.ErrConflict)
	require.ErrorIs(t, f.groupService.Join(group.ID, creator.ID), util.ErrConflict)

	require.NoError(t, f.groupService.Leave(group.ID, member.ID))
	require.ErrorIs(t, f.groupService.Leave(group.ID, member.ID), util.ErrNotFound)
}

func TestRejoinAfterLeave(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)
	member := seedUser(t, f, "member@example.com", model.Student)
	group := seedGroup(t, f, creator.ID)

	require.NoError(t, f.groupService.Join(group.ID, member.ID))
	require.NoError(t, f.groupService.Leave(group.ID, member.ID))

	// Leaving must not block coming back.
	require.NoError(t, f.groupService.Join(group.ID, member.ID))

	isMember, err := f.groups.IsMember(group.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestInviteRespondFlow(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)
	invitee := seedUser(t, f, "invitee@example.com", model.Student)
	outsider := seedUser(t, f, "outsider@example.com", model.Student)
	group := seedGroup(t, f, creator.ID)

	// Only members may invite.
	_, err := f.groupService.Invite(group.ID, outsider.ID, invitee.ID)
	require.ErrorIs(t, err, util.ErrForbidden)

	_, err = f.groupService.Invite(group.ID, creator.ID, 9999)
	require.ErrorIs(t, err, util.ErrNotFound)

	invitation, err := f.groupService.Invite(group.ID, creator.ID, invitee.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationPending, invitation.Status)

	// A second pending invitation is refused.
	_, err = f.groupService.Invite(group.ID, creator.ID, invitee.ID)
	require.ErrorIs(t, err, util.ErrConflict)

	// Only the invitee may respond.
	require.ErrorIs(t, f.groupService.Respond(invitation.ID, outsider.ID, true), util.ErrForbidden)

	require.NoError(t, f.groupService.Respond(invitation.ID, invitee.ID, true))

	isMember, err := f.groups.IsMember(group.ID, invitee.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	// Responding twice hits the settled invitation.
	require.ErrorIs(t, f.groupService.Respond(invitation.ID, invitee.ID, true), util.ErrConflict)

	// A member cannot be invited again.
	_, err = f.groupService.Invite(group.ID, creator.ID, invitee.ID)
	require.ErrorIs(t, err, util.ErrConflict)
}

func TestDeclineDoesNotAddMember(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)
	invitee := seedUser(t, f, "invitee@example.com", model.Student)
	group := seedGroup(t, f, creator.ID)

	invitation, err := f.groupService.Invite(group.ID, creator.ID, invitee.ID)
	require.NoError(t, err)

	require.NoError(t, f.groupService.Respond(invitation.ID, invitee.ID, false))

	isMember, err := f.groups.IsMember(group.ID, invitee.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestRemoveMemberPermissions(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)
	member := seedUser(t, f, "member@example.com", model.Student)
	other := seedUser(t, f, "other@example.com", model.Student)
	group := seedGroup(t, f, creator.ID)

	require.NoError(t, f.groupService.Join(group.ID, member.ID))
	require.NoError(t, f.groupService.Join(group.ID, other.ID))

	// A plain member may not remove anyone.
	require.ErrorIs(t, f.groupService.RemoveMember(group.ID, member.ID, other.ID), util.ErrForbidden)

	// The creator can never be the target.
	require.ErrorIs(t, f.groupService.RemoveMember(group.ID, creator.ID, creator.ID), util.ErrForbidden)

	require.NoError(t, f.groupService.RemoveMember(group.ID, creator.ID, member.ID))

	isMember, err := f.groups.IsMember(group.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestCoachAssignment(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)
	member := seedUser(t, f, "member@example.com", model.Student)
	coach := seedUser(t, f, "coach@example.com", model.Coach)
	group := seedGroup(t, f, creator.ID)
	require.NoError(t, f.groupService.Join(group.ID, member.ID))

	// Only the creator assigns, and the target must hold the coach role.
	require.ErrorIs(t, f.groupService.AssignCoach(group.ID, member.ID, coach.ID), util.ErrForbidden)
	require.ErrorIs(t, f.groupService.AssignCoach(group.ID, creator.ID, member.ID), util.ErrValidation)

	require.NoError(t, f.groupService.AssignCoach(group.ID, creator.ID, coach.ID))

	group, err := f.groupService.GetGroup(group.ID)
	require.NoError(t, err)
	require.NotNil(t, group.CoachID)
	assert.Equal(t, coach.ID, *group.CoachID)

	// The coach may now remove members.
	require.NoError(t, f.groupService.RemoveMember(group.ID, coach.ID, member.ID))

	require.ErrorIs(t, f.groupService.RemoveCoach(group.ID, member.ID), util.ErrForbidden)
	require.NoError(t, f.groupService.RemoveCoach(group.ID, creator.ID))

	group, err = f.groupService.GetGroup(group.ID)
	require.NoError(t, err)
	assert.Nil(t, group.CoachID)
}

func TestDeleteGroupCascade(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)
	member := seedUser(t, f, "member@example.com", model.Student)
	invitee := seedUser(t, f, "invitee@example.com", model.Student)
	group := seedGroup(t, f, creator.ID)

	require.NoError(t, f.groupService.Join(group.ID, member.ID))
	_, err := f.groupService.Invite(group.ID, creator.ID, invitee.ID)
	require.NoError(t, err)

	require.ErrorIs(t, f.groupService.DeleteGroup(group.ID, member.ID), util.ErrForbidden)
	require.NoError(t, f.groupService.DeleteGroup(group.ID, creator.ID))

	_, err = f.groupService.GetGroup(group.ID)
	require.ErrorIs(t, err, util.ErrNotFound)

	var members, invitations int64
	require.NoError(t, f.db.Model(&model.GroupMember{}).Where("group_id = ?", group.ID).Count(&members).Error)
	require.NoError(t, f.db.Model(&model.GroupInvitation{}).Where("group_id = ?", group.ID).Count(&invitations).Error)
	assert.Zero(t, members)
	assert.Zero(t, invitations)
}

func TestAddVideoRequiresMembership(t *testing.T) {
	f := newFixture(t)
	creator := seedUser(t, f, "creator@example.com", model.Student)
	outsider := seedUser(t, f, "outsider@example.com", model.Student)
	group := seedGroup(t, f, creator.ID)

	_, err := f.groupService.AddVideo(context.Background(), group.ID, outsider.ID, "Serve", "serve.mp4", 4, "video/mp4", nil)
	require.ErrorIs(t, err, util.ErrForbidden)
}
