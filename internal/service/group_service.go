package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/repository"
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/util"
	"github.com/Youssef-Elbanna/Ping-Gamify/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GroupService implements the membership state machine. Per (group, user) the
// states are non-member, invited (pending), member and coach. The creator is
// always a member and can never leave or be removed.
type GroupService struct {
	DB        *gorm.DB
	GroupRepo *repository.GroupRepository
	UserRepo  *repository.UserRepository
	Storage   *StorageService
}

func NewGroupService(groupRepo *repository.GroupRepository, userRepo *repository.UserRepository, storage *StorageService, db *gorm.DB) *GroupService {
	return &GroupService{
		DB:        db,
		GroupRepo: groupRepo,
		UserRepo:  userRepo,
		Storage:   storage,
	}
}

type GroupRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

func (s *GroupService) CreateGroup(creatorID uint, req GroupRequest) (*model.Group, error) {
	group := &model.Group{
		Name:      req.Name,
		CreatorID: creatorID,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		// The creator is the sole initial member.
		return s.GroupRepo.AddMember(tx, &model.GroupMember{
			GroupID:  group.ID,
			UserID:   creatorID,
			JoinedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) GetGroup(groupID uint) (*model.Group, error) {
	group, err := s.GroupRepo.FindByIDWithMembers(groupID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("group %d: %w", groupID, util.ErrNotFound)
	} else if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) ListMyGroups(userID uint) ([]model.Group, error) {
	return s.GroupRepo.FindByMember(userID)
}

func (s *GroupService) ListMyInvitations(userID uint) ([]model.GroupInvitation, error) {
	return s.GroupRepo.FindInvitationsByInvitee(userID)
}

// Invite creates a pending invitation. Only current members may invite.
func (s *GroupService) Invite(groupID, inviterID, inviteeID uint) (*model.GroupInvitation, error) {
	if _, err := s.GetGroup(groupID); err != nil {
		return nil, err
	}

	isMember, err := s.GroupRepo.IsMember(groupID, inviterID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("only group members may invite: %w", util.ErrForbidden)
	}

	if _, err := s.UserRepo.FindByID(inviteeID); err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("user %d: %w", inviteeID, util.ErrNotFound)
	} else if err != nil {
		return nil, err
	}

	alreadyMember, err := s.GroupRepo.IsMember(groupID, inviteeID)
	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, fmt.Errorf("already a member: %w", util.ErrConflict)
	}

	pending, err := s.GroupRepo.HasPendingInvitation(groupID, inviteeID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("invitation already pending: %w", util.ErrConflict)
	}

	invitation := &model.GroupInvitation{
		GroupID:   groupID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    model.InvitationPending,
	}
	if err := s.GroupRepo.CreateInvitation(invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

// Respond accepts or declines a pending invitation. Only the invitee may
// respond; accepting adds the member row in the same transaction.
func (s *GroupService) Respond(invitationID, userID uint, accept bool) error {
	invitation, err := s.GroupRepo.FindInvitation(invitationID)
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("invitation %d: %w", invitationID, util.ErrNotFound)
	} else if err != nil {
		return err
	}

	if invitation.InviteeID != userID {
		return fmt.Errorf("not your invitation: %w", util.ErrForbidden)
	}
	if invitation.Status != model.InvitationPending {
		return fmt.Errorf("invitation already %s: %w", invitation.Status, util.ErrConflict)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if !accept {
			invitation.Status = model.InvitationDeclined
			return s.GroupRepo.UpdateInvitation(tx, invitation)
		}

		invitation.Status = model.InvitationAccepted
		if err := s.GroupRepo.UpdateInvitation(tx, invitation); err != nil {
			return err
		}
		return s.GroupRepo.AddMember(tx, &model.GroupMember{
			GroupID:  invitation.GroupID,
			UserID:   userID,
			JoinedAt: time.Now(),
		})
	})
}

// Join lets a user enter a group directly, bypassing the invitation flow.
func (s *GroupService) Join(groupID, userID uint) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}

	isMember, err := s.GroupRepo.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if isMember || group.CreatorID == userID || (group.CoachID != nil && *group.CoachID == userID) {
		return fmt.Errorf("already a member: %w", util.ErrConflict)
	}

	return s.GroupRepo.AddMember(s.DB, &model.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: time.Now(),
	})
}

// Leave removes the caller's own membership. The creator can never leave.
func (s *GroupService) Leave(groupID, userID uint) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}

	if group.CreatorID == userID {
		return fmt.Errorf("the creator cannot leave the group: %w", util.ErrForbidden)
	}

	isMember, err := s.GroupRepo.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("not a member: %w", util.ErrNotFound)
	}

	return s.GroupRepo.RemoveMember(s.DB, groupID, userID)
}

// RemoveMember ejects another member. Creator or coach only; the creator can
// never be the target.
func (s *GroupService) RemoveMember(groupID, callerID, targetID uint) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}

	isCoach := group.CoachID != nil && *group.CoachID == callerID
	if group.CreatorID != callerID && !isCoach {
		return fmt.Errorf("only the creator or coach may remove members: %w", util.ErrForbidden)
	}
	if targetID == group.CreatorID {
		return fmt.Errorf("the creator cannot be removed: %w", util.ErrForbidden)
	}

	isMember, err := s.GroupRepo.IsMember(groupID, targetID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("not a member: %w", util.ErrNotFound)
	}

	return s.GroupRepo.RemoveMember(s.DB, groupID, targetID)
}

// AssignCoach sets the group's coach. Creator only.
func (s *GroupService) AssignCoach(groupID, callerID, coachID uint) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}

	if group.CreatorID != callerID {
		return fmt.Errorf("only the creator may assign a coach: %w", util.ErrForbidden)
	}

	coach, err := s.UserRepo.FindByID(coachID)
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("user %d: %w", coachID, util.ErrNotFound)
	} else if err != nil {
		return err
	}
	if coach.Role != model.Coach {
		return fmt.Errorf("user %d is not a coach: %w", coachID, util.ErrValidation)
	}

	group.CoachID = &coachID
	return s.GroupRepo.Update(group)
}

// RemoveCoach clears the group's coach. Creator only.
func (s *GroupService) RemoveCoach(groupID, callerID uint) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}

	if group.CreatorID != callerID {
		return fmt.Errorf("only the creator may remove the coach: %w", util.ErrForbidden)
	}

	group.CoachID = nil
	return s.GroupRepo.Update(group)
}

// DeleteGroup removes the group and everything hanging off it. Creator only.
func (s *GroupService) DeleteGroup(groupID, callerID uint) error {
	group, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}

	if group.CreatorID != callerID {
		return fmt.Errorf("only the creator may delete the group: %w", util.ErrForbidden)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&model.GroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&model.GroupInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&model.GroupVideo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Group{}, groupID).Error
	})
}

// AddVideo uploads a member's video to the blob store and appends it to the
// group's video list. Duration is probed with ffmpeg; a probe failure only
// loses the duration, not the upload.
func (s *GroupService) AddVideo(ctx context.Context, groupID, uploaderID uint, title, filename string, size int64, contentType string, r io.Reader) (*model.GroupVideo, error) {
	if _, err := s.GetGroup(groupID); err != nil {
		return nil, err
	}

	isMember, err := s.GroupRepo.IsMember(groupID, uploaderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("only group members may add videos: %w", util.ErrForbidden)
	}

	// Spool to a temp file so ffprobe can read it, then stream to storage.
	tmp, err := os.CreateTemp("", "group-video-*"+filepath.Ext(filename))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, r); err != nil {
		return nil, err
	}

	duration := 0
	if info, err := util.GetVideoInfo(tmp.Name()); err == nil {
		duration = int(math.Round(info.Duration))
	} else {
		logger.Log.Warn("video probe failed", zap.String("file", filename), zap.Error(err))
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	object := fmt.Sprintf("groups/%d/videos/%s%s", groupID, uuid.New().String(), filepath.Ext(filename))
	url, err := s.Storage.Upload(ctx, object, tmp, size, contentType)
	if err != nil {
		return nil, err
	}

	video := &model.GroupVideo{
		GroupID:    groupID,
		UploaderID: uploaderID,
		Title:      title,
		URL:        url,
		Duration:   duration,
	}
	if err := s.GroupRepo.AddVideo(video); err != nil {
		return nil, err
	}
	return video, nil
}
