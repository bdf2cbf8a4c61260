package repository

import (
	"github.com/Youssef-Elbanna/Ping-Gamify/internal/model"

	"gorm.io/gorm"
)

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) Create(group *model.Group) error {
	return r.DB.Create(group).Error
}

func (r *GroupRepository) FindByID(id uint) (*model.Group, error) {
	var group model.Group
	err := r.DB.First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByIDWithMembers(id uint) (*model.Group, error) {
	var group model.Group
	err := r.DB.
		Preload("Members").
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_videos.created_at ASC")
		}).
		First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByMember(userID uint) ([]model.Group, error) {
	var groups []model.Group
	err := r.DB.
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ? AND group_members.deleted_at IS NULL", userID).
		Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) Update(group *model.Group) error {
	return r.DB.Save(group).Error
}

func (r *GroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) AddMember(db *gorm.DB, member *model.GroupMember) error {
	return db.Create(member).Error
}

// RemoveMember hard-deletes the membership row. A soft delete would leave the
// (group_id, user_id) unique index occupied and block a later rejoin.
func (r *GroupRepository) RemoveMember(db *gorm.DB, groupID, userID uint) error {
	return db.Unscoped().Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.GroupMember{}).Error
}

func (r *GroupRepository) CreateInvitation(invitation *model.GroupInvitation) error {
	return r.DB.Create(invitation).Error
}

func (r *GroupRepository) FindInvitation(id uint) (*model.GroupInvitation, error) {
	var invitation model.GroupInvitation
	err := r.DB.First(&invitation, id).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *GroupRepository) HasPendingInvitation(groupID, inviteeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.GroupInvitation{}).
		Where("group_id = ? AND invitee_id = ? AND status = ?", groupID, inviteeID, model.InvitationPending).
		Count(&count).Error
	return count > 0, err
}

func (r *GroupRepository) UpdateInvitation(db *gorm.DB, invitation *model.GroupInvitation) error {
	return db.Save(invitation).Error
}

func (r *GroupRepository) FindInvitationsByInvitee(userID uint) ([]model.GroupInvitation, error) {
	var invitations []model.GroupInvitation
	err := r.DB.Where("invitee_id = ? AND status = ?", userID, model.InvitationPending).
		Find(&invitations).Error
	return invitations, err
}

func (r *GroupRepository) AddVideo(video *model.GroupVideo) error {
	return r.DB.Create(video).Error
}
