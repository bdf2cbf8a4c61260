package model

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Group is a social unit separate from course enrollment. The creator is
// always a member and can never leave or be removed.
type Group struct {
	BaseModel
	Name      string `gorm:"size:100;not null" json:"name"`
	CreatorID uint   `gorm:"index;not null" json:"creatorId"`
	CoachID   *uint  `gorm:"index" json:"coachId,omitempty"`

	Members     []GroupMember     `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Invitations []GroupInvitation `gorm:"foreignKey:GroupID" json:"invitations,omitempty"`
	Videos      []GroupVideo      `gorm:"foreignKey:GroupID" json:"videos,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}

type GroupMember struct {
	BaseModel
	GroupID  uint      `gorm:"uniqueIndex:idx_group_member;not null" json:"groupId"`
	UserID   uint      `gorm:"uniqueIndex:idx_group_member;not null" json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (GroupMember) TableName() string {
	return "group_members"
}

type GroupInvitation struct {
	BaseModel
	GroupID   uint             `gorm:"index;not null" json:"groupId"`
	InviterID uint             `gorm:"not null" json:"inviterId"`
	InviteeID uint             `gorm:"index;not null" json:"inviteeId"`
	Status    InvitationStatus `gorm:"size:10;default:'pending'" json:"status"`
}

func (GroupInvitation) TableName() string {
	return "group_invitations"
}

// GroupVideo rows are append-only.
type GroupVideo struct {
	BaseModel
	GroupID    uint   `gorm:"index;not null" json:"groupId"`
	UploaderID uint   `gorm:"not null" json:"uploaderId"`
	Title      string `gorm:"size:255" json:"title"`
	URL        string `gorm:"size:512;not null" json:"url"`
	Duration   int    `gorm:"default:0" json:"duration"` // seconds, probed at upload
}

func (GroupVideo) TableName() string {
	return "group_videos"
}
