package model

import (
	"errors"
	"time"
)

// FollowRequestStatus 关注申请状态：none -> pending -> accepted | rejected
type FollowRequestStatus string

const (
	FollowRequestPending  FollowRequestStatus = "pending"
	FollowRequestAccepted FollowRequestStatus = "accepted"
	FollowRequestRejected FollowRequestStatus = "rejected"
)

var ErrInvalidTransition = errors.New("invalid follow request transition")

// FollowRequest 关注私密账号时产生的待处理申请。每个 (sender, recipient) 仅一行，
// 终态后再次关注会把同一行重新置为 pending。
type FollowRequest struct {
	ID          string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SenderID    string              `gorm:"type:varchar(36);not null;index:idx_freq_pair,unique" json:"senderId"`
	RecipientID string              `gorm:"type:varchar(36);not null;index:idx_freq_pair,unique;index:idx_freq_recipient_status,priority:1" json:"recipientId"`
	Status      FollowRequestStatus `gorm:"type:varchar(16);not null;index:idx_freq_recipient_status,priority:2" json:"status"`
	RespondedAt *time.Time          `json:"respondedAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (FollowRequest) TableName() string { return "follow_requests" }

func (r *FollowRequest) Accept(now time.Time) error {
	return r.resolve(FollowRequestAccepted, now)
}

func (r *FollowRequest) Reject(now time.Time) error {
	return r.resolve(FollowRequestRejected, now)
}

func (r *FollowRequest) resolve(to FollowRequestStatus, now time.Time) error {
	if r.Status != FollowRequestPending {
		return ErrInvalidTransition
	}
	r.Status = to
	r.RespondedAt = &now
	return nil
}

// Reopen 终态申请重新进入 pending
func (r *FollowRequest) Reopen() error {
	if r.Status == FollowRequestPending {
		return ErrInvalidTransition
	}
	r.Status = FollowRequestPending
	r.RespondedAt = nil
	return nil
}
