package model

import "time"

// User 用户（仅信息流/可见性所需字段）
type User struct {
	ID                string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email,omitempty"`
	Password          string    `gorm:"type:varchar(255)" json:"-"`
	DisplayName       string    `gorm:"type:varchar(128)" json:"displayName,omitempty"`
	ProfilePictureURL string    `gorm:"type:varchar(512)" json:"profilePictureUrl,omitempty"`
	// IsPrivate 私密账号：非关注者不可见其记录
	IsPrivate bool      `gorm:"not null;default:false" json:"isPrivate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserSummary 嵌入在记录/列表中的作者信息
type UserSummary struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	DisplayName       string `json:"displayName,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
	IsPrivate         bool   `json:"isPrivate"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:                u.ID,
		Username:          u.Username,
		DisplayName:       u.DisplayName,
		ProfilePictureURL: u.ProfilePictureURL,
		IsPrivate:         u.IsPrivate,
	}
}
