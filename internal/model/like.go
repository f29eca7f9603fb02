package model

import "time"

// Like 点赞（每人每条记录至多一次）
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);not null;index:idx_like_pair,unique"`
	EntryID   string    `gorm:"type:varchar(36);not null;index:idx_like_pair,unique;index:idx_like_entry"`
	CreatedAt time.Time
}

func (Like) TableName() string { return "likes" }

// Comment 评论；此处只用于互动计数
type Comment struct {
	ID              string  `gorm:"primaryKey;type:varchar(36)"`
	EntryID         string  `gorm:"type:varchar(36);not null;index:idx_comment_entry"`
	UserID          string  `gorm:"type:varchar(36);not null"`
	ParentCommentID *string `gorm:"type:varchar(36)"`
	Content         string  `gorm:"type:text;not null"`
	CreatedAt       time.Time
}

func (Comment) TableName() string { return "comments" }
