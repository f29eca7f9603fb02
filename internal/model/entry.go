package model

import "time"

// EntryKind 观看记录类型
type EntryKind string

const (
	EntryKindMovie   EntryKind = "MOVIE"
	EntryKindTVShow  EntryKind = "TV_SHOW"
	EntryKindEpisode EntryKind = "EPISODE"
)

func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindMovie, EntryKindTVShow, EntryKindEpisode:
		return true
	}
	return false
}

// Entry 用户的一条观看记录。CatalogID 创建后不可修改。
type Entry struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string    `gorm:"type:varchar(36);not null;index:idx_entry_user_created,priority:1;index:idx_entry_user_watched,priority:1" json:"userId"`
	CatalogID     int64     `gorm:"not null;index" json:"catalogId"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Kind          EntryKind `gorm:"column:type;type:varchar(16);not null" json:"type"`
	WatchedAt     time.Time `gorm:"index:idx_entry_user_watched,priority:2" json:"watchedAt"`
	Rating        *int      `json:"rating"`
	Review        *string   `gorm:"type:text" json:"review"`
	Tags          []string  `gorm:"type:text;serializer:json" json:"tags"`
	IsRewatch     bool      `gorm:"not null;default:false" json:"isRewatch"`
	WatchLocation *string   `gorm:"type:varchar(255)" json:"watchLocation"`
	CreatedAt     time.Time `gorm:"index:idx_entry_user_created,priority:2;index:idx_entry_created" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID" json:"-"`

	// 派生计数，不落库
	LikeCount    int64 `gorm:"-" json:"likeCount"`
	CommentCount int64 `gorm:"-" json:"commentCount"`
}

func (Entry) TableName() string { return "entries" }

// Engagement 一条记录的互动计数
type Engagement struct {
	Likes    int64
	Comments int64
}
