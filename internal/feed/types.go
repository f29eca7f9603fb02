// Package feed 组装首页信息流：关注者的观看记录按热度排序，并按固定节奏穿插目录推荐。
package feed

import (
	"time"

	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/internal/model"
)

type ItemType string

const (
	ItemEntry      ItemType = "ENTRY"
	ItemSuggestion ItemType = "SUGGESTION"
)

const (
	ReasonTrendingWeek = "Trending this week"
	ReasonTrendingNow  = "Trending Now"
)

// EntryView 信息流中的观看记录，附带作者摘要
type EntryView struct {
	*model.Entry
	User *model.UserSummary `json:"user,omitempty"`
}

// Item 信息流中的一项，Entry 与 Candidate 二选一
type Item struct {
	Type      ItemType      `json:"type"`
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Entry     *EntryView    `json:"entry,omitempty"`
	Candidate *catalog.Item `json:"candidate,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	IsLiked   bool          `json:"isLiked"`
	IsWatched bool          `json:"isWatched"`
}

// Page 一页信息流；NextPage 在没有更多数据时为 null
type Page struct {
	Items    []Item `json:"items"`
	NextPage *int   `json:"nextPage"`
	HasMore  bool   `json:"hasMore"`
}

// ScoredEntry 已标注点赞状态与热度分的记录
type ScoredEntry struct {
	Entry   *model.Entry
	IsLiked bool
	Score   float64
}

// Suggestion 推荐候选及推荐理由
type Suggestion struct {
	Item   catalog.Item
	Reason string
}
