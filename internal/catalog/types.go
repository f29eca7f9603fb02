// Package catalog 访问外部影视目录（TMDB 兼容接口）：推荐、趋势与详情。
package catalog

import (
	"context"

	"github.com/d60-Lab/watchhive/internal/model"
)

// MediaKind 目录中的媒体类型
type MediaKind string

const (
	MediaAll   MediaKind = "all"
	MediaMovie MediaKind = "movie"
	MediaTV    MediaKind = "tv"
)

func (m MediaKind) Valid() bool {
	return m == MediaAll || m == MediaMovie || m == MediaTV
}

// Window 趋势统计窗口
type Window string

const (
	WindowDay  Window = "day"
	WindowWeek Window = "week"
)

func (w Window) Valid() bool { return w == WindowDay || w == WindowWeek }

// KindForEntry 观看记录类型对应的目录类型；剧集归入 tv
func KindForEntry(k model.EntryKind) MediaKind {
	switch k {
	case model.EntryKindTVShow, model.EntryKindEpisode:
		return MediaTV
	default:
		return MediaMovie
	}
}

// Item 目录条目。电影用 title/release_date，剧集用 name/first_air_date。
type Item struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity,omitempty"`
	MediaType    string  `json:"media_type,omitempty"`
}

// DisplayTitle 电影取 title，剧集取 name
func (i Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

// Date 上映或首播日期
func (i Item) Date() string {
	if i.ReleaseDate != "" {
		return i.ReleaseDate
	}
	return i.FirstAirDate
}

// Results 列表类接口的分页结果
type Results struct {
	Page         int    `json:"page"`
	Results      []Item `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Detail 单个条目详情，目前只用到类型标签
type Detail struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title,omitempty"`
	Name       string  `json:"name,omitempty"`
	Overview   string  `json:"overview,omitempty"`
	PosterPath string  `json:"poster_path,omitempty"`
	Genres     []Genre `json:"genres"`
}

// GenreNames 详情中的类型名称
func (d *Detail) GenreNames() []string {
	out := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		if g.Name != "" {
			out = append(out, g.Name)
		}
	}
	return out
}

// Catalog 目录服务的读接口，所有方法均幂等无副作用
type Catalog interface {
	Recommendations(ctx context.Context, id int64, kind MediaKind, page int) (*Results, error)
	Trending(ctx context.Context, media MediaKind, window Window) (*Results, error)
	Details(ctx context.Context, id int64, kind MediaKind) (*Detail, error)
}
