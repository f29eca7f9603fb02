package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/catalog"
	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/internal/repository"
	"github.com/d60-Lab/watchhive/pkg/logger"
)

const genreLookupTimeout = 5 * time.Second

// 与 gin 绑定共用 binding 标签
var validate = func() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}()

// RegisterValidations 注册自定义规则；gin 的 binding 引擎也需要调用
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("entrykind", func(fl validator.FieldLevel) bool {
		return model.EntryKind(fl.Field().String()).Valid()
	})
}

type CreateEntryInput struct {
	CatalogID     int64           `json:"catalogId" binding:"required,gt=0"`
	Title         string          `json:"title" binding:"required,max=255"`
	Type          model.EntryKind `json:"type" binding:"required,entrykind"`
	WatchedAt     *time.Time      `json:"watchedAt"`
	Rating        *int            `json:"rating" binding:"omitempty,min=1,max=10"`
	Review        *string         `json:"review"`
	Tags          []string        `json:"tags" binding:"omitempty,dive,max=64"`
	IsRewatch     bool            `json:"isRewatch"`
	WatchLocation *string         `json:"watchLocation" binding:"omitempty,max=255"`
}

// UpdateEntryInput nil 字段保持不变；catalogId 不可修改
type UpdateEntryInput struct {
	Title         *string          `json:"title" binding:"omitempty,min=1,max=255"`
	Type          *model.EntryKind `json:"type" binding:"omitempty,entrykind"`
	WatchedAt     *time.Time       `json:"watchedAt"`
	Rating        *int             `json:"rating" binding:"omitempty,min=1,max=10"`
	Review        *string          `json:"review"`
	Tags          []string         `json:"tags" binding:"omitempty,dive,max=64"`
	IsRewatch     *bool            `json:"isRewatch"`
	WatchLocation *string          `json:"watchLocation" binding:"omitempty,max=255"`
}

// EntryWithUser 列表/详情中的记录，附作者摘要
type EntryWithUser struct {
	*model.Entry
	User *model.UserSummary `json:"user,omitempty"`
}

type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

type EntryList struct {
	Entries    []*EntryWithUser `json:"entries"`
	Pagination Pagination       `json:"pagination"`
}

// EntryStats 个人统计
type EntryStats struct {
	TotalEntries  int64   `json:"totalEntries"`
	MovieCount    int64   `json:"movieCount"`
	TVShowCount   int64   `json:"tvShowCount"`
	EpisodeCount  int64   `json:"episodeCount"`
	RewatchCount  int64   `json:"rewatchCount"`
	AverageRating float64 `json:"averageRating"`
}

type EntryService interface {
	// List 列出 filter.UserID（为空时为 viewer）的记录，他人记录需通过可见性检查
	List(ctx context.Context, viewerID string, filter repository.EntryFilter) (*EntryList, error)
	Get(ctx context.Context, viewerID, entryID string) (*EntryWithUser, error)
	Create(ctx context.Context, userID string, in CreateEntryInput) (*model.Entry, error)
	Update(ctx context.Context, userID, entryID string, in UpdateEntryInput) (*model.Entry, error)
	Delete(ctx context.Context, userID, entryID string) error
	Stats(ctx context.Context, userID string) (*EntryStats, error)
}

type entryService struct {
	entries    repository.EntryRepository
	visibility *Visibility
	catalog    catalog.Catalog
	now        func() time.Time
}

func NewEntryService(entries repository.EntryRepository, visibility *Visibility, cat catalog.Catalog) EntryService {
	return &entryService{entries: entries, visibility: visibility, catalog: cat, now: time.Now}
}

func (s *entryService) List(ctx context.Context, viewerID string, f repository.EntryFilter) (*EntryList, error) {
	if f.UserID == "" {
		f.UserID = viewerID
	}
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, apperr.Invalid("invalid entry type %q", f.Kind)
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	owner, err := s.visibility.Authorize(ctx, viewerID, f.UserID)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.entries.List(ctx, f)
	if err != nil {
		return nil, apperr.Storage(err, "list entries")
	}
	if err := s.fillCounts(ctx, rows); err != nil {
		return nil, err
	}

	summary := owner.Summary()
	out := &EntryList{
		Entries: make([]*EntryWithUser, len(rows)),
		Pagination: Pagination{
			Total:   total,
			Limit:   f.Limit,
			Offset:  f.Offset,
			HasMore: int64(f.Offset+len(rows)) < total,
		},
	}
	for i, e := range rows {
		out.Entries[i] = &EntryWithUser{Entry: e, User: summary}
	}
	return out, nil
}

func (s *entryService) fillCounts(ctx context.Context, rows []*model.Entry) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]string, len(rows))
	for i, e := range rows {
		ids[i] = e.ID
	}
	counts, err := s.entries.Engagement(ctx, ids)
	if err != nil {
		return apperr.Storage(err, "load engagement")
	}
	for _, e := range rows {
		c := counts[e.ID]
		e.LikeCount, e.CommentCount = c.Likes, c.Comments
	}
	return nil
}

func (s *entryService) Get(ctx context.Context, viewerID, entryID string) (*EntryWithUser, error) {
	e, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, apperr.Storage(err, "load entry")
	}
	if e == nil {
		return nil, ErrEntryNotFound
	}
	owner, err := s.visibility.Authorize(ctx, viewerID, e.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.fillCounts(ctx, []*model.Entry{e}); err != nil {
		return nil, err
	}
	return &EntryWithUser{Entry: e, User: owner.Summary()}, nil
}

func (s *entryService) Create(ctx context.Context, userID string, in CreateEntryInput) (*model.Entry, error) {
	if err := validate.Struct(in); err != nil {
		return nil, apperr.Invalid("%s", err.Error())
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Invalid("title is required")
	}

	watchedAt := s.now()
	if in.WatchedAt != nil {
		watchedAt = *in.WatchedAt
	}
	e := &model.Entry{
		UserID:        userID,
		CatalogID:     in.CatalogID,
		Title:         title,
		Kind:          in.Type,
		WatchedAt:     watchedAt,
		Rating:        in.Rating,
		Review:        trimPtr(in.Review),
		Tags:          mergeTags(in.Tags, s.genres(ctx, in.CatalogID, in.Type)),
		IsRewatch:     in.IsRewatch,
		WatchLocation: trimPtr(in.WatchLocation),
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, apperr.Storage(err, "create entry")
	}
	return e, nil
}

// genres 查询目录类型标签；失败只记日志
func (s *entryService) genres(ctx context.Context, catalogID int64, kind model.EntryKind) []string {
	if s.catalog == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, genreLookupTimeout)
	defer cancel()

	d, err := s.catalog.Details(ctx, catalogID, catalog.KindForEntry(kind))
	if err != nil {
		logger.Warn("genre lookup failed", zap.Int64("catalog_id", catalogID), zap.Error(err))
		return nil
	}
	return d.GenreNames()
}

func (s *entryService) Update(ctx context.Context, userID, entryID string, in UpdateEntryInput) (*model.Entry, error) {
	if err := validate.Struct(in); err != nil {
		return nil, apperr.Invalid("%s", err.Error())
	}
	e, err := s.owned(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, apperr.Invalid("title cannot be empty")
		}
		e.Title = t
	}
	if in.Type != nil {
		e.Kind = *in.Type
	}
	if in.WatchedAt != nil {
		e.WatchedAt = *in.WatchedAt
	}
	if in.Rating != nil {
		e.Rating = in.Rating
	}
	if in.Review != nil {
		e.Review = trimPtr(in.Review)
	}
	if in.Tags != nil {
		e.Tags = mergeTags(in.Tags, nil)
	}
	if in.IsRewatch != nil {
		e.IsRewatch = *in.IsRewatch
	}
	if in.WatchLocation != nil {
		e.WatchLocation = trimPtr(in.WatchLocation)
	}

	if err := s.entries.Update(ctx, e); err != nil {
		return nil, apperr.Storage(err, "update entry")
	}
	return e, nil
}

func (s *entryService) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := s.owned(ctx, userID, entryID); err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, entryID); err != nil {
		return apperr.Storage(err, "delete entry")
	}
	return nil
}

// owned 他人的记录同样按不存在处理
func (s *entryService) owned(ctx context.Context, userID, entryID string) (*model.Entry, error) {
	e, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, apperr.Storage(err, "load entry")
	}
	if e == nil || e.UserID != userID {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

func (s *entryService) Stats(ctx context.Context, userID string) (*EntryStats, error) {
	st, err := s.entries.Stats(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "entry stats")
	}
	return &EntryStats{
		TotalEntries:  st.Total,
		MovieCount:    st.ByType[model.EntryKindMovie],
		TVShowCount:   st.ByType[model.EntryKindTVShow],
		EpisodeCount:  st.ByType[model.EntryKindEpisode],
		RewatchCount:  st.Rewatches,
		AverageRating: st.AverageRating,
	}, nil
}

// mergeTags 合并用户标签与目录类型，去空白、去重并保持首次出现顺序
func mergeTags(tags, genres []string) []string {
	out := make([]string, 0, len(tags)+len(genres))
	seen := make(map[string]struct{}, cap(out))
	for _, list := range [][]string{tags, genres} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
