package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/watchhive/internal/model"
)

// EntryFilter 个人记录列表的过滤条件，零值表示不过滤
type EntryFilter struct {
	UserID string
	Kind   model.EntryKind
	Rating *int
	Tag    string
	Search string
	// SortBy: watchedAt | createdAt | rating | title
	SortBy string
	// Order: asc | desc
	Order  string
	Offset int
	Limit  int
}

// EntryStats 个人观看统计
type EntryStats struct {
	Total         int64                     `json:"total"`
	ByType        map[model.EntryKind]int64 `json:"byType"`
	Rewatches     int64                     `json:"rewatches"`
	AverageRating float64                   `json:"averageRating"`
	RatedCount    int64                     `json:"ratedCount"`
}

type EntryRepository interface {
	Create(ctx context.Context, e *model.Entry) error
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*model.Entry, error)
	Update(ctx context.Context, e *model.Entry) error
	// Delete 连同点赞、评论一并删除
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f EntryFilter) ([]*model.Entry, int64, error)
	// ListByOwners 信息流候选页：created_at DESC，预加载作者
	ListByOwners(ctx context.Context, ownerIDs []string, offset, limit int) ([]*model.Entry, error)
	Engagement(ctx context.Context, entryIDs []string) (map[string]model.Engagement, error)
	// LatestWatched 最近观看的一条，无记录时返回 nil, nil
	LatestWatched(ctx context.Context, userID string) (*model.Entry, error)
	WatchedCatalogIDs(ctx context.Context, userID string) ([]int64, error)
	Stats(ctx context.Context, userID string) (*EntryStats, error)
}

type entryRepository struct{ db *gorm.DB }

func NewEntryRepository(db *gorm.DB) EntryRepository { return &entryRepository{db: db} }

func (r *entryRepository) Create(ctx context.Context, e *model.Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *entryRepository) GetByID(ctx context.Context, id string) (*model.Entry, error) {
	var e model.Entry
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *entryRepository) Update(ctx context.Context, e *model.Entry) error {
	return r.db.WithContext(ctx).
		Model(e).
		Select("title", "type", "watched_at", "rating", "review", "tags", "is_rewatch", "watch_location").
		Updates(e).Error
}

func (r *entryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Entry{}).Error
	})
}

var entrySortColumns = map[string]string{
	"watchedAt": "watched_at",
	"createdAt": "created_at",
	"rating":    "rating",
	"title":     "title",
}

func (r *entryRepository) List(ctx context.Context, f EntryFilter) ([]*model.Entry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Entry{}).Where("user_id = ?", f.UserID)
	if f.Kind != "" {
		q = q.Where("type = ?", f.Kind)
	}
	if f.Rating != nil {
		q = q.Where("rating = ?", *f.Rating)
	}
	if f.Tag != "" {
		// tags 以 JSON 数组文本存储，按序列化后的完整元素匹配
		elem, err := json.Marshal(f.Tag)
		if err != nil {
			return nil, 0, err
		}
		q = q.Where(`tags LIKE ? ESCAPE '\'`, "%"+escapeLike(string(elem))+"%")
	}
	if f.Search != "" {
		like := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(review, '')) LIKE ? ESCAPE '\'`, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, ok := entrySortColumns[f.SortBy]
	if !ok {
		col = "watched_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		dir = "ASC"
	}

	var res []*model.Entry
	err := q.Order(col + " " + dir).Order("id " + dir).
		Offset(f.Offset).Limit(f.Limit).
		Find(&res).Error
	return res, total, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike 转义 LIKE 通配符，配合 ESCAPE '\' 使用
func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *entryRepository) ListByOwners(ctx context.Context, ownerIDs []string, offset, limit int) ([]*model.Entry, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	var res []*model.Entry
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id IN ?", ownerIDs).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

type countRow struct {
	EntryID string
	N       int64
}

func (r *entryRepository) Engagement(ctx context.Context, entryIDs []string) (map[string]model.Engagement, error) {
	out := make(map[string]model.Engagement, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}
	db := r.db.WithContext(ctx)

	var likes []countRow
	if err := db.Model(&model.Like{}).
		Select("entry_id, COUNT(*) AS n").
		Where("entry_id IN ?", entryIDs).
		Group("entry_id").
		Scan(&likes).Error; err != nil {
		return nil, err
	}
	var comments []countRow
	if err := db.Model(&model.Comment{}).
		Select("entry_id, COUNT(*) AS n").
		Where("entry_id IN ?", entryIDs).
		Group("entry_id").
		Scan(&comments).Error; err != nil {
		return nil, err
	}

	for _, row := range likes {
		e := out[row.EntryID]
		e.Likes = row.N
		out[row.EntryID] = e
	}
	for _, row := range comments {
		e := out[row.EntryID]
		e.Comments = row.N
		out[row.EntryID] = e
	}
	return out, nil
}

func (r *entryRepository) LatestWatched(ctx context.Context, userID string) (*model.Entry, error) {
	var e model.Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("watched_at DESC").Order("created_at DESC").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *entryRepository) WatchedCatalogIDs(ctx context.Context, userID string) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.Entry{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("catalog_id", &ids).Error
	return ids, err
}

type kindRow struct {
	Kind model.EntryKind `gorm:"column:type"`
	N    int64
}

func (r *entryRepository) Stats(ctx context.Context, userID string) (*EntryStats, error) {
	db := r.db.WithContext(ctx)
	st := &EntryStats{ByType: make(map[model.EntryKind]int64)}

	var kinds []kindRow
	if err := db.Model(&model.Entry{}).
		Select("type, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&kinds).Error; err != nil {
		return nil, err
	}
	for _, k := range kinds {
		st.ByType[k.Kind] = k.N
		st.Total += k.N
	}

	if err := db.Model(&model.Entry{}).
		Where("user_id = ? AND is_rewatch = ?", userID, true).
		Count(&st.Rewatches).Error; err != nil {
		return nil, err
	}

	var agg struct {
		Cnt int64
		Avg *float64
	}
	if err := db.Model(&model.Entry{}).
		Select("COUNT(rating) AS cnt, AVG(rating) AS avg").
		Where("user_id = ? AND rating IS NOT NULL", userID).
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	st.RatedCount = agg.Cnt
	if agg.Avg != nil {
		st.AverageRating = *agg.Avg
	}
	return st, nil
}
