package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/watchhive/internal/model"
)

type LikeRepository interface {
	// Create 幂等，返回是否新增
	Create(ctx context.Context, userID, entryID string) (bool, error)
	Delete(ctx context.Context, userID, entryID string) (bool, error)
	Count(ctx context.Context, entryID string) (int64, error)
	// LikedEntryIDs 返回 userID 在 entryIDs 中点过赞的集合
	LikedEntryIDs(ctx context.Context, userID string, entryIDs []string) (map[string]bool, error)
}

type likeRepository struct{ db *gorm.DB }

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, userID, entryID string) (bool, error) {
	l := &model.Like{ID: uuid.New().String(), UserID: userID, EntryID: entryID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(l)
	return res.RowsAffected > 0, res.Error
}

func (r *likeRepository) Delete(ctx context.Context, userID, entryID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND entry_id = ?", userID, entryID).Delete(&model.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *likeRepository) Count(ctx context.Context, entryID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("entry_id = ?", entryID).Count(&cnt).Error
	return cnt, err
}

func (r *likeRepository) LikedEntryIDs(ctx context.Context, userID string, entryIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(entryIDs))
	if len(entryIDs) == 0 {
		return out, nil
	}
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("user_id = ? AND entry_id IN ?", userID, entryIDs).
		Pluck("entry_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
