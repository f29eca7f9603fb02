package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/watchhive/internal/model"
)

// CommentRepository 评论只参与互动计数，读写接口保持最小
type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	Count(ctx context.Context, entryID string) (int64, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *commentRepository) Count(ctx context.Context, entryID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("entry_id = ?", entryID).Count(&cnt).Error
	return cnt, err
}
