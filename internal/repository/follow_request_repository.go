package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/watchhive/internal/model"
)

// ErrRequestNotPending 申请已被其他请求处理
var ErrRequestNotPending = errors.New("follow request is no longer pending")

type FollowRequestRepository interface {
	// Get 按 (sender, recipient) 查找，不存在时返回 nil, nil
	Get(ctx context.Context, senderID, recipientID string) (*model.FollowRequest, error)
	GetByID(ctx context.Context, id string) (*model.FollowRequest, error)
	// Save 新建或覆盖已有申请行
	Save(ctx context.Context, req *model.FollowRequest) error
	ListPending(ctx context.Context, recipientID string, offset, limit int) ([]*model.FollowRequest, error)
	// Resolve 仅当库中仍为 pending 时持久化申请状态，否则返回 ErrRequestNotPending；
	// 状态为 accepted 时在同一事务内建立关注关系
	Resolve(ctx context.Context, req *model.FollowRequest) error
	// CancelPending 撤回 sender 发出的待处理申请，返回是否存在
	CancelPending(ctx context.Context, senderID, recipientID string) (bool, error)
}

type followRequestRepository struct{ db *gorm.DB }

func NewFollowRequestRepository(db *gorm.DB) FollowRequestRepository {
	return &followRequestRepository{db: db}
}

func (r *followRequestRepository) Get(ctx context.Context, senderID, recipientID string) (*model.FollowRequest, error) {
	return r.first(r.db.WithContext(ctx).Where("sender_id = ? AND recipient_id = ?", senderID, recipientID))
}

func (r *followRequestRepository) GetByID(ctx context.Context, id string) (*model.FollowRequest, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *followRequestRepository) first(q *gorm.DB) (*model.FollowRequest, error) {
	var req model.FollowRequest
	err := q.First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *followRequestRepository) Save(ctx context.Context, req *model.FollowRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *followRequestRepository) ListPending(ctx context.Context, recipientID string, offset, limit int) ([]*model.FollowRequest, error) {
	var res []*model.FollowRequest
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ? AND status = ?", recipientID, model.FollowRequestPending).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followRequestRepository) Resolve(ctx context.Context, req *model.FollowRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.FollowRequest{}).
			Where("id = ? AND status = ?", req.ID, model.FollowRequestPending).
			Updates(map[string]any{"status": req.Status, "responded_at": req.RespondedAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrRequestNotPending
		}
		if req.Status != model.FollowRequestAccepted {
			return nil
		}
		return createFollow(tx, req.SenderID, req.RecipientID)
	})
}

func (r *followRequestRepository) CancelPending(ctx context.Context, senderID, recipientID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("sender_id = ? AND recipient_id = ? AND status = ?", senderID, recipientID, model.FollowRequestPending).
		Delete(&model.FollowRequest{})
	return res.RowsAffected > 0, res.Error
}
