package service

import (
	"context"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/internal/repository"
)

// CanView 可见性判定：本人可见；公开账号可见；私密账号仅已确认的关注者可见。
// 待处理的关注申请不算关注。
func CanView(viewerID, ownerID string, ownerIsPrivate, followExists bool) bool {
	if viewerID == ownerID {
		return true
	}
	if !ownerIsPrivate {
		return true
	}
	return followExists
}

// Visibility 为直接列出记录的路径加载 owner 并执行 CanView
type Visibility struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewVisibility(users repository.UserRepository, follows repository.FollowRepository) *Visibility {
	return &Visibility{users: users, follows: follows}
}

// Authorize 返回 owner；owner 不存在返回 ErrUserNotFound，不可见返回 apperr.ErrPrivateAccount
func (v *Visibility) Authorize(ctx context.Context, viewerID, ownerID string) (*model.User, error) {
	owner, err := v.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, apperr.Storage(err, "load owner")
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	// 只有私密账号的他人访问才需要查关注关系
	followExists := false
	if viewerID != ownerID && owner.IsPrivate {
		followExists, err = v.follows.Exists(ctx, viewerID, ownerID)
		if err != nil {
			return nil, apperr.Storage(err, "check follow")
		}
	}
	if !CanView(viewerID, ownerID, owner.IsPrivate, followExists) {
		return nil, apperr.ErrPrivateAccount
	}
	return owner, nil
}
