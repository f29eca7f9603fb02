package service

import (
	"context"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/internal/repository"
)

// Profile 用户主页信息
type Profile struct {
	*model.UserSummary
	Followers   int64 `json:"followers"`
	Following   int64 `json:"following"`
	IsFollowing bool  `json:"isFollowing"`
}

// SummaryForgetter 资料变更后清理用户摘要缓存
type SummaryForgetter interface {
	Forget(ctx context.Context, id string)
}

type UserService interface {
	Profile(ctx context.Context, viewerID, userID string) (*Profile, error)
	SetPrivacy(ctx context.Context, userID string, isPrivate bool) (*model.UserSummary, error)
}

type userService struct {
	users     repository.UserRepository
	follows   repository.FollowRepository
	summaries SummaryForgetter
}

func NewUserService(users repository.UserRepository, follows repository.FollowRepository, summaries SummaryForgetter) UserService {
	return &userService{users: users, follows: follows, summaries: summaries}
}

func (s *userService) Profile(ctx context.Context, viewerID, userID string) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "load user")
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	p := &Profile{UserSummary: u.Summary()}
	if p.Followers, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return nil, apperr.Storage(err, "count followers")
	}
	if p.Following, err = s.follows.CountFollowings(ctx, userID); err != nil {
		return nil, apperr.Storage(err, "count following")
	}
	if viewerID != userID {
		if p.IsFollowing, err = s.follows.Exists(ctx, viewerID, userID); err != nil {
			return nil, apperr.Storage(err, "check follow")
		}
	}
	return p, nil
}

func (s *userService) SetPrivacy(ctx context.Context, userID string, isPrivate bool) (*model.UserSummary, error) {
	if err := s.users.SetPrivacy(ctx, userID, isPrivate); err != nil {
		return nil, apperr.Storage(err, "update privacy")
	}
	if s.summaries != nil {
		s.summaries.Forget(ctx, userID)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "load user")
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u.Summary(), nil
}
