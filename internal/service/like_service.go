package service

import (
	"context"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/repository"
)

var (
	ErrAlreadyLiked = apperr.New(apperr.KindConflict, "already_liked", "you have already liked this entry")
	ErrNotLiked     = apperr.New(apperr.KindNotFound, "not_liked", "you have not liked this entry")
)

type LikeService interface {
	// Like 返回最新点赞数
	Like(ctx context.Context, userID, entryID string) (int64, error)
	Unlike(ctx context.Context, userID, entryID string) (int64, error)
}

type likeService struct {
	entries    repository.EntryRepository
	likes      repository.LikeRepository
	visibility *Visibility
}

func NewLikeService(entries repository.EntryRepository, likes repository.LikeRepository, visibility *Visibility) LikeService {
	return &likeService{entries: entries, likes: likes, visibility: visibility}
}

func (s *likeService) Like(ctx context.Context, userID, entryID string) (int64, error) {
	if err := s.checkVisible(ctx, userID, entryID); err != nil {
		return 0, err
	}
	created, err := s.likes.Create(ctx, userID, entryID)
	if err != nil {
		return 0, apperr.Storage(err, "create like")
	}
	if !created {
		return 0, ErrAlreadyLiked
	}
	return s.count(ctx, entryID)
}

func (s *likeService) Unlike(ctx context.Context, userID, entryID string) (int64, error) {
	removed, err := s.likes.Delete(ctx, userID, entryID)
	if err != nil {
		return 0, apperr.Storage(err, "delete like")
	}
	if !removed {
		return 0, ErrNotLiked
	}
	return s.count(ctx, entryID)
}

func (s *likeService) checkVisible(ctx context.Context, userID, entryID string) error {
	e, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return apperr.Storage(err, "load entry")
	}
	if e == nil {
		return ErrEntryNotFound
	}
	_, err = s.visibility.Authorize(ctx, userID, e.UserID)
	return err
}

func (s *likeService) count(ctx context.Context, entryID string) (int64, error) {
	n, err := s.likes.Count(ctx, entryID)
	if err != nil {
		return 0, apperr.Storage(err, "count likes")
	}
	return n, nil
}
