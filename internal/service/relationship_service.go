package service

import (
	"context"
	"errors"
	"time"

	"github.com/d60-Lab/watchhive/internal/apperr"
	"github.com/d60-Lab/watchhive/internal/model"
	"github.com/d60-Lab/watchhive/internal/repository"
)

// FollowState 关注动作的结果
type FollowState string

const (
	FollowStateFollowing FollowState = "following"
	FollowStatePending   FollowState = "pending"
)

// RelationStatus viewer 与 target 之间的关系
type RelationStatus struct {
	IsFollowing    bool       `json:"isFollowing"`
	FollowedAt     *time.Time `json:"followedAt,omitempty"`
	RequestPending bool       `json:"requestPending"`
	FollowsYou     bool       `json:"followsYou"`
}

type RelationStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// GraphInvalidator 关注关系变化后丢弃 viewer 的信息流关系缓存
type GraphInvalidator interface {
	Invalidate(ctx context.Context, viewerID string)
}

// SummaryLoader 批量加载用户摘要
type SummaryLoader interface {
	Load(ctx context.Context, ids []string) ([]*model.UserSummary, error)
}

// RelationshipService 关系链服务
type RelationshipService interface {
	// Follow 公开账号直接关注；私密账号生成待处理申请
	Follow(ctx context.Context, fromUserID, toUserID string) (FollowState, error)
	// Unfollow 取消关注，同时撤回待处理申请
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	PendingRequests(ctx context.Context, userID string, page, pageSize int) ([]*model.FollowRequest, error)
	AcceptRequest(ctx context.Context, recipientID, requestID string) (*model.FollowRequest, error)
	RejectRequest(ctx context.Context, recipientID, requestID string) (*model.FollowRequest, error)
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]*model.UserSummary, error)
	ListFans(ctx context.Context, userID string, page, pageSize int) ([]*model.UserSummary, error)
	Status(ctx context.Context, viewerID, targetID string) (*RelationStatus, error)
	Stats(ctx context.Context, userID string) (*RelationStats, error)
}

type relationshipService struct {
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	fanRepo     repository.FanRepository
	requestRepo repository.FollowRequestRepository
	replicator  *FanReplicator
	graph       GraphInvalidator
	summaries   SummaryLoader
	now         func() time.Time
}

func NewRelationshipService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	fanRepo repository.FanRepository,
	requestRepo repository.FollowRequestRepository,
	replicator *FanReplicator,
	graph GraphInvalidator,
	summaries SummaryLoader,
) RelationshipService {
	return &relationshipService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		fanRepo:     fanRepo,
		requestRepo: requestRepo,
		replicator:  replicator,
		graph:       graph,
		summaries:   summaries,
		now:         time.Now,
	}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) (FollowState, error) {
	if fromUserID == toUserID {
		return "", ErrFollowSelf
	}
	target, err := s.userRepo.GetByID(ctx, toUserID)
	if err != nil {
		return "", apperr.Storage(err, "load follow target")
	}
	if target == nil {
		return "", ErrUserNotFound
	}
	exists, err := s.followRepo.Exists(ctx, fromUserID, toUserID)
	if err != nil {
		return "", apperr.Storage(err, "check follow")
	}
	if exists {
		return "", ErrAlreadyFollowing
	}

	if target.IsPrivate {
		if err := s.requestFollow(ctx, fromUserID, toUserID); err != nil {
			return "", err
		}
		return FollowStatePending, nil
	}

	if err := s.followRepo.Create(ctx, fromUserID, toUserID); err != nil {
		return "", apperr.Storage(err, "create follow")
	}
	s.afterFollow(ctx, fromUserID, toUserID)
	return FollowStateFollowing, nil
}

// requestFollow 新建申请，或把已结束的申请重新置为 pending
func (s *relationshipService) requestFollow(ctx context.Context, fromUserID, toUserID string) error {
	req, err := s.requestRepo.Get(ctx, fromUserID, toUserID)
	if err != nil {
		return apperr.Storage(err, "load follow request")
	}
	if req == nil {
		req = &model.FollowRequest{SenderID: fromUserID, RecipientID: toUserID, Status: model.FollowRequestPending}
	} else if err := req.Reopen(); err != nil {
		return ErrRequestPending
	}
	if err := s.requestRepo.Save(ctx, req); err != nil {
		return apperr.Storage(err, "save follow request")
	}
	return nil
}

func (s *relationshipService) afterFollow(ctx context.Context, fromUserID, toUserID string) {
	if s.replicator != nil {
		s.replicator.EnqueueAdd(toUserID, fromUserID)
	}
	if s.graph != nil {
		s.graph.Invalidate(ctx, fromUserID)
	}
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
	deleted, err := s.followRepo.Delete(ctx, fromUserID, toUserID)
	if err != nil {
		return apperr.Storage(err, "delete follow")
	}
	cancelled, err := s.requestRepo.CancelPending(ctx, fromUserID, toUserID)
	if err != nil {
		return apperr.Storage(err, "cancel follow request")
	}
	if !deleted && !cancelled {
		return ErrNotFollowing
	}
	if deleted {
		if s.replicator != nil {
			s.replicator.EnqueueRemove(toUserID, fromUserID)
		}
		if s.graph != nil {
			s.graph.Invalidate(ctx, fromUserID)
		}
	}
	return nil
}

func (s *relationshipService) PendingRequests(ctx context.Context, userID string, page, pageSize int) ([]*model.FollowRequest, error) {
	offset, limit := pageWindow(page, pageSize)
	reqs, err := s.requestRepo.ListPending(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperr.Storage(err, "list follow requests")
	}
	return reqs, nil
}

func (s *relationshipService) AcceptRequest(ctx context.Context, recipientID, requestID string) (*model.FollowRequest, error) {
	return s.resolve(ctx, recipientID, requestID, (*model.FollowRequest).Accept)
}

func (s *relationshipService) RejectRequest(ctx context.Context, recipientID, requestID string) (*model.FollowRequest, error) {
	return s.resolve(ctx, recipientID, requestID, (*model.FollowRequest).Reject)
}

func (s *relationshipService) resolve(ctx context.Context, recipientID, requestID string, transition func(*model.FollowRequest, time.Time) error) (*model.FollowRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperr.Storage(err, "load follow request")
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.RecipientID != recipientID {
		return nil, ErrNotRequestHandler
	}
	if err := transition(req, s.now()); err != nil {
		return nil, ErrRequestResolved
	}
	if err := s.requestRepo.Resolve(ctx, req); err != nil {
		if errors.Is(err, repository.ErrRequestNotPending) {
			return nil, ErrRequestResolved
		}
		return nil, apperr.Storage(err, "resolve follow request")
	}
	if req.Status == model.FollowRequestAccepted {
		s.afterFollow(ctx, req.SenderID, req.RecipientID)
	}
	return req, nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]*model.UserSummary, error) {
	offset, limit := pageWindow(page, pageSize)
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperr.Storage(err, "list following")
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.FolloweeID
	}
	return s.hydrate(ctx, ids)
}

// ListFans 读粉丝冗余表，与 follows 之间是最终一致
func (s *relationshipService) ListFans(ctx context.Context, userID string, page, pageSize int) ([]*model.UserSummary, error) {
	offset, limit := pageWindow(page, pageSize)
	items, err := s.fanRepo.ListFans(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperr.Storage(err, "list fans")
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.FanID
	}
	return s.hydrate(ctx, ids)
}

func (s *relationshipService) hydrate(ctx context.Context, ids []string) ([]*model.UserSummary, error) {
	out, err := s.summaries.Load(ctx, ids)
	if err != nil {
		return nil, apperr.Storage(err, "load user summaries")
	}
	return out, nil
}

func (s *relationshipService) Status(ctx context.Context, viewerID, targetID string) (*RelationStatus, error) {
	st := &RelationStatus{}
	f, err := s.followRepo.Get(ctx, viewerID, targetID)
	if err != nil {
		return nil, apperr.Storage(err, "load follow")
	}
	if f != nil {
		st.IsFollowing = true
		st.FollowedAt = &f.CreatedAt
	}
	req, err := s.requestRepo.Get(ctx, viewerID, targetID)
	if err != nil {
		return nil, apperr.Storage(err, "load follow request")
	}
	st.RequestPending = req != nil && req.Status == model.FollowRequestPending
	if st.FollowsYou, err = s.followRepo.Exists(ctx, targetID, viewerID); err != nil {
		return nil, apperr.Storage(err, "check reverse follow")
	}
	return st, nil
}

func (s *relationshipService) Stats(ctx context.Context, userID string) (*RelationStats, error) {
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "count followers")
	}
	following, err := s.followRepo.CountFollowings(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "count following")
	}
	return &RelationStats{Followers: followers, Following: following}, nil
}

func pageWindow(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return (page - 1) * pageSize, pageSize
}
