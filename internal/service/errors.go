package service

import "github.com/d60-Lab/watchhive/internal/apperr"

var (
	ErrFollowSelf        = apperr.New(apperr.KindInvalid, "follow_self", "cannot follow yourself")
	ErrAlreadyFollowing  = apperr.New(apperr.KindConflict, "already_following", "already following this user")
	ErrRequestPending    = apperr.New(apperr.KindConflict, "request_pending", "follow request already pending")
	ErrNotFollowing      = apperr.New(apperr.KindNotFound, "not_following", "not following this user")
	ErrUserNotFound      = apperr.New(apperr.KindNotFound, "user_not_found", "user not found")
	ErrEntryNotFound     = apperr.New(apperr.KindNotFound, "entry_not_found", "entry not found")
	ErrRequestNotFound   = apperr.New(apperr.KindNotFound, "request_not_found", "follow request not found")
	ErrRequestResolved   = apperr.New(apperr.KindConflict, "request_resolved", "follow request already resolved")
	ErrNotRequestHandler = apperr.New(apperr.KindForbidden, "not_recipient", "only the recipient can respond to this request")
)
