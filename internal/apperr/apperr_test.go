package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWalksWrappedChain(t *testing.T) {
	base := errors.New("connection reset")
	err := fmt.Errorf("list entries: %w", Storage(base, "query entries"))

	assert.Equal(t, KindStorage, KindOf(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "storage", CodeOf(err))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "internal", CodeOf(errors.New("boom")))
}

func TestPrivateAccountDistinctFromNotFound(t *testing.T) {
	err := fmt.Errorf("entries: %w", ErrPrivateAccount)

	assert.ErrorIs(t, err, ErrPrivateAccount)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.Equal(t, "private_account", CodeOf(err))
	assert.False(t, errors.Is(err, NotFound("user not found")))
	assert.False(t, errors.Is(Forbidden("not yours"), ErrPrivateAccount))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(KindStorage, nil, "noop"))
}

func TestNewSentinelsCompareByCode(t *testing.T) {
	a := New(KindNotFound, "user_not_found", "user not found")
	b := New(KindNotFound, "entry_not_found", "entry not found")
	wrapped := fmt.Errorf("lookup: %w", a)

	assert.True(t, errors.Is(wrapped, a))
	assert.False(t, errors.Is(wrapped, b))
	assert.Equal(t, "user_not_found", CodeOf(wrapped))
}
