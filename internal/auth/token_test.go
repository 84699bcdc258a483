package auth

import (
	"context"
	"testing"
	"time"

	apperrors "gatta/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("secret", 0)

	token, err := iss.Issue("pot-1")
	require.NoError(t, err)

	assert.NoError(t, iss.Verify(token, "pot-1"))
	assert.ErrorIs(t, iss.Verify(token, "pot-2"), apperrors.ErrForbidden)
	assert.ErrorIs(t, iss.Verify("", "pot-1"), apperrors.ErrUnauthorized)
	assert.ErrorIs(t, iss.Verify("garbage", "pot-1"), apperrors.ErrUnauthorized)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, err := NewIssuer("other", 0).Issue("pot-1")
	require.NoError(t, err)

	err = NewIssuer("secret", 0).Verify(token, "pot-1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestVerifyRejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	iss.now = func() time.Time { return issued }

	token, err := iss.Issue("pot-1")
	require.NoError(t, err)

	iss.now = time.Now
	assert.ErrorIs(t, iss.Verify(token, "pot-1"), apperrors.ErrUnauthorized)
}

func TestOrganizerContext(t *testing.T) {
	ctx := WithOrganizer(context.Background(), "pot-1")
	assert.True(t, IsOrganizer(ctx, "pot-1"))
	assert.False(t, IsOrganizer(ctx, "pot-2"))
	assert.False(t, IsOrganizer(context.Background(), "pot-1"))
}
