package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	tm := NewTokenManager("secret", "credit-approval", time.Hour)

	token, err := tm.Generate("ops")
	require.NoError(t, err)

	sub, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", sub)
}

func TestVerifyRejects(t *testing.T) {
	tm := NewTokenManager("secret", "credit-approval", time.Hour)
	token, err := tm.Generate("ops")
	require.NoError(t, err)

	other := NewTokenManager("other", "credit-approval", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := NewTokenManager("secret", "someone-else", time.Hour)
	_, err = wrongIssuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewTokenManager("secret", "credit-approval", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tm.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
