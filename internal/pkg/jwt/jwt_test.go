package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := New("secret", time.Hour)

	token, err := svc.GenerateToken("client-42", "client")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "client-42", claims.Subject)
	assert.Equal(t, "client", claims.Role)
}

func TestService_Rejects(t *testing.T) {
	svc := New("secret", time.Hour)

	other, err := New("other", time.Hour).GenerateToken("client-42", "client")
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := New("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken("client-42", "client")
	require.NoError(t, err)
	_, err = svc.ValidateToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	anon, err := svc.GenerateToken("", "client")
	require.NoError(t, err)
	_, err = svc.ValidateToken(anon)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
