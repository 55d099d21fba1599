package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	i := NewIssuer("secret", time.Hour)

	token, err := i.Issue("u1", "ana")
	require.NoError(t, err)
	claims, err := i.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, "u1", string(claims.UserID))
	assert.Equal(t, "ana", claims.Name)
}

func TestVerifyRejects(t *testing.T) {
	i := NewIssuer("secret", time.Hour)
	other := NewIssuer("other", time.Hour)
	foreign, err := other.Issue("u1", "")
	require.NoError(t, err)

	expiring := NewIssuer("secret", time.Minute)
	expiring.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiring.Issue("u1", "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong secret", foreign, ErrInvalidToken},
		{"expired", expired, ErrExpiredToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := i.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		target string
		want   string
		err    error
	}{
		{name: "bearer header", header: "Bearer abc", target: "/", want: "abc"},
		{name: "query parameter", target: "/ws?token=xyz", want: "xyz"},
		{name: "header wins", header: "Bearer abc", target: "/ws?token=xyz", want: "abc"},
		{name: "wrong scheme", header: "Basic abc", target: "/", err: ErrInvalidToken},
		{name: "missing", target: "/", err: ErrMissingToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := TokenFromRequest(r)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClaimsContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{UserID: "u1"})
	c, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", string(c.UserID))
}

func TestPeekIgnoresSignature(t *testing.T) {
	token, err := NewIssuer("one", time.Hour).Issue("u7", "Kai")
	require.NoError(t, err)

	c, err := Peek(token)
	require.NoError(t, err)
	assert.Equal(t, "u7", string(c.UserID))
	assert.Equal(t, "Kai", c.Name)

	_, err = Peek("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
