package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", BearerToken(r))

	r.Header.Set("Authorization", "Bearer  abc123 ")
	assert.Equal(t, "abc123", BearerToken(r))

	r.Header.Set("Authorization", "bearer xyz")
	assert.Equal(t, "xyz", BearerToken(r))

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, "", BearerToken(r))
}

func TestStaticTokens(t *testing.T) {
	a := NewStaticTokens([]string{"s3cret:alice", "  ", "bare"})

	r := httptest.NewRequest("GET", "/", nil)
	caller, err := a.Authenticate(r)
	require.NoError(t, err)
	assert.Nil(t, caller)

	r.Header.Set("Authorization", "Bearer s3cret")
	caller, err = a.Authenticate(r)
	require.NoError(t, err)
	require.NotNil(t, caller)
	assert.Equal(t, "alice", caller.Username)

	r.Header.Set("Authorization", "Bearer bare")
	caller, err = a.Authenticate(r)
	require.NoError(t, err)
	require.NotNil(t, caller)
	assert.Equal(t, "admin", caller.Username)

	r.Header.Set("Authorization", "Bearer wrong")
	caller, err = a.Authenticate(r)
	require.NoError(t, err)
	assert.Nil(t, caller)
}

func TestCallerContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, CallerFrom(ctx))

	ctx = WithCaller(ctx, &Caller{Username: "bob"})
	assert.Equal(t, "bob", CallerFrom(ctx).Username)
}

func TestAnyAuthenticated(t *testing.T) {
	p := AnyAuthenticated{}
	assert.True(t, p.CanManage(context.Background(), &Caller{Username: "x"}, "customtable_a"))
	assert.False(t, p.CanManage(context.Background(), nil, "customtable_a"))
}
