package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Caller is an authenticated API user.
type Caller struct {
	Username string
}

// Authenticator resolves the caller of a request. It returns nil, nil when the
// request carries no valid credentials.
type Authenticator interface {
	Authenticate(r *http.Request) (*Caller, error)
}

// Policy decides whether a caller may manage a dynamic table: provision it,
// read its form and records, and write records.
type Policy interface {
	CanManage(ctx context.Context, caller *Caller, table string) bool
}

// AnyAuthenticated lets every authenticated caller manage every table.
type AnyAuthenticated struct{}

func (AnyAuthenticated) CanManage(_ context.Context, caller *Caller, _ string) bool {
	return caller != nil
}

// StaticTokens authenticates bearer tokens against a fixed token -> username
// table loaded from configuration.
type StaticTokens struct {
	tokens map[string]string
}

// NewStaticTokens builds an authenticator from "token:username" entries. An
// entry without a username authenticates as "admin".
func NewStaticTokens(entries []string) *StaticTokens {
	tokens := make(map[string]string, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		token, user, found := strings.Cut(e, ":")
		if !found || user == "" {
			user = "admin"
		}
		tokens[token] = user
	}
	return &StaticTokens{tokens: tokens}
}

func (s *StaticTokens) Authenticate(r *http.Request) (*Caller, error) {
	token := BearerToken(r)
	if token == "" {
		return nil, nil
	}
	for known, user := range s.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return &Caller{Username: user}, nil
		}
	}
	return nil, nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type callerKey struct{}

// WithCaller returns a context carrying caller.
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller stored in ctx, or nil.
func CallerFrom(ctx context.Context) *Caller {
	c, _ := ctx.Value(callerKey{}).(*Caller)
	return c
}
