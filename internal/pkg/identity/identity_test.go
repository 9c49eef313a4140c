package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() accessClaims {
	return accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://auth.leadfox.test",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
		},
		Email: "jane@x.com",
	}
}

func TestVerifierAcceptsValidToken(t *testing.T) {
	v := NewVerifier("secret", "https://auth.leadfox.test", "authenticated", func() time.Time { return fixedNow })

	id, err := v.Verify(signToken(t, "secret", jwt.SigningMethodHS256, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "jane@x.com", id.Email)
}

func TestVerifierRejects(t *testing.T) {
	v := NewVerifier("secret", "https://auth.leadfox.test", "authenticated", func() time.Time { return fixedNow })

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(fixedNow.Add(-time.Hour))

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	noSubject := validClaims()
	noSubject.Subject = ""

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not.a.token",
		"wrong secret":   signToken(t, "other", jwt.SigningMethodHS256, validClaims()),
		"wrong method":   signToken(t, "secret", jwt.SigningMethodHS384, validClaims()),
		"expired":        signToken(t, "secret", jwt.SigningMethodHS256, expired),
		"wrong audience": signToken(t, "secret", jwt.SigningMethodHS256, wrongAudience),
		"no subject":     signToken(t, "secret", jwt.SigningMethodHS256, noSubject),
		"no expiry":      signToken(t, "secret", jwt.SigningMethodHS256, noExpiry),
	}
	for name, token := range tests {
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}

	_, err := NewVerifier("", "", "", nil).Verify("x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHTTPDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "svc-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer svc-key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/auth/v1/admin/users/user-1":
			_, _ = w.Write([]byte(`{"id":"user-1","email":"jane@x.com"}`))
		case "/auth/v1/admin/users/boom":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL+"/", "svc-key", time.Second)

	user, err := dir.LookupUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@x.com", user.Email)

	_, err = dir.LookupUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = dir.LookupUser(context.Background(), "boom")
	assert.ErrorContains(t, err, "502")
}

type fakeDirectory struct {
	calls   atomic.Int32
	active  atomic.Int32
	maxSeen atomic.Int32
	fail    string
}

func (f *fakeDirectory) LookupUser(_ context.Context, id string) (*User, error) {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	switch id {
	case f.fail:
		return nil, errors.New("directory down")
	case "ghost":
		return nil, ErrUserNotFound
	}
	return &User{ID: id, Email: id + "@x.com"}, nil
}

type fakeBatch struct {
	fakeDirectory
	batches [][]string
	mu      sync.Mutex
}

func (f *fakeBatch) LookupUsers(_ context.Context, ids []string) (map[string]User, error) {
	f.mu.Lock()
	f.batches = append(f.batches, ids)
	f.mu.Unlock()
	out := map[string]User{}
	for _, id := range ids {
		if id != "ghost" {
			out[id] = User{ID: id, Email: id + "@batch"}
		}
	}
	return out, nil
}

func TestResolverBoundsConcurrency(t *testing.T) {
	dir := &fakeDirectory{}
	r := NewResolver(dir, 2)

	ids := []string{"a", "b", "c", "d", "e", "a", "", "ghost"}
	found, err := r.Resolve(context.Background(), ids)
	require.NoError(t, err)

	assert.Len(t, found, 6)
	assert.Equal(t, "a@x.com", found["a"].Email)
	assert.Equal(t, "", found["ghost"].Email)
	assert.EqualValues(t, 6, dir.calls.Load())
	assert.LessOrEqual(t, dir.maxSeen.Load(), int32(2))
}

func TestResolverPropagatesErrors(t *testing.T) {
	r := NewResolver(&fakeDirectory{fail: "b"}, 4)
	_, err := r.Resolve(context.Background(), []string{"a", "b", "c"})
	assert.ErrorContains(t, err, "directory down")
}

func TestResolverUsesBatch(t *testing.T) {
	dir := &fakeBatch{}
	found, err := NewResolver(dir, 4).Resolve(context.Background(), []string{"a", "b", "ghost"})
	require.NoError(t, err)

	require.Len(t, dir.batches, 1)
	assert.Zero(t, dir.calls.Load())
	assert.Equal(t, "a@batch", found["a"].Email)
	assert.Equal(t, User{ID: "ghost"}, found["ghost"])
}

func TestCachedResolver(t *testing.T) {
	dir := &fakeDirectory{}
	session := NewResolver(dir, 4).Session()

	_, err := session.Resolve(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	user, err := session.Lookup(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = session.Resolve(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, dir.calls.Load())
}
