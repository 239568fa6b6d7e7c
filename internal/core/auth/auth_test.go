package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/solatis/prospector/internal/types"
)

const (
	oldSecretID = "0190a1b2c3d4e5f60718293a4b5c6d7e"
	newSecretID = "0190a1b2c3d4e5f60718293a4b5c6d7f"
)

type storedKey struct {
	row  keyRow
	hash string
}

// fakeQueries keeps api_keys rows in memory.
type fakeQueries struct {
	keys         map[string]*storedKey
	failGet      bool
	failLastUsed bool
	execs        []string
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{keys: map[string]*storedKey{}}
}

func (f *fakeQueries) Get(_ context.Context, name string, dest any, args ...any) error {
	if f.failGet {
		return errors.New("connection refused")
	}
	if name != "get-api-key-by-hash" {
		return errors.New("unexpected query " + name)
	}
	for _, k := range f.keys {
		if k.hash == args[0].(string) {
			*dest.(*keyRow) = k.row
			return nil
		}
	}
	return sql.ErrNoRows
}

type rowsAffected int64

func (rowsAffected) LastInsertId() (int64, error) { return 0, nil }
func (r rowsAffected) RowsAffected() (int64, error) { return int64(r), nil }

func (f *fakeQueries) Exec(_ context.Context, name string, args ...any) (sql.Result, error) {
	f.execs = append(f.execs, name)
	switch name {
	case "insert-api-key":
		id := args[0].(string)
		f.keys[id] = &storedKey{
			row:  keyRow{APIKeyID: id, WorkspaceID: args[1].(string)},
			hash: args[4].(string),
		}
		return rowsAffected(1), nil
	case "update-last-used":
		if f.failLastUsed {
			return nil, errors.New("database is locked")
		}
		k := f.keys[args[1].(string)]
		k.row.LastUsedAt = sql.NullString{String: args[0].(string), Valid: true}
		return rowsAffected(1), nil
	case "revoke-api-key":
		k, ok := f.keys[args[1].(string)]
		if !ok || k.row.RevokedAt.Valid {
			return rowsAffected(0), nil
		}
		k.row.RevokedAt = sql.NullString{String: args[0].(string), Valid: true}
		return rowsAffected(1), nil
	}
	return nil, errors.New("unexpected query " + name)
}

func newTestAuthenticator(t *testing.T) (*Authenticator, *fakeQueries) {
	t.Helper()
	q := newFakeQueries()
	secrets := map[string][]byte{
		oldSecretID: []byte(strings.Repeat("a", 32)),
		newSecretID: []byte(strings.Repeat("b", 32)),
	}
	return NewAuthenticator(secrets, q, zaptest.NewLogger(t).Sugar()), q
}

func TestParseAPIKey(t *testing.T) {
	random := strings.Repeat("0f", 32)
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid", FormatAPIKey(newSecretID, random), false},
		{"wrong prefix", "tk-v1-" + newSecretID + "-" + random, true},
		{"wrong version", "pk-v2-" + newSecretID + "-" + random, true},
		{"short secret id", "pk-v1-abc-" + random, true},
		{"short random", "pk-v1-" + newSecretID + "-abc", true},
		{"uppercase hex", "pk-v1-" + strings.ToUpper(newSecretID) + "-" + random, true},
		{"extra part", FormatAPIKey(newSecretID, random) + "-x", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secretID, randomData, err := ParseAPIKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKeyFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, newSecretID, secretID)
			assert.Equal(t, random, randomData)
		})
	}
}

func TestGenerateAPIKey(t *testing.T) {
	k1, err := GenerateAPIKey(newSecretID)
	require.NoError(t, err)
	k2, err := GenerateAPIKey(newSecretID)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	secretID, _, err := ParseAPIKey(k1)
	require.NoError(t, err)
	assert.Equal(t, newSecretID, secretID)
}

func TestComputeHMAC(t *testing.T) {
	h1 := ComputeHMAC([]byte("secret-one"), "key")
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, ComputeHMAC([]byte("secret-one"), "key"))
	assert.NotEqual(t, h1, ComputeHMAC([]byte("secret-two"), "key"))
}

func TestIssueAndAuthenticate(t *testing.T) {
	a, q := newTestAuthenticator(t)
	ctx := context.Background()

	id, key, err := a.IssueKey(ctx, "ws1", "ci")
	require.NoError(t, err)
	secretID, _, err := ParseAPIKey(key)
	require.NoError(t, err)
	assert.Equal(t, newSecretID, secretID, "keys are issued under the newest secret")

	ws, err := a.Authenticate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "ws1", ws)
	assert.Contains(t, q.execs, "update-last-used")

	// A second call within a minute does not write again.
	q.execs = nil
	_, err = a.Authenticate(ctx, key)
	require.NoError(t, err)
	assert.NotContains(t, q.execs, "update-last-used")

	a.now = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }
	_, err = a.Authenticate(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, q.execs, "update-last-used")

	require.NoError(t, a.RevokeKey(ctx, id))
	_, err = a.Authenticate(ctx, key)
	assert.ErrorIs(t, err, ErrKeyRevoked)
	assert.ErrorIs(t, a.RevokeKey(ctx, id), types.ErrNotFound)
}

func TestAuthenticateFailures(t *testing.T) {
	a, q := newTestAuthenticator(t)
	ctx := context.Background()

	_, err := a.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidKeyFormat)

	unknown, err := GenerateAPIKey("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, unknown)
	assert.ErrorIs(t, err, ErrUnknownKey)

	neverIssued, err := GenerateAPIKey(oldSecretID)
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, neverIssued)
	assert.ErrorIs(t, err, ErrInvalidKey)

	q.failGet = true
	_, err = a.Authenticate(ctx, neverIssued)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestIssueKeyWithoutSecrets(t *testing.T) {
	a := NewAuthenticator(nil, newFakeQueries(), zaptest.NewLogger(t).Sugar())
	_, _, err := a.IssueKey(context.Background(), "ws", "x")
	assert.ErrorIs(t, err, ErrNoSecrets)
}

func TestUnaryInterceptor(t *testing.T) {
	a, q := newTestAuthenticator(t)
	ctx := context.Background()
	_, key, err := a.IssueKey(ctx, "ws1", "ci")
	require.NoError(t, err)
	revokedID, revokedKey, err := a.IssueKey(ctx, "ws1", "old")
	require.NoError(t, err)
	require.NoError(t, a.RevokeKey(ctx, revokedID))

	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = WorkspaceIDFromContext(ctx)
		return "ok", nil
	}
	interceptor := a.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/prospector.filter.v1.FilterAPI/FilterLeads"}
	withKey := func(k string) context.Context {
		return metadata.NewIncomingContext(ctx, metadata.Pairs(MetadataKey, k))
	}

	tests := []struct {
		name     string
		ctx      context.Context
		method   string
		failGet  bool
		wantCode codes.Code
	}{
		{"valid key", withKey(key), info.FullMethod, false, codes.OK},
		{"no metadata", ctx, info.FullMethod, false, codes.Unauthenticated},
		{"no key", metadata.NewIncomingContext(ctx, metadata.MD{}), info.FullMethod, false, codes.Unauthenticated},
		{"bad key", withKey("pk-v1-nope"), info.FullMethod, false, codes.Unauthenticated},
		{"revoked key", withKey(revokedKey), info.FullMethod, false, codes.PermissionDenied},
		{"storage down", withKey(key), info.FullMethod, true, codes.Unavailable},
		{"health check", ctx, "/grpc.health.v1.Health/Check", false, codes.OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			q.failGet = tt.failGet
			_, err := interceptor(tt.ctx, nil, &grpc.UnaryServerInfo{FullMethod: tt.method}, handler)
			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK && tt.method == info.FullMethod {
				assert.Equal(t, "ws1", seen)
			}
		})
	}
}

func TestWorkspaceIDFromContext(t *testing.T) {
	assert.Empty(t, WorkspaceIDFromContext(context.Background()))
	assert.Equal(t, "ws", WorkspaceIDFromContext(WithWorkspaceID(context.Background(), "ws")))
}

func TestAuthenticate_NilLoggerSurvivesLastUsedFailure(t *testing.T) {
	q := newFakeQueries()
	secrets := map[string][]byte{newSecretID: []byte(strings.Repeat("b", 32))}
	a := NewAuthenticator(secrets, q, nil)
	ctx := context.Background()

	_, key, err := a.IssueKey(ctx, "ws1", "ci")
	require.NoError(t, err)

	q.failLastUsed = true
	var ws string
	require.NotPanics(t, func() {
		ws, err = a.Authenticate(ctx, key)
	})
	require.NoError(t, err)
	assert.Equal(t, "ws1", ws)
	assert.Contains(t, q.execs, "update-last-used")
}
