// Package auth authenticates gRPC callers by HMAC-protected API keys and
// carries the caller's workspace in the request context.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/solatis/prospector/internal/types"
)

type contextKey string

const workspaceIDKey = contextKey("workspace_id")

// MetadataKey is the gRPC metadata entry holding the API key.
const MetadataKey = "x-api-key"

// Queries is the subset of *db.Queries used for key lookup and issuance.
type Queries interface {
	Get(ctx context.Context, name string, dest any, args ...any) error
	Exec(ctx context.Context, name string, args ...any) (sql.Result, error)
}

// Authenticator validates API keys against hashed keys in api_keys.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewAuthenticator creates an authenticator over secret_id -> secret.
// A nil log discards output.
func NewAuthenticator(secrets map[string][]byte, queries Queries, log *zap.SugaredLogger) *Authenticator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Authenticator{
		secrets: secrets,
		queries: queries,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type keyRow struct {
	APIKeyID    string         `db:"api_key_id"`
	WorkspaceID string         `db:"workspace_id"`
	LastUsedAt  sql.NullString `db:"last_used_at"`
	RevokedAt   sql.NullString `db:"revoked_at"`
}

// Authenticate validates apiKey and returns its workspace id.
func (a *Authenticator) Authenticate(ctx context.Context, apiKey string) (string, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return "", err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return "", ErrUnknownKey
	}

	var row keyRow
	err = a.queries.Get(ctx, "get-api-key-by-hash", &row, ComputeHMAC(secret, apiKey))
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidKey
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if row.RevokedAt.Valid {
		return "", ErrKeyRevoked
	}

	// Throttled to one write per minute per key.
	if a.shouldUpdateLastUsed(row.LastUsedAt) {
		if _, err := a.queries.Exec(ctx, "update-last-used", a.now().Format(time.RFC3339), row.APIKeyID); err != nil {
			a.log.Warnw("failed to update key last use", "api_key_id", row.APIKeyID, "error", err)
		}
	}

	return row.WorkspaceID, nil
}

func (a *Authenticator) shouldUpdateLastUsed(lastUsed sql.NullString) bool {
	if !lastUsed.Valid {
		return true
	}
	t, err := time.Parse(time.RFC3339, lastUsed.String)
	if err != nil {
		return true
	}
	return a.now().Sub(t) > time.Minute
}

// IssueKey creates a key for workspaceID under the newest secret and stores
// its hash. The plaintext key is returned once and never stored.
func (a *Authenticator) IssueKey(ctx context.Context, workspaceID, name string) (apiKeyID, apiKey string, err error) {
	secretID, secret, err := a.currentSecret()
	if err != nil {
		return "", "", err
	}

	apiKey, err = GenerateAPIKey(secretID)
	if err != nil {
		return "", "", err
	}
	apiKeyID = types.NewID()

	_, err = a.queries.Exec(ctx, "insert-api-key", apiKeyID, workspaceID, name, secretID,
		ComputeHMAC(secret, apiKey), a.now().Format(time.RFC3339))
	if err != nil {
		return "", "", fmt.Errorf("failed to store API key: %w", err)
	}
	return apiKeyID, apiKey, nil
}

// RevokeKey marks a key revoked. Revoking twice reports types.ErrNotFound.
func (a *Authenticator) RevokeKey(ctx context.Context, apiKeyID string) error {
	res, err := a.queries.Exec(ctx, "revoke-api-key", a.now().Format(time.RFC3339), apiKeyID)
	if err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("API key %s: %w", apiKeyID, types.ErrNotFound)
	}
	return nil
}

// currentSecret picks the greatest secret id. Secret ids are UUIDv7, so
// that is the most recently created secret.
func (a *Authenticator) currentSecret() (string, []byte, error) {
	if len(a.secrets) == 0 {
		return "", nil, ErrNoSecrets
	}
	ids := make([]string, 0, len(a.secrets))
	for id := range a.secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	id := ids[len(ids)-1]
	return id, a.secrets[id], nil
}

// UnaryInterceptor authenticates every call except the health service and
// stores the workspace id in the handler context.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if isHealthCheck(info.FullMethod) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}
		keys := md.Get(MetadataKey)
		if len(keys) == 0 {
			return nil, status.Error(codes.Unauthenticated, ErrMissingKey.Error())
		}

		workspaceID, err := a.Authenticate(ctx, keys[0])
		switch {
		case err == nil:
		case errors.Is(err, ErrKeyRevoked):
			return nil, status.Error(codes.PermissionDenied, err.Error())
		case errors.Is(err, ErrStorage):
			a.log.Errorw("authentication lookup failed", "method", info.FullMethod, "error", err)
			return nil, status.Error(codes.Unavailable, ErrStorage.Error())
		default:
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(WithWorkspaceID(ctx, workspaceID), req)
	}
}

func isHealthCheck(method string) bool {
	return strings.HasPrefix(method, "/grpc.health.v1.Health/")
}

// WithWorkspaceID returns ctx carrying workspaceID.
func WithWorkspaceID(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, workspaceIDKey, workspaceID)
}

// WorkspaceIDFromContext returns the authenticated workspace, or "".
func WorkspaceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(workspaceIDKey).(string); ok {
		return id
	}
	return ""
}
