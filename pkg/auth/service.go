package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	gwcrypto "github.com/stacklok/mcp-gateway/pkg/crypto"
	gwerrors "github.com/stacklok/mcp-gateway/pkg/errors"
	"github.com/stacklok/mcp-gateway/pkg/logger"
)

// Service implements the auth core: ApiKey lifecycle and JWT mint/validate.
type Service struct {
	repo   Repository
	aead   *gwcrypto.AEAD
	minter *TokenMinter
}

// NewService builds an auth Service over the given repository, AEAD, and
// token minter. All three are process-lifetime singletons.
func NewService(repo Repository, aead *gwcrypto.AEAD, minter *TokenMinter) *Service {
	return &Service{repo: repo, aead: aead, minter: minter}
}

// GenerateAPIKey creates a new raw key of the form "mcp_" + 32 hex chars,
// computes its password-hash and AEAD ciphertext, persists the record, and
// returns the raw key once. The raw key is never retrievable again after
// this call returns.
func (s *Service) GenerateAPIKey(ctx context.Context, name string) (rawKey string, record *ApiKey, err error) {
	suffix := make([]byte, 16)
	if _, err := rand.Read(suffix); err != nil {
		return "", nil, gwerrors.NewInternalError("failed to generate key material", err)
	}
	rawKey = rawKeyPrefix + hex.EncodeToString(suffix)

	hash, err := gwcrypto.HashPassword(rawKey)
	if err != nil {
		return "", nil, gwerrors.NewInternalError("failed to hash key", err)
	}
	ciphertext, err := s.aead.Encrypt([]byte(rawKey))
	if err != nil {
		return "", nil, gwerrors.NewInternalError("failed to encrypt key", err)
	}

	record = &ApiKey{
		ID:         newUUID(),
		Name:       name,
		KeyHash:    hash,
		Ciphertext: ciphertext,
		Active:     true,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return "", nil, gwerrors.NewDatabaseError("failed to persist api key", err)
	}
	return rawKey, record, nil
}

// Authenticate finds the active ApiKey matching raw, stamps its
// last-used-at timestamp, and mints a bearer token.
func (s *Service) Authenticate(ctx context.Context, raw string) (token string, expiresIn int64, err error) {
	keys, err := s.repo.ListActive(ctx)
	if err != nil {
		return "", 0, gwerrors.NewDatabaseError("failed to list active keys", err)
	}

	var matched *ApiKey
	for _, k := range keys {
		if gwcrypto.VerifyPassword(k.KeyHash, raw) {
			matched = k
			break
		}
	}
	if matched == nil {
		return "", 0, gwerrors.NewUnauthorizedError("invalid api key", nil)
	}

	if err := s.repo.UpdateLastUsed(ctx, matched.ID, time.Now()); err != nil {
		logger.Errorf("auth: failed to stamp last_used_at for key %s: %v", matched.ID, err)
	}

	signed, _, err := s.minter.Mint(matched.ID)
	if err != nil {
		return "", 0, err
	}
	return signed, s.minter.TTLSeconds(), nil
}

// Validate verifies the token's signature and expiry, then re-checks that
// the referenced key is still active.
func (s *Service) Validate(ctx context.Context, token string) (Claims, error) {
	claims, err := s.minter.Parse(token)
	if err != nil {
		return Claims{}, err
	}

	key, err := s.repo.FindByID(ctx, claims.Sub)
	if err != nil {
		if gwerrors.IsNotFound(err) {
			return Claims{}, gwerrors.NewUnauthorizedError("unknown subject", nil)
		}
		return Claims{}, gwerrors.NewDatabaseError("failed to look up key", err)
	}
	if !key.Active {
		return Claims{}, gwerrors.NewUnauthorizedError("key revoked", nil)
	}
	return claims, nil
}

// Revoke deactivates an ApiKey; any already-minted token referencing it is
// rejected by Validate from this point on.
func (s *Service) Revoke(ctx context.Context, id string) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return gwerrors.NewDatabaseError("failed to revoke key", err)
	}
	return nil
}

// Rotate deactivates the old key and creates a new one under the same
// display name, returning the new raw key once.
func (s *Service) Rotate(ctx context.Context, id string) (string, *ApiKey, error) {
	old, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", nil, gwerrors.NewNotFoundError(fmt.Sprintf("api key %s not found", id), err)
	}
	raw, record, err := s.GenerateAPIKey(ctx, old.Name)
	if err != nil {
		return "", nil, err
	}
	if err := s.repo.SetActive(ctx, old.ID, false); err != nil {
		return "", nil, gwerrors.NewDatabaseError("failed to deactivate rotated key", err)
	}
	return raw, record, nil
}
