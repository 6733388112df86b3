package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"formgate/internal/logger"
	pkgerrors "formgate/pkg/errors"
)

const keyPrefix = "fgk_"

type Service struct {
	repo   Repository
	logger logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// Create mints a new key. The plaintext is only present in the returned
// CreatedKey; afterwards only its hash can be checked against.
func (s *Service) Create(ctx context.Context, req CreateKeyRequest) (*CreatedKey, error) {
	plaintext, err := generateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}

	k := &Key{
		Name:      req.Name,
		Prefix:    plaintext[:len(keyPrefix)+8],
		KeyHash:   HashKey(plaintext),
		Enabled:   true,
		ExpiresAt: req.ExpiresAt,
	}

	if err := s.repo.Create(ctx, k); err != nil {
		return nil, err
	}

	return &CreatedKey{Key: *k, Plaintext: plaintext}, nil
}

func (s *Service) List(ctx context.Context) ([]Key, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Validate checks a presented key and returns its record when usable.
// The last-used timestamp is updated best-effort.
func (s *Service) Validate(ctx context.Context, plaintext string) (*Key, error) {
	if plaintext == "" {
		return nil, pkgerrors.ErrUnauthorized.WithDetail("message", "missing api key")
	}

	k, err := s.repo.GetByHash(ctx, HashKey(plaintext))
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.ErrUnauthorized.WithDetail("message", "invalid api key")
		}
		return nil, err
	}

	if !k.Enabled {
		return nil, pkgerrors.ErrUnauthorized.WithDetail("message", "api key disabled")
	}
	if k.ExpiresAt != nil && s.now().After(*k.ExpiresAt) {
		return nil, pkgerrors.ErrUnauthorized.WithDetail("message", "api key expired")
	}

	if err := s.repo.TouchLastUsed(ctx, k.ID); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to update api key last use",
			"error", err,
			"key_id", k.ID,
		)
	}

	return k, nil
}

func HashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func generateKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return keyPrefix + hex.EncodeToString(buf), nil
}
