package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/streamlog-backend/internal/domain"
)

// Application keys have the form "<application id>.<secret>". Only a bcrypt
// hash of the secret is stored.

const keySecretBytes = 32

// GenerateAppKey creates a fresh key for appID. It returns the raw key (shown
// once to the operator) and the hash to store.
func GenerateAppKey(appID uuid.UUID) (raw string, hash string, err error) {
	b := make([]byte, keySecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate random bytes: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(b)

	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hash key: %w", err)
	}
	return appID.String() + "." + secret, string(h), nil
}

// SplitAppKey separates a raw key into application id and secret.
func SplitAppKey(raw string) (uuid.UUID, string, error) {
	idPart, secret, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || secret == "" {
		return uuid.Nil, "", fmt.Errorf("malformed key: %w", domain.ErrUnauthorized)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("malformed key id: %w", domain.ErrUnauthorized)
	}
	return id, secret, nil
}

// CompareAppKey checks secret against a stored hash. A nil hash (revoked
// application) never matches.
func CompareAppKey(hash *string, secret string) error {
	if hash == nil {
		return fmt.Errorf("application key revoked: %w", domain.ErrUnauthorized)
	}
	err := bcrypt.CompareHashAndPassword([]byte(*hash), []byte(secret))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("key mismatch: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return fmt.Errorf("compare key: %w: %w", domain.ErrUnauthorized, err)
	}
	return nil
}

// KeyCache remembers keys that recently matched their stored hash so that
// repeated requests skip bcrypt. An entry matches only while the stored hash
// is unchanged, so rotation and revocation (hash set to NULL) take effect on
// the next request, also when done by another process.
type KeyCache struct {
	entries *expirable.LRU[uuid.UUID, verifiedKey]
	compare func(hash *string, secret string) error
}

type verifiedKey struct {
	hash   string
	digest [sha256.Size]byte
}

// NewKeyCache creates a cache of up to size verified keys, each trusted for ttl.
func NewKeyCache(size int, ttl time.Duration) *KeyCache {
	return &KeyCache{
		entries: expirable.NewLRU[uuid.UUID, verifiedKey](size, nil, ttl),
		compare: CompareAppKey,
	}
}

// Compare is CompareAppKey backed by the cache.
func (c *KeyCache) Compare(appID uuid.UUID, hash *string, secret string) error {
	if hash == nil {
		c.entries.Remove(appID)
		return c.compare(nil, secret)
	}

	digest := sha256.Sum256([]byte(secret))
	if v, ok := c.entries.Get(appID); ok && v.hash == *hash &&
		subtle.ConstantTimeCompare(v.digest[:], digest[:]) == 1 {
		return nil
	}

	if err := c.compare(hash, secret); err != nil {
		return err
	}
	c.entries.Add(appID, verifiedKey{hash: *hash, digest: digest})
	return nil
}
