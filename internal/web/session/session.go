package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gofiber/storage"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

// Store is the global token cache backend. Validated bearer tokens are
// cached here so repeated requests skip signature verification and the
// database sync.
var Store storage.Storage

// Data is the cached result of one token validation.
type Data struct {
	User  models.User
	Roles []string
}

// Write caches the validation result for the given token key with an
// expiration duration.
func (s *Data) Write(key string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Set(key, out, exp)
}

// Read loads the cached validation result for the given token key.
func (s *Data) Read(key string) error {
	byteData, err := Store.Get(key)
	if err != nil {
		return err
	}

	return json.Unmarshal(byteData, s)
}

// Delete drops the cached entry for the given token key.
func Delete(key string) error {
	return Store.Delete(key)
}

// Init initializes the token cache with the provided storage backend.
func Init(backend storage.Storage) {
	if backend == nil {
		panic("storage is nil")
	}

	Store = backend
}

// TokenKey derives the cache key for a raw bearer token. Raw tokens are
// never used as keys directly.
func TokenKey(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
