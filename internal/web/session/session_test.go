package session

import (
	"testing"
	"time"

	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataspace-exchange/dataspace-backend/internal/db/models"
)

func TestReadWrite(t *testing.T) {
	Init(memory.New())

	data := Data{
		User:  models.User{ID: 42, Username: "alice", KeycloakID: "kc-alice"},
		Roles: []string{"admin", "viewer"},
	}

	key := TokenKey("raw-token")
	require.NoError(t, data.Write(key, time.Minute))

	var got Data

	require.NoError(t, got.Read(key))
	assert.Equal(t, uint64(42), got.User.ID)
	assert.Equal(t, "alice", got.User.Username)
	assert.Equal(t, []string{"admin", "viewer"}, got.Roles)
}

func TestReadMiss(t *testing.T) {
	Init(memory.New())

	var got Data

	assert.Error(t, got.Read(TokenKey("never-cached")))
}

func TestDelete(t *testing.T) {
	Init(memory.New())

	data := Data{User: models.User{ID: 1, Username: "bob"}}
	key := TokenKey("token")

	require.NoError(t, data.Write(key, time.Minute))
	require.NoError(t, Delete(key))

	var got Data

	assert.Error(t, got.Read(key))
}

func TestTokenKeyIsStableAndOpaque(t *testing.T) {
	assert.Equal(t, TokenKey("abc"), TokenKey("abc"))
	assert.NotEqual(t, TokenKey("abc"), TokenKey("abd"))
	assert.Len(t, TokenKey("abc"), 64)
	assert.NotContains(t, TokenKey("secret-token"), "secret")
}
