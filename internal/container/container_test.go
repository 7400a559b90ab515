package container

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"cinelume/internal/config"
	"cinelume/internal/testutil"
	"cinelume/internal/tokenstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, store string) *config.Config {
	t.Helper()
	return &config.Config{
		APIURL:     "http://127.0.0.1:1/api",
		UploadURL:  "http://127.0.0.1:1/upload",
		TokenStore: store,
		TokenFile:  filepath.Join(t.TempDir(), "token"),
		Profile:    "test",
	}
}

func TestNewWithFileStoreRestoresSession(t *testing.T) {
	cfg := testConfig(t, "file")
	token := testutil.SignClaims(t, jwt.MapClaims{"sub": 3, "username": "ana"})
	require.NoError(t, tokenstore.NewFileStore(cfg.TokenFile).Set(context.Background(), token))

	c, err := New(context.Background(), cfg, &bytes.Buffer{}, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &tokenstore.FileStore{}, c.Tokens)
	id, ok := c.Session.Current()
	require.True(t, ok)
	assert.Equal(t, "ana", id.Username)
	assert.Equal(t, "http://127.0.0.1:1/api", c.API.BaseURL())
}

func TestNewWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("R_HOST", mr.Host())
	t.Setenv("R_PORT", mr.Port())

	c, err := New(context.Background(), testConfig(t, "redis"), &bytes.Buffer{}, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Redis)
	require.NoError(t, c.Tokens.Set(context.Background(), "tok"))
	assert.True(t, mr.Exists(tokenstore.Key+":test"))
	assert.False(t, c.Session.LoggedIn())
}

func TestNewUnknownStore(t *testing.T) {
	_, err := New(context.Background(), testConfig(t, "etcd"), &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown token store "etcd"`)
}
