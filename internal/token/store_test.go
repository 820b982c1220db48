package token

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logx "github.com/RatTrap1337/Zoho-Attendance-Manager/pkg/logx"
)

func TestOpenStoreDrivers(t *testing.T) {
	t.Parallel()

	s, err := OpenStore(StoreConfig{Driver: ""}, logx.Nop())
	require.NoError(t, err)
	assert.Nil(t, s, "empty driver disables persistence")

	s, err = OpenStore(StoreConfig{Driver: "none"}, logx.Nop())
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = OpenStore(StoreConfig{Driver: "redis"}, logx.Nop())
	require.Error(t, err)

	_, err = OpenStore(StoreConfig{Driver: "file"}, logx.Nop())
	require.Error(t, err, "file driver requires a path")
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "token.json")
	s, err := OpenStore(StoreConfig{Driver: "file", Path: path}, logx.Nop())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "missing file is not an error")

	tok := Token{
		AccessToken: "abc",
		ObtainedAt:  time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		ExpiresAt:   time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Save(ctx, tok))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tok, *got)
}

func TestFileStorePermissions(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	path := filepath.Join(t.TempDir(), "token.json")
	s, err := OpenStore(StoreConfig{Driver: "file", Path: path}, logx.Nop())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), Token{AccessToken: "abc"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreOverwrite(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "token.json")
	s, err := OpenStore(StoreConfig{Driver: "file", Path: path}, logx.Nop())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, Token{AccessToken: "first", ExpiresAt: time.Now().UTC()}))
	require.NoError(t, s.Save(ctx, Token{AccessToken: "second", ExpiresAt: time.Now().UTC()}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.AccessToken)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "token.db")
	s, err := OpenStore(StoreConfig{Driver: "sqlite", Path: path}, logx.Nop())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	tok := Token{
		AccessToken: "abc",
		ObtainedAt:  time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
		ExpiresAt:   time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Save(ctx, tok))
	require.NoError(t, s.Save(ctx, Token{AccessToken: "next", ObtainedAt: tok.ObtainedAt, ExpiresAt: tok.ExpiresAt}))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "next", got.AccessToken)
	assert.True(t, got.ExpiresAt.Equal(tok.ExpiresAt))
}
