package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RatTrap1337/Zoho-Attendance-Manager/internal/token"
	logx "github.com/RatTrap1337/Zoho-Attendance-Manager/pkg/logx"
)

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func setupEnv(t *testing.T, accountsURL, peopleURL, tokenFile string) {
	t.Helper()
	t.Setenv("ZOHO_CLIENT_ID", "cid")
	t.Setenv("ZOHO_CLIENT_SECRET", "csecret")
	t.Setenv("ZOHO_REFRESH_TOKEN", "rtok")
	t.Setenv("ZOHO_ACCOUNTS_URL", accountsURL)
	t.Setenv("ZOHO_PEOPLE_URL", peopleURL)
	t.Setenv("TOKEN_STORE", "file")
	t.Setenv("TOKEN_FILE", tokenFile)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CHECK_IN_CRON", "")
	t.Setenv("CHECK_OUT_CRON", "")
	t.Setenv("HTTP_TIMEOUT", "")
}

func seedToken(t *testing.T, path, access string) {
	t.Helper()
	store, err := token.OpenStore(token.StoreConfig{Driver: "file", Path: path}, logx.Nop())
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), token.Token{
		AccessToken: access,
		ObtainedAt:  time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}))
}

func TestCheckinWithCachedTokenEndToEnd(t *testing.T) {
	var tokenHits, peopleHits atomic.Int64

	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenHits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "unused", "expires_in": 3600})
	}))
	defer accounts.Close()

	var gotAuth string
	var gotForm map[string][]string
	people := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peopleHits.Add(1)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer people.Close()

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	setupEnv(t, accounts.URL, people.URL, tokenFile)
	seedToken(t, tokenFile, "cached-token")

	out, err := execute(t, "checkin")
	require.NoError(t, err)

	assert.Equal(t, int64(0), tokenHits.Load(), "unexpired cached token must not refresh")
	assert.Equal(t, int64(1), peopleHits.Load())
	assert.Equal(t, "Zoho-oauthtoken cached-token", gotAuth)
	assert.Contains(t, gotForm, "checkIn")
	assert.Contains(t, out, `{"status":"success"}`)
}

func TestCheckinFailedRefreshNeverReachesAttendance(t *testing.T) {
	var peopleHits atomic.Int64

	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer accounts.Close()

	people := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peopleHits.Add(1)
	}))
	defer people.Close()

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	setupEnv(t, accounts.URL, people.URL, tokenFile)

	_, err := execute(t, "checkin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_grant")
	assert.Equal(t, int64(0), peopleHits.Load())
}

func TestTestCommandReportsConfiguration(t *testing.T) {
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "fresh", "expires_in": 3600})
	}))
	defer accounts.Close()

	people := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer people.Close()

	tokenFile := filepath.Join(t.TempDir(), "token.json")
	setupEnv(t, accounts.URL, people.URL, tokenFile)

	out, err := execute(t, "test")
	require.NoError(t, err)
	assert.Contains(t, out, "ok    token retrieval")
}

func TestTestCommandFailsOnInvalidSchedule(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")
	setupEnv(t, "http://127.0.0.1:0", "http://127.0.0.1:0", tokenFile)
	t.Setenv("CHECK_IN_CRON", "99 99 * * *")
	t.Setenv("ZOHO_CLIENT_ID", "") // also missing a secret

	out, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL  check-in schedule")
	assert.Contains(t, out, "FAIL  credentials")
}
