package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"MEMBERLINK_ADDR", "DIRECTORY_PAGE_SIZE", "RUN_TIMEOUT", "MAIL_SEND_DELAY", "CORS_ALLOWED_ORIGINS", "DEFAULT_MEMBER_ROLE"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 1000, cfg.Directory.PageSize)
	assert.Equal(t, 100, cfg.Directory.MaxPages)
	assert.Equal(t, 25*time.Second, cfg.Sync.RunTimeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Mail.SendDelay)
	assert.Equal(t, "official", cfg.Sync.DefaultMemberRole)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MEMBERLINK_ADDR", ":9090")
	t.Setenv("DIRECTORY_URL", "https://dir.example.com/")
	t.Setenv("DIRECTORY_PAGE_SIZE", "50")
	t.Setenv("RUN_TIMEOUT", "10s")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.org ,https://b.org,https://a.org,")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "https://dir.example.com", cfg.Directory.URL)
	assert.Equal(t, 50, cfg.Directory.PageSize)
	assert.Equal(t, 10*time.Second, cfg.Sync.RunTimeout)
	assert.Equal(t, []string{"https://a.org", "https://b.org"}, cfg.CORSAllowedOrigins)
}

func TestFromEnvRejectsBadNumbers(t *testing.T) {
	t.Run("page size", func(t *testing.T) {
		t.Setenv("DIRECTORY_PAGE_SIZE", "lots")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DIRECTORY_PAGE_SIZE")
	})

	t.Run("run timeout", func(t *testing.T) {
		t.Setenv("RUN_TIMEOUT", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "RUN_TIMEOUT")
	})
}

func TestValidate(t *testing.T) {
	cfg := Server{Directory: DirectoryConfig{URL: "https://dir", ServiceKey: "k", JWTSecret: "s"}}
	assert.NoError(t, cfg.Validate())

	cfg.Directory.ServiceKey = ""
	assert.ErrorContains(t, cfg.Validate(), "DIRECTORY_SERVICE_KEY")

	cfg = Server{Directory: DirectoryConfig{URL: "https://dir", ServiceKey: "k"}}
	assert.Error(t, cfg.Validate())
}
