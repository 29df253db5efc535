package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"leadbot/internal/content"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `
telegram:
  token: "123:abc"
onboarding:
  channel: "@coach_channel"
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	require.Equal(t, "longpoll", cfg.Core.Telegram.RunMode)
	require.Equal(t, "@coach_channel", cfg.Onboarding.Channel)
	require.Equal(t, "https://t.me/coach_channel", cfg.Onboarding.ChannelURL)
	require.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	require.False(t, cfg.DatabaseEnabled())

	// Catalog defaults are filled in.
	require.NotEmpty(t, cfg.Content.Texts.Welcome)
	require.NotEmpty(t, cfg.Content.Menu)
}

func TestMissingTokenFailsFast(t *testing.T) {
	_, err := Load(writeConfig(t, `
onboarding:
  channel: "@coach_channel"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "token")
}

func TestMissingChannelFailsFast(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "onboarding.channel")
}

func TestNumericChannelRequiresURL(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
onboarding:
  channel: "-1001234567890"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "channel_url")
}

func TestBadgerBackendRequiresDir(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
session:
  backend: badger
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "session.dir")
}

func TestDatabaseDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
database:
  host: localhost
  user: leadbot
  name: leadbot
`))
	require.NoError(t, err)
	require.True(t, cfg.DatabaseEnabled())
	require.Equal(t, "5432", cfg.Database.Port)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, 4, cfg.Database.MaxConnections)
}

func TestContentOverride(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
content:
  menu:
    - token: custom
      label: "Custom"
      kind: text
      payload: "hello"
`))
	require.NoError(t, err)
	require.Len(t, cfg.Content.Menu, 1)
	require.Equal(t, content.KindText, cfg.Content.Menu[0].Kind)
	// Texts still come from defaults.
	require.NotEmpty(t, cfg.Content.Texts.MenuFallback)
}

func TestInvalidMenuKindRejected(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
content:
  menu:
    - token: custom
      label: "Custom"
      kind: video
      payload: "x"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown kind")
}

func TestAdminChatFallback(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 555
onboarding:
  channel: "@coach_channel"
`))
	require.NoError(t, err)
	require.Equal(t, int64(555), cfg.AdminChatID())

	cfg.Onboarding.AdminChatID = 777
	require.Equal(t, int64(777), cfg.AdminChatID())
}
