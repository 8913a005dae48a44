package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func TestReadConfigWithLocalOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "config.json5"),
		[]byte(`{
			// default config
			base_url: "https://www.e-bloc.ro",
			username: "user@example.com",
		}`),
		0600,
	)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "config.local.json5"),
		[]byte(`{ password: "hunter2", username: "other@example.com" }`),
		0600,
	)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://www.e-bloc.ro", cfg.BaseUrl)
	require.Equal(t, "other@example.com", cfg.Username)
	require.Equal(t, "hunter2", cfg.Password)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMask(t *testing.T) {
	require.Equal(t, "hun****", Mask("hunter2"))
	require.Equal(t, "ab", Mask("ab"))
	require.Equal(t, "", Mask(""))
}
