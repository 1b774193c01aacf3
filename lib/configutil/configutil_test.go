package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server  string `json:"server"`
	Keyring string `json:"keyring"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "outbreak.json5")

	err := os.WriteFile(name, []byte(`{
		// comments are allowed
		server: "https://api.outbreak.info",
		keyring: "/tmp/keyring.db",
	}`), 0o644)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://api.outbreak.info", config.Server)
	require.Equal(t, "/tmp/keyring.db", config.Keyring)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "outbreak.json5")

	err := os.WriteFile(name, []byte(`{
		server: "https://api.outbreak.info",
		keyring: "/tmp/keyring.db",
	}`), 0o644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "outbreak.local.json5"), []byte(`{
		server: "https://dev.outbreak.info",
	}`), 0o644)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://dev.outbreak.info", config.Server)
	require.Equal(t, "/tmp/keyring.db", config.Keyring)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "outbreak.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadRecursively(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	err := os.WriteFile(filepath.Join(dir, "outbreak.json5"), []byte(`{
		server: "https://api.outbreak.info",
	}`), 0o644)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer func() {
		require.NoError(t, os.Chdir(cwd))
	}()

	config, err := ReadRecursively[testConfig]("outbreak.json5")
	require.NoError(t, err)
	require.Equal(t, "https://api.outbreak.info", config.Server)
}
