package commands

import (
	"context"
	"fmt"
	"os"

	"outbreakinfo/lib/configutil"
	"outbreakinfo/lib/keyring"
	"outbreakinfo/lib/outbreakapi"
	"outbreakinfo/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "outbreak-cli",
	Short: "outbreak-cli queries the outbreak.info SARS-CoV-2 API from the terminal.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	// API base url, defaults to the production server
	Server string `json:"server"`
	// path of the sqlite keyring holding bearer tokens
	Keyring string `json:"keyring"`
}

func readConfig() Config {
	cfg, err := configutil.ReadRecursively[Config]("outbreak.json5")
	if os.IsNotExist(err) {
		return Config{}
	}
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func openKeyring(cfg Config) keyring.Store {
	path := cfg.Keyring
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			serviceutil.Fatal("failed to locate home directory", err)
		}
		path = home + "/.outbreak-keyring.db"
	}
	store, err := keyring.Open(path)
	if err != nil {
		serviceutil.Fatal("failed to open keyring", err)
	}
	return store
}

// newClient builds the shared API client: tokens come from the keyring so
// any command works once `outbreak-cli auth` has run.
func newClient() *outbreakapi.Client {
	cfg := readConfig()
	client, err := outbreakapi.NewClient(outbreakapi.ClientOptions{
		BaseURL: cfg.Server,
		Tokens:  openKeyring(cfg),
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize api client", err)
	}
	return client
}
