package commands

import (
	"fmt"
	"time"

	"outbreakinfo/lib/outbreakapi"
	"outbreakinfo/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticates against the API with GISAID credentials and stores the token.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()
		store := openKeyring(cfg)

		client, err := outbreakapi.NewClient(outbreakapi.ClientOptions{
			BaseURL: cfg.Server,
		})
		if err != nil {
			serviceutil.Fatal("failed to initialize api client", err)
		}

		session, err := client.StartAuthentication(ctx)
		if err != nil {
			serviceutil.Fatal("failed to start authentication", err)
		}

		fmt.Println("Please open the following page and confirm your GISAID credentials:")
		fmt.Println()
		fmt.Println("    " + session.URL)
		fmt.Println()
		fmt.Println("Waiting for confirmation...")

		token, err := client.WaitForAuthentication(ctx, session, 5*time.Second)
		if err != nil {
			serviceutil.Fatal("failed to authenticate", err)
		}

		err = store.SetToken(ctx, client.Host(), token, time.Time{})
		if err != nil {
			serviceutil.Fatal("failed to store token", err)
		}
		fmt.Println("Authenticated. Token stored for", client.Host())
	},
}
