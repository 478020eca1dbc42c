package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var quietDownCmd = &cobra.Command{
	Use:   "quiet-down",
	Short: "Put the master into shutdown-preparation mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.QuietDown()
	},
}

var cancelQuietDownCmd = &cobra.Command{
	Use:   "cancel-quiet-down",
	Short: "Leave shutdown-preparation mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.CancelQuietDown()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the server version",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		fmt.Println(client.Version())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quietDownCmd, cancelQuietDownCmd, versionCmd)
}
