package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var waitForInstall bool

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Work with installed plugins",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		plugins, err := client.GetPlugins()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(plugins))
		for name := range plugins {
			names = append(names, name)
		}
		sort.Strings(names)
		if outputType == "json" {
			ordered := make([]interface{}, 0, len(names))
			for _, name := range names {
				ordered = append(ordered, plugins[name])
			}
			return printJSON(ordered)
		}
		rows := [][]string{}
		for _, name := range names {
			p := plugins[name]
			state := "active"
			if !p.Active {
				state = "inactive"
			}
			update := ""
			if p.HasUpdate {
				update = "update available"
			}
			rows = append(rows, []string{p.ShortName, p.Version, state, update})
		}
		renderTable([]string{"Plugin", "Version", "State", ""}, rows)
		return nil
	},
}

var pluginsInstallCmd = &cobra.Command{
	Use:   "install <short-name[@version]>",
	Short: "Install a plugin from the update center",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		name, version, _ := strings.Cut(args[0], "@")
		if err := client.InstallPlugin(name, version); err != nil {
			return err
		}
		if !waitForInstall {
			fmt.Printf("install of %s requested\n", args[0])
			return nil
		}
		p, err := client.WaitForPlugin(name, 2*time.Second, 5*time.Minute)
		if err != nil {
			return err
		}
		fmt.Printf("installed %s\n", p.Spec())
		return nil
	},
}

var pluginsUninstallCmd = &cobra.Command{
	Use:   "uninstall <short-name>",
	Short: "Uninstall a plugin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.UninstallPlugin(args[0]); err != nil {
			return err
		}
		restart, err := client.RestartRequired()
		if err != nil {
			return err
		}
		if restart {
			fmt.Println("a restart is required to complete the uninstall")
		}
		return nil
	},
}

func init() {
	pluginsInstallCmd.Flags().BoolVar(&waitForInstall, "wait", true, "block until the plugin is active")
	pluginsCmd.AddCommand(pluginsListCmd, pluginsInstallCmd, pluginsUninstallCmd)
	rootCmd.AddCommand(pluginsCmd)
}
