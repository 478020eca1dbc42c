package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Work with lockable resources",
	Long:  `Inspect and reserve resources managed by the lockable-resources plugin.`,
}

var resourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lockable resources and their state",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resources, err := client.GetLockableResources()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(resources))
		for name := range resources {
			names = append(names, name)
		}
		sort.Strings(names)
		if outputType == "json" {
			ordered := make([]interface{}, 0, len(names))
			for _, name := range names {
				ordered = append(ordered, resources[name])
			}
			return printJSON(ordered)
		}
		rows := [][]string{}
		for _, name := range names {
			r := resources[name]
			state := "free"
			switch {
			case r.Reserved:
				state = "reserved"
			case r.Locked:
				state = "locked"
			case !r.Free:
				state = "busy"
			}
			rows = append(rows, []string{r.Name, state, r.Labels, r.ReservedBy})
		}
		renderTable([]string{"Name", "State", "Labels", "Reserved By"}, rows)
		return nil
	},
}

var resourcesReserveCmd = &cobra.Command{
	Use:   "reserve <resource-name>",
	Short: "Reserve a lockable resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resource, err := client.GetLockableResource(args[0])
		if err != nil {
			return err
		}
		if err := resource.Reserve(); err != nil {
			return err
		}
		fmt.Printf("reserved %s\n", resource.Name)
		return nil
	},
}

var resourcesUnreserveCmd = &cobra.Command{
	Use:   "unreserve <resource-name>",
	Short: "Release a reserved lockable resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		resource, err := client.GetLockableResource(args[0])
		if err != nil {
			return err
		}
		return resource.Unreserve()
	},
}

func init() {
	resourcesCmd.AddCommand(resourcesListCmd, resourcesReserveCmd, resourcesUnreserveCmd)
	rootCmd.AddCommand(resourcesCmd)
}
