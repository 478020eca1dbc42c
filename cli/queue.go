package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Work with the build queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending queue items",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		items, err := client.GetQueue()
		if err != nil {
			return err
		}
		if outputType == "json" {
			return printJSON(items)
		}
		rows := [][]string{}
		for _, item := range items {
			rows = append(rows, []string{
				strconv.FormatInt(item.Id, 10),
				item.Task.Name,
				time.UnixMilli(item.InQueueSince).Format(time.RFC3339),
				item.Why,
			})
		}
		renderTable([]string{"ID", "Job", "Queued Since", "Why"}, rows)
		return nil
	},
}

var queueCancelCmd = &cobra.Command{
	Use:   "cancel <item-id>",
	Short: "Cancel a pending queue item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		return client.CancelQueueItem(id)
	},
}

func init() {
	queueCmd.AddCommand(queueListCmd, queueCancelCmd)
	rootCmd.AddCommand(queueCmd)
}
