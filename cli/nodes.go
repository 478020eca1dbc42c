package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var offlineMessage string

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "Work with Jenkins agents",
}

var nodesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all nodes and their state",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		nodes, err := client.GetNodes()
		if err != nil {
			return err
		}
		if outputType == "json" {
			raws := make([]interface{}, 0, len(nodes))
			for _, n := range nodes {
				raws = append(raws, n.Raw)
			}
			return printJSON(raws)
		}
		rows := [][]string{}
		for _, n := range nodes {
			state := "online"
			if n.Raw.Offline {
				state = "offline"
			}
			idle := "busy"
			if n.Raw.Idle {
				idle = "idle"
			}
			rows = append(rows, []string{
				n.Name,
				state,
				idle,
				strconv.Itoa(n.Raw.NumExecutors),
				n.Raw.OfflineCauseReason,
			})
		}
		renderTable([]string{"Name", "State", "Activity", "Executors", "Offline Reason"}, rows)
		return nil
	},
}

var nodesOfflineCmd = &cobra.Command{
	Use:   "offline <node-name>",
	Short: "Mark a node temporarily offline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		node, err := client.GetNode(args[0])
		if err != nil {
			return err
		}
		return node.SetOffline(offlineMessage)
	},
}

var nodesOnlineCmd = &cobra.Command{
	Use:   "online <node-name>",
	Short: "Bring a temporarily-offline node back online",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		node, err := client.GetNode(args[0])
		if err != nil {
			return err
		}
		return node.SetOnline()
	},
}

var nodesLabelCmd = &cobra.Command{
	Use:   "label <label-name>",
	Short: "Show the nodes and jobs tied to a label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		label, err := client.GetLabel(args[0])
		if err != nil {
			return err
		}
		if outputType == "json" {
			return printJSON(label.Raw)
		}
		rows := [][]string{}
		for _, name := range label.NodeNames() {
			rows = append(rows, []string{"node", name})
		}
		for _, name := range label.JobNames() {
			rows = append(rows, []string{"job", name})
		}
		renderTable([]string{"Kind", "Name"}, rows)
		return nil
	},
}

var nodesDeleteCmd = &cobra.Command{
	Use:   "delete <node-name>",
	Short: "Remove an agent from the instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		node, err := client.GetNode(args[0])
		if err != nil {
			return err
		}
		return node.Delete()
	},
}

func init() {
	nodesOfflineCmd.Flags().StringVarP(&offlineMessage, "message", "m", "taken offline by leeroy", "offline reason shown in the UI")
	nodesCmd.AddCommand(nodesListCmd, nodesOfflineCmd, nodesOnlineCmd, nodesLabelCmd, nodesDeleteCmd)
	rootCmd.AddCommand(nodesCmd)
}
