package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var buildParams []string

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Work with Jenkins jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all top-level jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		jobs, err := client.GetJobs()
		if err != nil {
			return err
		}
		if outputType == "json" {
			raws := make([]interface{}, 0, len(jobs))
			for _, job := range jobs {
				raws = append(raws, job.Raw)
			}
			return printJSON(raws)
		}
		rows := [][]string{}
		for _, job := range jobs {
			rows = append(rows, []string{job.Name(), job.Raw.Color, job.Raw.Url})
		}
		renderTable([]string{"Name", "Color", "URL"}, rows)
		return nil
	},
}

var jobsGetCmd = &cobra.Command{
	Use:   "get <job-name>",
	Short: "Show a job's full document",
	Long:  `Show a job's api/json document. Folder paths use "/", e.g. "platform/nightly".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		job, err := client.GetJob(args[0])
		if err != nil {
			return err
		}
		return printJSON(job.Raw)
	},
}

var jobsBuildCmd = &cobra.Command{
	Use:   "build <job-name>",
	Short: "Trigger a build and wait for it to start",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		job, err := client.GetJob(args[0])
		if err != nil {
			return err
		}
		params := map[string]string{}
		for _, p := range buildParams {
			k, v, found := strings.Cut(p, "=")
			if !found {
				return fmt.Errorf("parameter %q is not of the form key=value", p)
			}
			params[k] = v
		}
		ref, err := job.Invoke(params)
		if err != nil {
			return err
		}
		fmt.Printf("queued as item %d; waiting for executor...\n", ref.Id)
		build, err := ref.WaitForBuild(job, 2*time.Second, 5*time.Minute)
		if err != nil {
			return err
		}
		fmt.Printf("building: %s\n", build.Raw.Url)
		return nil
	},
}

var jobsCopyCmd = &cobra.Command{
	Use:   "copy <source-job> <new-job>",
	Short: "Copy an existing job under a new name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		job, err := client.CopyJob(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", job.Raw.Url)
		return nil
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-name>",
	Short: "Delete a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.DeleteJob(args[0])
	},
}

var jobsEnableCmd = &cobra.Command{
	Use:   "enable <job-name>",
	Short: "Enable a disabled job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobOp(args[0], true)
	},
}

var jobsDisableCmd = &cobra.Command{
	Use:   "disable <job-name>",
	Short: "Disable a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return jobOp(args[0], false)
	},
}

var jobsConfigCmd = &cobra.Command{
	Use:   "config <job-name> [config-file]",
	Short: "Print a job's config.xml, or replace it from a file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		job, err := client.GetJob(args[0])
		if err != nil {
			return err
		}
		if len(args) == 1 {
			xml, err := job.Config()
			if err != nil {
				return err
			}
			fmt.Print(xml)
			return nil
		}
		xml, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		return job.SetConfig(string(xml))
	},
}

func jobOp(name string, enable bool) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	job, err := client.GetJob(name)
	if err != nil {
		return err
	}
	if enable {
		return job.Enable()
	}
	return job.Disable()
}

func init() {
	jobsBuildCmd.Flags().StringArrayVarP(&buildParams, "param", "p", nil, "build parameter key=value (repeatable)")
	jobsCmd.AddCommand(jobsListCmd, jobsGetCmd, jobsBuildCmd, jobsCopyCmd, jobsDeleteCmd, jobsEnableCmd, jobsDisableCmd, jobsConfigCmd)
	rootCmd.AddCommand(jobsCmd)
}
