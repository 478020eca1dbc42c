package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pakohler/leeroy/jenkins"
	"github.com/spf13/cobra"
)

var (
	buildLimit   int
	artifactDest string
)

var buildsCmd = &cobra.Command{
	Use:   "builds",
	Short: "Work with builds of a job",
}

var buildsListCmd = &cobra.Command{
	Use:   "list <job-name>",
	Short: "List recent builds of a job",
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
		refs := job.Raw.Builds
		if buildLimit > 0 && len(refs) > buildLimit {
			refs = refs[:buildLimit]
		}
		rows := [][]string{}
		var raws []interface{}
		for _, ref := range refs {
			build, err := job.GetBuild(ref.Number)
			if err != nil {
				return err
			}
			if outputType == "json" {
				raws = append(raws, build.Raw)
				continue
			}
			result := build.Raw.Result
			if build.IsRunning() {
				result = "RUNNING"
			}
			rows = append(rows, []string{
				fmt.Sprintf("#%d", build.Number()),
				result,
				build.StartedAt().Format(time.RFC3339),
				(time.Duration(build.Raw.Duration) * time.Millisecond).String(),
			})
		}
		if outputType == "json" {
			return printJSON(raws)
		}
		renderTable([]string{"Build", "Result", "Started", "Duration"}, rows)
		return nil
	},
}

var buildsConsoleCmd = &cobra.Command{
	Use:   "console <job-name> <build-number>",
	Short: "Print a build's console log",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		build, err := resolveBuild(args[0], args[1])
		if err != nil {
			return err
		}
		console, err := build.Console()
		if err != nil {
			return err
		}
		fmt.Print(console)
		return nil
	},
}

var buildsStopCmd = &cobra.Command{
	Use:   "stop <job-name> <build-number>",
	Short: "Abort a running build",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		build, err := resolveBuild(args[0], args[1])
		if err != nil {
			return err
		}
		return build.Stop()
	},
}

var buildsArtifactsCmd = &cobra.Command{
	Use:   "artifacts <job-name> <build-number>",
	Short: "List a build's artifacts, or download them with --dest",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		build, err := resolveBuild(args[0], args[1])
		if err != nil {
			return err
		}
		artifacts := build.Artifacts()
		if artifactDest != "" {
			for _, a := range artifacts {
				if err := a.SaveTo(artifactDest); err != nil {
					return err
				}
			}
			fmt.Printf("downloaded %d artifacts to %s\n", len(artifacts), artifactDest)
			return nil
		}
		if outputType == "json" {
			return printJSON(artifacts)
		}
		rows := [][]string{}
		for _, a := range artifacts {
			rows = append(rows, []string{a.FileName, a.RelativePath})
		}
		renderTable([]string{"File", "Relative Path"}, rows)
		return nil
	},
}

func resolveBuild(jobName, buildNumber string) (*jenkins.Build, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}
	job, err := client.GetJob(jobName)
	if err != nil {
		return nil, err
	}
	n, err := strconv.ParseInt(buildNumber, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("build number %q is not a number", buildNumber)
	}
	return job.GetBuild(int32(n))
}

func init() {
	buildsListCmd.Flags().IntVarP(&buildLimit, "limit", "n", 10, "max builds to list")
	buildsArtifactsCmd.Flags().StringVar(&artifactDest, "dest", "", "download artifacts into this directory")
	buildsCmd.AddCommand(buildsListCmd, buildsConsoleCmd, buildsStopCmd, buildsArtifactsCmd)
	rootCmd.AddCommand(buildsCmd)
}
