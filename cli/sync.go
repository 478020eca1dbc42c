package cli

import (
	"github.com/pakohler/leeroy/config"
	"github.com/pakohler/leeroy/jenkins"
	"github.com/pakohler/leeroy/notifications"
	"github.com/pakohler/leeroy/tracking"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the artifact sync daemon",
	Long: `Watch the jobs listed under tracker: in config.yaml and mirror the
artifacts of every new successful build into their sync directories.
Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := config.Get()

		leeroy := jenkins.New().
			SetUser(conf.Jenkins.Username).
			SetToken(conf.Jenkins.Token).
			SetBaseUrl(conf.Jenkins.URL)
		if err := leeroy.Connect(); err != nil {
			return err
		}

		tracker := (&tracking.Tracker{}).
			Init().
			SetClient(leeroy).
			SetInterval(conf.Tracker.Interval)

		if conf.Slack.Webhook != "" {
			tracker.AddNotifier(
				notifications.NewSlackNotifier(conf.Slack.Webhook).SetChannel(conf.Slack.Channel),
			)
		}

		for _, job := range conf.Tracker.TrackedJobs {
			tracker.Track(job)
		}

		tracker.LoadState()
		tracker.Go()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
