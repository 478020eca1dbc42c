package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pakohler/leeroy/config"
	"github.com/pakohler/leeroy/jenkins"
	"github.com/spf13/cobra"
)

var (
	flagURL    string
	flagUser   string
	flagToken  string
	outputType string
)

var rootCmd = &cobra.Command{
	Use:   "leeroy",
	Short: "A typed client for the Jenkins REST API",
	Long: `leeroy wraps the Jenkins REST API: jobs, builds, artifacts, views,
nodes, plugins, credentials and the build queue.

Connection settings come from flags, then the JENKINS_URL /
JENKINS_USER / JENKINS_TOKEN environment variables, then config.yaml
next to the binary.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Jenkins base URL")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "Jenkins username")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Jenkins API token or password")
	rootCmd.PersistentFlags().StringVarP(&outputType, "output", "o", "table", "output format: table or json")
}

// newClient builds a connected client from flags, environment, or the
// config file, in that order.
func newClient() (*jenkins.JenkinsAPIClient, error) {
	url, user, token := flagURL, flagUser, flagToken
	if url == "" {
		url = os.Getenv("JENKINS_URL")
	}
	if user == "" {
		user = os.Getenv("JENKINS_USER")
	}
	if token == "" {
		token = os.Getenv("JENKINS_TOKEN")
	}
	if url == "" {
		conf := config.Get()
		url = conf.Jenkins.URL
		if user == "" {
			user = conf.Jenkins.Username
		}
		if token == "" {
			token = conf.Jenkins.Token
		}
	}
	client := jenkins.New().
		SetUser(user).
		SetToken(token).
		SetBaseUrl(url)
	if err := client.Connect(); err != nil {
		return nil, err
	}
	return client, nil
}

var tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

func renderTable(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers(headers...).
		Rows(rows...)
	fmt.Println(t)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
