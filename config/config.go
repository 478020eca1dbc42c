package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-yaml/yaml"
	"github.com/pakohler/leeroy/common"
	"github.com/pakohler/leeroy/logging"
	"github.com/pakohler/leeroy/tracking"
)

const configFileName = "config.yaml"

var config *Config

type JenkinsConfig struct {
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
	URL      string `yaml:"url"`
}

type TrackerConfig struct {
	Interval    time.Duration          `yaml:"interval"`
	TrackedJobs []*tracking.TrackedJob `yaml:"tracked_jobs"`
}

type SlackConfig struct {
	Webhook string `yaml:"webhook"`
	Channel string `yaml:"channel"`
}

type Config struct {
	Jenkins JenkinsConfig `yaml:"jenkins"`
	Tracker TrackerConfig `yaml:"tracker"`
	Slack   SlackConfig   `yaml:"slack"`
	LogFile string        `yaml:"log_file"`

	log *logging.Logger
}

func (c *Config) setDefaultValues() *Config {
	c.log.Info.Print("generating example config...")
	c.Jenkins = JenkinsConfig{
		Username: "yourUserName",
		Token:    "yourApiToken",
		URL:      "https://your.jenkins.fqdn/jenkins",
	}
	c.Tracker = TrackerConfig{
		Interval: 10 * time.Minute,
		TrackedJobs: []*tracking.TrackedJob{
			tracking.NewTrackedJob("SomeProject/Build/ABranchOrSomething", "/path/to/dir/to/cache/artifacts"),
		},
	}
	dir := filepath.Dir(c.getFilePath())
	c.LogFile = filepath.Join(dir, "log.txt")
	return c
}

func (c *Config) getFilePath() string {
	dir, err := common.GetExeDir()
	if err != nil {
		c.log.Fatal.Fatal(err)
	}
	return filepath.Join(dir, configFileName)
}

// applyEnvOnly configures the binary from nothing but the well-known
// env vars: no log file and, notably, no example tracked jobs, so
// `sync` does not poll placeholder names forever.
func (c *Config) applyEnvOnly() *Config {
	c.setDefaultValues()
	c.Tracker.TrackedJobs = nil
	c.LogFile = ""
	c.applyEnvOverrides()
	return c
}

// applyEnvOverrides lets the well-known env vars win over the file, so
// CI can point the binary at a throwaway instance without editing yaml.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("JENKINS_URL"); v != "" {
		c.Jenkins.URL = v
	}
	if v := os.Getenv("JENKINS_USER"); v != "" {
		c.Jenkins.Username = v
	}
	if v := os.Getenv("JENKINS_TOKEN"); v != "" {
		c.Jenkins.Token = v
	}
}

func load() *Config {
	c := &Config{}
	c.log = logging.GetLogger()
	configPath := c.getFilePath()
	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		if os.Getenv("JENKINS_URL") != "" {
			// No file, but enough environment to work with.
			return c.applyEnvOnly()
		}
		c.log.Fatal.Print("config file does not exist or is unable to be opened: " + configPath)
		c.setDefaultValues()
		c.save()
		c.log.Fatal.Fatal("please edit the config file at " + configPath + " before running again.")
	}
	if err := yaml.Unmarshal(configBytes, c); err != nil {
		c.log.Fatal.Fatal(err)
	}
	c.applyEnvOverrides()
	if c.LogFile != "" {
		c.log.AddLogFile(c.LogFile)
	}
	c.log.Info.Print("successfully loaded configuration from " + configPath)
	return c
}

func (c *Config) save() {
	configPath := c.getFilePath()
	c.log.Info.Print("saving config to " + configPath)
	yamlBytes, err := yaml.Marshal(c)
	if err != nil {
		c.log.Fatal.Fatal(err)
	}
	if err := os.WriteFile(configPath, yamlBytes, 0600); err != nil {
		c.log.Fatal.Fatal(err)
	}
}

func Get() *Config {
	if config == nil {
		config = load()
	}
	return config
}
