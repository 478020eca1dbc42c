package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Slack posts tracker events to an incoming-webhook URL.
type Slack struct {
	client   *http.Client
	webhook  string
	channel  string
	username string
}

// slackMessage is the incoming-webhook payload. Channel and username
// are optional; the webhook's own defaults apply when they are empty.
type slackMessage struct {
	Text     string `json:"text"`
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
}

func NewSlackNotifier(webhook string) *Slack {
	return &Slack{
		client:   &http.Client{},
		webhook:  webhook,
		username: "leeroy",
	}
}

// SetChannel overrides the channel the webhook posts to.
func (s *Slack) SetChannel(channel string) *Slack {
	s.channel = channel
	return s
}

// SetUsername overrides the sender name shown in Slack.
func (s *Slack) SetUsername(username string) *Slack {
	s.username = username
	return s
}

// Post satisfies the Notifier interface.
func (s *Slack) Post(msg string) error {
	if s.webhook == "" {
		return fmt.Errorf("no slack webhook configured")
	}
	data, err := json.Marshal(slackMessage{
		Text:     msg,
		Channel:  s.channel,
		Username: s.username,
	})
	if err != nil {
		return err
	}
	resp, err := s.client.Post(s.webhook, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook answered %s: %s", resp.Status, string(body))
	}
	return nil
}
