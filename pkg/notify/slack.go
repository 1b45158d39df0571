package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackConfig configures one incoming-webhook sink.
type SlackConfig struct {
	URL      string `json:"url" yaml:"url"`
	Channel  string `json:"channel" yaml:"channel"`
	Mention  string `json:"mention,omitempty" yaml:"mention,omitempty"`
	MinLevel Level  `json:"-" yaml:"-"`
}

// Slack posts notifications to a Slack incoming webhook. Messages below
// the configured minimum severity are dropped silently.
type Slack struct {
	cfg      SlackConfig
	username string
	hc       *http.Client
}

// NewSlack builds a webhook sink. The crawler name becomes part of the
// posting username so runs are distinguishable in a shared channel.
func NewSlack(cfg SlackConfig, crawlerName string) *Slack {
	return &Slack{
		cfg:      cfg,
		username: "corvus - " + crawlerName,
		hc:       &http.Client{Timeout: 10 * time.Second},
	}
}

type slackPayload struct {
	Channel  string `json:"channel"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

func (s *Slack) Notify(level Level, label, message string) error {
	if level < s.cfg.MinLevel {
		return nil
	}

	text := fmt.Sprintf("*`[%s] %s`*\n ```%s```", level, label, message)
	if s.cfg.Mention != "" {
		text = s.cfg.Mention + " " + text
	}

	body, err := json.Marshal(slackPayload{
		Channel:  s.cfg.Channel,
		Username: s.username,
		Text:     text,
	})
	if err != nil {
		return err
	}

	resp, err := s.hc.Post(s.cfg.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}
