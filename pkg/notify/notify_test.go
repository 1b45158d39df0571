package notify

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"trace":   LevelTrace,
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSlackNotify(t *testing.T) {
	var got slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
	}))
	defer srv.Close()

	s := NewSlack(SlackConfig{
		URL:      srv.URL,
		Channel:  "#crawler",
		Mention:  "<!here>",
		MinLevel: LevelInfo,
	}, "nightly-news")

	require.NoError(t, s.Notify(LevelInfo, "run summary", "finished 6 tasks"))
	assert.Equal(t, "#crawler", got.Channel)
	assert.Equal(t, "corvus - nightly-news", got.Username)
	assert.Equal(t, "<!here> *`[INFO] run summary`*\n ```finished 6 tasks```", got.Text)
}

func TestSlackSkipsBelowMinLevel(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	s := NewSlack(SlackConfig{URL: srv.URL, Channel: "#c", MinLevel: LevelError}, "x")
	require.NoError(t, s.Notify(LevelInfo, "ignored", "msg"))
	assert.False(t, called)
}

func TestSlackWebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer srv.Close()

	s := NewSlack(SlackConfig{URL: srv.URL, Channel: "#c"}, "x")
	err := s.Notify(LevelError, "label", "msg")
	assert.ErrorContains(t, err, "404")
}

type failingSink struct{ calls int }

func (f *failingSink) Notify(level Level, label, message string) error {
	f.calls++
	return errors.New("down")
}

func TestMultiContinuesPastFailures(t *testing.T) {
	a, b := &failingSink{}, &failingSink{}
	m := NewMulti(nil, a, b)
	require.NoError(t, m.Notify(LevelInfo, "l", "m"))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}
