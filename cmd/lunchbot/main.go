package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/lunchbot/internal/config"
	"github.com/dgallion1/lunchbot/internal/fetch"
	"github.com/dgallion1/lunchbot/internal/images"
	"github.com/dgallion1/lunchbot/internal/pipeline"
	"github.com/dgallion1/lunchbot/internal/slack"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "lunchbot",
	Short:         "Post the cafeteria menu to Slack",
	Long:          `lunchbot fetches the day's cafeteria menu, applies the employee discount and posts it to Slack.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the wired collaborators for one process.
type app struct {
	runner  *pipeline.Runner
	fetcher *fetch.Client
	slack   *slack.Client
	images  *images.Client
}

// newApp wires clients for a validated cfg. Slack is wired
// only when post is true; image lookup only when triggers are enabled.
func newApp(cfg config.Config, log *slog.Logger, post bool) (*app, error) {
	a := &app{
		fetcher: fetch.NewClient(fetch.Config{
			URLTemplate: cfg.MenuURLTemplate,
			Timeout:     cfg.FetchTimeout,
		}),
	}

	var poster pipeline.Poster
	if post {
		a.slack = slack.NewClient(cfg.SlackBaseURL, cfg.SlackToken, cfg.SlackUsername)
		poster = a.slack
	}

	var finder pipeline.ImageFinder
	if cfg.TriggersEnabled() {
		a.images = images.NewClient(cfg.GiphyBaseURL, cfg.GiphyAPIKey)
		finder = a.images
	}

	runner, err := pipeline.NewRunner(cfg, a.fetcher, poster, finder, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.runner = runner
	return a, nil
}

func (a *app) Close() {
	a.fetcher.Close()
	if a.slack != nil {
		a.slack.Close()
	}
	if a.images != nil {
		a.images.Close()
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
