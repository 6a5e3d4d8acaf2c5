package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgallion1/lunchbot/internal/calendar"
	"github.com/dgallion1/lunchbot/internal/config"
	"github.com/dgallion1/lunchbot/internal/menu"
	"github.com/dgallion1/lunchbot/internal/parser"
	"github.com/google/uuid"
)

// ErrNotWorkday is returned when a menu is requested for a weekend day.
var ErrNotWorkday = errors.New("no menu on weekends")

// MenuSource supplies the raw menu page for a week and 1-based weekday.
type MenuSource interface {
	Fetch(ctx context.Context, weekStart time.Time, day int) ([]byte, error)
}

// Poster delivers a message to a channel.
type Poster interface {
	PostMessage(ctx context.Context, channel, text string) error
}

// ImageFinder returns an image URL for a search phrase.
type ImageFinder interface {
	Lookup(ctx context.Context, query string) (string, error)
}

// Report is the extracted and rendered menu for one day.
type Report struct {
	Date     time.Time
	Sections []menu.MenuSection
	Dropped  []menu.DroppedBlock
	Text     string
}

// Runner executes lunch runs: fetch, parse, extract, render, post.
type Runner struct {
	source   MenuSource
	poster   Poster
	images   ImageFinder
	log      *slog.Logger
	cfg      config.Config
	renderer *menu.Renderer
	loc      *time.Location
	runs     *RunStore
	now      func() time.Time

	droppedTotal atomic.Int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner wires the collaborators. poster may be nil for preview-only
// use and images may be nil to disable keyword triggers.
func NewRunner(cfg config.Config, source MenuSource, poster Poster, images ImageFinder, log *slog.Logger) (*Runner, error) {
	d, err := menu.NewDiscount(cfg.DiscountRate)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return &Runner{
		source:   source,
		poster:   poster,
		images:   images,
		log:      log,
		cfg:      cfg,
		renderer: menu.NewRenderer(d),
		loc:      loc,
		runs:     NewRunStore(cfg.RunTTL),
		now:      time.Now,
	}, nil
}

// Start launches the run-history cleanup loop.
func (r *Runner) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				r.runs.Cleanup()
			}
		}
	}()
}

// Stop ends the cleanup loop.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// Today returns the current time in the configured zone.
func (r *Runner) Today() time.Time {
	return r.now().In(r.loc)
}

// Location is the zone used to interpret dates.
func (r *Runner) Location() *time.Location {
	return r.loc
}

// Build fetches and renders the menu for day without posting anything.
func (r *Runner) Build(ctx context.Context, day time.Time) (*Report, error) {
	if !calendar.IsWorkday(day) {
		return nil, ErrNotWorkday
	}
	log := r.log.With("date", day.Format(time.DateOnly))

	raw, err := r.source.Fetch(ctx, calendar.WeekStart(day), calendar.Weekday(day))
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	frags, err := parser.ParseMenu(bytes.NewReader(raw), r.cfg.MenuContainerID)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	ex, err := menu.Extract(frags)
	r.recordDropped(log, ex.Dropped)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	rep := &Report{
		Date:     day,
		Sections: ex.Sections,
		Dropped:  ex.Dropped,
		Text:     r.renderer.Render(ex.Sections),
	}
	log.Info("menu extracted", "fragments", len(frags), "sections", len(rep.Sections), "dropped", len(rep.Dropped))
	return rep, nil
}

func (r *Runner) recordDropped(log *slog.Logger, dropped []menu.DroppedBlock) {
	for _, d := range dropped {
		log.Warn("dropped unclassified block", "block", d.Index, "fragments", d.Length)
	}
	r.droppedTotal.Add(int64(len(dropped)))
}

// Run executes the pipeline for day and records the outcome. The returned
// error is non-nil only when the run failed; weekend runs are skipped.
func (r *Runner) Run(ctx context.Context, day time.Time, dryRun bool) (*Run, error) {
	run := newRun(uuid.NewString(), day, dryRun)
	r.runs.Put(run)
	log := r.log.With("run_id", run.ID, "date", run.Date, "dry_run", dryRun)

	if !calendar.IsWorkday(day) {
		log.Info("not a workday, skipping")
		run.SetStatus(StatusSkipped, "gate")
		return run, nil
	}

	if !dryRun && r.poster == nil {
		err := errors.New("no poster configured")
		run.AddError(err.Error())
		run.SetStatus(StatusFailed, "posting")
		return run, err
	}

	run.SetStatus(StatusRunning, "building")
	rep, err := r.Build(ctx, day)
	if err != nil {
		log.Error("build failed", "error", err)
		run.AddError(err.Error())
		run.SetStatus(StatusFailed, "building")
		return run, err
	}
	run.SetReport(rep)

	if dryRun {
		for _, t := range r.matchTriggers(rep.Text) {
			run.AddTriggered(t.Keyword)
		}
		run.SetStatus(StatusDryRun, "done")
		return run, nil
	}

	run.SetStatus(StatusRunning, "posting")
	if err := r.poster.PostMessage(ctx, r.cfg.SlackChannel, rep.Text); err != nil {
		log.Error("post failed", "channel", r.cfg.SlackChannel, "error", err)
		run.AddError(fmt.Sprintf("post: %s", err))
		run.SetStatus(StatusFailed, "posting")
		return run, fmt.Errorf("post: %w", err)
	}
	log.Info("menu posted", "channel", r.cfg.SlackChannel, "sections", len(rep.Sections))

	run.SetStatus(StatusRunning, "triggers")
	for _, t := range r.matchTriggers(rep.Text) {
		if r.images == nil {
			log.Info("trigger matched but image lookup is disabled", "keyword", t.Keyword)
			continue
		}
		if err := r.fireTrigger(ctx, t); err != nil {
			log.Warn("trigger failed", "keyword", t.Keyword, "error", err)
			run.AddError(fmt.Sprintf("trigger %s: %s", t.Keyword, err))
			continue
		}
		log.Info("trigger fired", "keyword", t.Keyword, "channel", t.Channel)
		run.AddTriggered(t.Keyword)
	}

	run.SetStatus(StatusCompleted, "done")
	return run, nil
}

// matchTriggers returns the configured triggers whose keyword occurs in
// text. Each trigger is matched on its own, so triggers sharing a keyword
// all fire.
func (r *Runner) matchTriggers(text string) []config.Trigger {
	var out []config.Trigger
	for _, t := range r.cfg.Triggers {
		if len(menu.MatchKeywords(text, []string{t.Keyword})) > 0 {
			out = append(out, t)
		}
	}
	return out
}

func (r *Runner) fireTrigger(ctx context.Context, t config.Trigger) error {
	query := t.Query
	if query == "" {
		query = t.Keyword
	}
	imageURL, err := r.images.Lookup(ctx, query)
	if err != nil {
		return err
	}
	return r.poster.PostMessage(ctx, t.Channel, imageURL)
}

// GetRun returns a tracked run by ID.
func (r *Runner) GetRun(id string) *Run {
	return r.runs.Get(id)
}

// DroppedBlocksTotal counts unclassified blocks seen since start.
func (r *Runner) DroppedBlocksTotal() int64 {
	return r.droppedTotal.Load()
}
