package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultURLTemplate is the weekly menu page. {week} is the Monday of the
// week as MM-DD-YYYY and {day} is the 1-based weekday.
const DefaultURLTemplate = "http://dining.guckenheimer.com/clients/informatica/fss/fss.nsf/weeklyMenuLaunch/AJSQ22~{week}/$file/day{day}.htm"

// ErrTooLarge is returned when the menu page exceeds Config.MaxBytes.
var ErrTooLarge = errors.New("menu page too large")

// Config configures the menu fetcher.
type Config struct {
	URLTemplate string
	Timeout     time.Duration // Default: 30s.
	MaxBytes    int64         // Default: 5MB.
	UserAgent   string
}

func (c *Config) defaults() {
	if c.URLTemplate == "" {
		c.URLTemplate = DefaultURLTemplate
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 5 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "lunchbot/1.0"
	}
}

// Client downloads the menu page for a given day.
type Client struct {
	cfg        Config
	httpClient *http.Client

	Stats *Stats
}

func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		Stats: NewStats(time.Hour),
	}
}

// MenuURL fills the template for the week starting at weekStart and the
// 1-based weekday.
func (c *Client) MenuURL(weekStart time.Time, day int) string {
	return strings.NewReplacer(
		"{week}", weekStart.Format("01-02-2006"),
		"{day}", strconv.Itoa(day),
	).Replace(c.cfg.URLTemplate)
}

// Fetch returns the raw menu page for the given week and weekday.
func (c *Client) Fetch(ctx context.Context, weekStart time.Time, day int) ([]byte, error) {
	if day < 1 || day > 7 {
		return nil, fmt.Errorf("weekday out of range: %d", day)
	}
	u := c.MenuURL(weekStart, day)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.Stats.RecordFailure()
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.Stats.RecordFailure()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch menu %s: status %d: %s", u, resp.StatusCode, string(respBody))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBytes+1))
	if err != nil {
		c.Stats.RecordFailure()
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxBytes {
		c.Stats.RecordFailure()
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, u, c.cfg.MaxBytes)
	}
	c.Stats.Record(time.Since(start))
	return body, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
