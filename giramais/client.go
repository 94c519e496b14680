// Package giramais talks to the Gira+ back end: usage statistics, trip and
// error reports, bike ratings and the message of the day.
//
// Statistics calls respect the user's settings. They return
// ErrReportingDisabled without touching the network when analytics (or, for
// ratings, rating reports) are switched off, or when the client runs in
// development mode. Every request goes through the retrying HTTP client.
package giramais

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/giraplus/giraplus-go/build"
	"github.com/giraplus/giraplus-go/envutil"
	"github.com/giraplus/giraplus-go/http/retryable"
	"github.com/giraplus/giraplus-go/knownerrors"
	"github.com/giraplus/giraplus-go/logger"
	"github.com/giraplus/giraplus-go/settings"
	"golang.org/x/text/language"
)

const envDev = "dev"

var (
	ErrReportingDisabled = errors.New("reporting disabled")
	ErrMissingBaseURL    = errors.New("GIRA_API_URL is not set")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrBadResponse       = errors.New("malformed response")
)

type Client struct {
	baseURL        string
	version        string
	device         Device
	settings       settings.Provider
	dev            *bool
	http           *retryable.Client
	classification retryable.Classification
	systemLanguage func(ctx context.Context) language.Tag
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithVersion overrides the app version sent in reports and the
// User-Agent.
func WithVersion(v string) Option {
	return func(c *Client) {
		c.version = v
	}
}

func WithDevice(d Device) Option {
	return func(c *Client) {
		c.device = d
	}
}

func WithSettings(p settings.Provider) Option {
	return func(c *Client) {
		c.settings = p
	}
}

// WithDev marks a development build, which never reports statistics. It
// takes precedence over GIRA_ENV.
func WithDev(dev bool) Option {
	return func(c *Client) {
		c.dev = &dev
	}
}

func WithHTTPClient(h *retryable.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithClassification replaces the known-errors catalog as the source of
// fatal error identifiers.
func WithClassification(cls retryable.Classification) Option {
	return func(c *Client) {
		c.classification = cls
	}
}

// WithSystemLanguage sets how the device language is found when the locale
// setting is "system".
func WithSystemLanguage(f func(ctx context.Context) language.Tag) Option {
	return func(c *Client) {
		c.systemLanguage = f
	}
}

// NewClient builds a client. Unset options come from the environment:
// GIRA_API_URL, GIRA_ENV (dev disables reporting), GIRA_DEVICE_ID and
// GIRA_SETTINGS_*.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.baseURL == "" {
		u, err := envutil.URL(ctx, "GIRA_API_URL", envutil.IfMissing[*url.URL](ErrMissingBaseURL)).Value()
		if err != nil {
			return nil, err
		}

		c.baseURL = strings.TrimRight(u.String(), "/")
	}

	if c.version == "" {
		c.version = build.AppVersion()
	}

	if c.device == nil {
		c.device = HostDevice(ctx)
	}

	if c.settings == nil {
		c.settings = settings.FromStore(settings.EnvStore{})
	}

	if c.dev == nil {
		dev := envutil.String(ctx, "GIRA_ENV").ValueOrElse("") == envDev
		c.dev = &dev
	}

	if c.classification == nil {
		c.classification = knownerrors.Default().Classification()
	}

	if c.http == nil {
		c.http = retryable.NewClient(ctx, retryable.WithDefaultClassification(c.classification))
	}

	if c.systemLanguage == nil {
		c.systemLanguage = settings.SystemLanguage
	}

	return c, nil
}

// ReportAppUsage records that the app was opened.
func (c *Client) ReportAppUsage(ctx context.Context) (*StatisticsResponse, error) {
	if err := c.reportingAllowed(ctx, analytics); err != nil {
		return nil, err
	}

	ctx, id, err := c.deviceID(ctx)
	if err != nil {
		return nil, err
	}

	info, err := c.device.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("device info: %w", err)
	}

	return c.report(ctx, "/statistics/usage", UsageReport{
		DeviceID:   id,
		AppVersion: c.version,
		OS:         info.Platform,
		OSVersion:  info.OSVersion,
	})
}

// ReportTripStart records the start of a trip.
func (c *Client) ReportTripStart(ctx context.Context, bikeSerial, stationSerial *string) (*StatisticsResponse, error) {
	if err := c.reportingAllowed(ctx, analytics); err != nil {
		return nil, err
	}

	ctx, id, err := c.deviceID(ctx)
	if err != nil {
		return nil, err
	}

	return c.report(ctx, "/statistics/trips", TripReport{
		DeviceID:      id,
		BikeSerial:    bikeSerial,
		StationSerial: stationSerial,
	})
}

// ReportError records an error seen by the user.
func (c *Client) ReportError(ctx context.Context, code string, message *string) (*StatisticsResponse, error) {
	if err := c.reportingAllowed(ctx, analytics); err != nil {
		return nil, err
	}

	ctx, id, err := c.deviceID(ctx)
	if err != nil {
		return nil, err
	}

	return c.report(ctx, "/statistics/errors", ErrorReport{
		DeviceID:     id,
		ErrorCode:    code,
		ErrorMessage: message,
	})
}

// PostBikeRating sends a 1 to 5 rating of a bike. It is controlled by the
// rating reports setting rather than analytics.
func (c *Client) PostBikeRating(ctx context.Context, bikeSerial string, rating int) (*StatisticsResponse, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}

	if err := c.reportingAllowed(ctx, reportRatings); err != nil {
		return nil, err
	}

	ctx, id, err := c.deviceID(ctx)
	if err != nil {
		return nil, err
	}

	return c.report(ctx, "/statistics/ratings", RatingReport{
		DeviceID:   id,
		BikeSerial: bikeSerial,
		Rating:     rating,
	})
}

// GetMessage fetches the message of the day in the user's language. It runs
// whatever the settings say.
func (c *Client) GetMessage(ctx context.Context) (*Message, error) {
	s, err := c.settings.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	locale := settings.ResolveLocale(s, c.systemLanguage(ctx))

	headers := c.headers()
	headers["Accept-Language"] = string(locale)

	out := &Message{}

	err = c.do(ctx, &retryable.Request{
		Method:  http.MethodGet,
		URL:     c.baseURL + "/message",
		Headers: headers,
	}, out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func analytics(s settings.Settings) bool     { return s.Analytics }
func reportRatings(s settings.Settings) bool { return s.ReportRatings }

func (c *Client) reportingAllowed(ctx context.Context, enabled func(settings.Settings) bool) error {
	if *c.dev {
		return fmt.Errorf("%w: development build", ErrReportingDisabled)
	}

	s, err := c.settings.Settings(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	if !enabled(s) {
		return fmt.Errorf("%w: turned off in settings", ErrReportingDisabled)
	}

	return nil
}

// deviceID also tags ctx so the retry diagnostics name the device.
func (c *Client) deviceID(ctx context.Context) (context.Context, string, error) {
	id, err := c.device.ID(ctx)
	if err != nil {
		return ctx, "", fmt.Errorf("device id: %w", err)
	}

	return logger.WithDeviceId(ctx, id), id, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"User-Agent":   build.UserAgent(c.version),
		"Content-Type": "application/json",
	}
}

func (c *Client) report(ctx context.Context, path string, body any) (*StatisticsResponse, error) {
	out := &StatisticsResponse{}

	err := c.do(ctx, &retryable.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + path,
		Headers: c.headers(),
		Body:    body,
	}, out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) do(ctx context.Context, req *retryable.Request, out any) error {
	rsp, err := c.http.Do(ctx, req, retryable.WithClassification(c.classification))
	if err != nil {
		return err
	}

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		logger.Get(ctx).Warn("Gira+ API call was not successful",
			"url", req.URL,
			"status", rsp.StatusCode)

		return fmt.Errorf("%w: %s %s: %w", ErrUnexpectedStatus, req.Method, req.URL, retryable.StatusError(rsp))
	}

	if len(rsp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(rsp.Body, out); err != nil {
		return fmt.Errorf("%w: %w", ErrBadResponse, err)
	}

	return nil
}
