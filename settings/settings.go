// Package settings loads and saves the user preferences of the app.
//
// Preferences live in a Store under "settings/<name>" keys. Booleans are
// true unless the stored value is exactly "false", so a fresh install has
// every feature switched on; theme and locale default to "system".
//
// Settings are values passed explicitly to whoever needs them, usually
// through a Provider:
//
//	s, err := settings.Load(ctx, store)
//	client := giramais.NewClient(ctx, giramais.WithSettings(settings.Static(s)))
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Locale string

const (
	LocalePT     Locale = "pt"
	LocaleEN     Locale = "en"
	LocaleSystem Locale = "system"
)

const (
	KeyDistanceLock       = "settings/distanceLock"
	KeyMockUnlock         = "settings/mockUnlock"
	KeyBackgroundLocation = "settings/backgroundLocation"
	KeyAnalytics          = "settings/analytics"
	KeyReportRatings      = "settings/reportRatings"
	KeyTheme              = "settings/theme"
	KeyLocale             = "settings/locale"
	KeyUpdateWarning      = "settings/updateWarning"
)

// Keys lists every key Load reads and Save writes.
var Keys = []string{ //nolint:gochecknoglobals
	KeyDistanceLock,
	KeyMockUnlock,
	KeyBackgroundLocation,
	KeyAnalytics,
	KeyReportRatings,
	KeyTheme,
	KeyLocale,
	KeyUpdateWarning,
}

type Settings struct {
	DistanceLock       bool   `json:"distanceLock"`
	MockUnlock         bool   `json:"mockUnlock"`
	BackgroundLocation bool   `json:"backgroundLocation"`
	Analytics          bool   `json:"analytics"`
	ReportRatings      bool   `json:"reportRatings"`
	Theme              Theme  `json:"theme"`
	Locale             Locale `json:"locale"`
	UpdateWarning      bool   `json:"updateWarning"`
}

// Defaults are the settings of a fresh install.
func Defaults() Settings {
	return Settings{
		DistanceLock:       true,
		MockUnlock:         true,
		BackgroundLocation: true,
		Analytics:          true,
		ReportRatings:      true,
		Theme:              ThemeSystem,
		Locale:             LocaleSystem,
		UpdateWarning:      true,
	}
}

var ErrReadOnly = errors.New("settings store is read-only")

// Store is persisted key-value storage.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

// Load reads every setting from store.
func Load(ctx context.Context, store Store) (Settings, error) {
	values := make(map[string]string, len(Keys))

	for _, key := range Keys {
		value, ok, err := store.Get(ctx, key)
		if err != nil {
			return Settings{}, fmt.Errorf("reading %s: %w", key, err)
		}

		if ok {
			values[key] = value
		}
	}

	return Settings{
		DistanceLock:       values[KeyDistanceLock] != "false",
		MockUnlock:         values[KeyMockUnlock] != "false",
		BackgroundLocation: values[KeyBackgroundLocation] != "false",
		Analytics:          values[KeyAnalytics] != "false",
		ReportRatings:      values[KeyReportRatings] != "false",
		Theme:              parseTheme(values[KeyTheme]),
		Locale:             parseLocale(values[KeyLocale]),
		UpdateWarning:      values[KeyUpdateWarning] != "false",
	}, nil
}

// Save writes every setting to store.
func Save(ctx context.Context, store Store, s Settings) error {
	values := map[string]string{
		KeyDistanceLock:       strconv.FormatBool(s.DistanceLock),
		KeyMockUnlock:         strconv.FormatBool(s.MockUnlock),
		KeyBackgroundLocation: strconv.FormatBool(s.BackgroundLocation),
		KeyAnalytics:          strconv.FormatBool(s.Analytics),
		KeyReportRatings:      strconv.FormatBool(s.ReportRatings),
		KeyTheme:              string(s.Theme),
		KeyLocale:             string(s.Locale),
		KeyUpdateWarning:      strconv.FormatBool(s.UpdateWarning),
	}

	for _, key := range Keys {
		if err := store.Set(ctx, key, values[key]); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
	}

	return nil
}

func parseTheme(v string) Theme {
	switch Theme(v) {
	case ThemeLight, ThemeDark:
		return Theme(v)
	default:
		return ThemeSystem
	}
}

func parseLocale(v string) Locale {
	switch Locale(v) {
	case LocalePT, LocaleEN:
		return Locale(v)
	default:
		return LocaleSystem
	}
}

// Provider hands out the current settings.
type Provider interface {
	Settings(ctx context.Context) (Settings, error)
}

// Static always returns the same settings.
type Static Settings

func (s Static) Settings(context.Context) (Settings, error) {
	return Settings(s), nil
}

// FromStore loads the settings from store on every call, so changes saved
// by someone else are seen.
func FromStore(store Store) Provider {
	return &storeProvider{store: store}
}

type storeProvider struct {
	store Store
}

func (p *storeProvider) Settings(ctx context.Context) (Settings, error) {
	return Load(ctx, p.store)
}
