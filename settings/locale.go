package settings

import (
	"context"
	"strings"

	"github.com/giraplus/giraplus-go/envutil"
	"golang.org/x/text/language"
)

var (
	supported = []language.Tag{language.English, language.Portuguese} //nolint:gochecknoglobals
	matcher   = language.NewMatcher(supported)                        //nolint:gochecknoglobals
)

// ResolveLocale returns the language the app talks in: the configured
// locale, or for "system" the closest supported match of system, falling
// back to English.
func ResolveLocale(s Settings, system language.Tag) Locale {
	if s.Locale == LocalePT || s.Locale == LocaleEN {
		return s.Locale
	}

	_, idx, conf := matcher.Match(system)
	if conf == language.No {
		return LocaleEN
	}

	if supported[idx] == language.Portuguese {
		return LocalePT
	}

	return LocaleEN
}

// SystemLanguage reads the user language from LC_ALL, LC_MESSAGES or LANG,
// in that order. Values like "pt_PT.UTF-8" are understood; anything that
// cannot be parsed is language.Und.
func SystemLanguage(ctx context.Context) language.Tag {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := envutil.String(ctx, key).ValueOrElse("")
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}

		v, _, _ = strings.Cut(v, ".")
		v, _, _ = strings.Cut(v, "@")

		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err == nil {
			return tag
		}
	}

	return language.Und
}
