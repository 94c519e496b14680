package cli

import (
	"strings"
	"testing"

	"github.com/giraplus/giraplus-go/envutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRating(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "3", " 5 "} {
		_, err := ParseRating(s)
		require.NoError(t, err, s)
	}

	for _, s := range []string{"0", "6", "-1", "three", ""} {
		_, err := ParseRating(s)
		require.ErrorIs(t, err, ErrInvalidRate, s)
	}
}

func TestStars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "★★★☆☆", Stars(3))
	assert.Equal(t, "☆☆☆☆☆", Stars(-2))
	assert.Equal(t, "★★★★★", Stars(9))
}

func TestNotEmpty(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, notEmpty("  "), ErrEmptyInput)
	require.NoError(t, notEmpty("x"))
}

func TestBanner(t *testing.T) {
	t.Parallel()

	out := Banner("Olá\nciclista", 9, AlignCenter)

	assert.Equal(t, strings.Join([]string{
		"╒═══════╕",
		"│  Olá  │",
		"│ciclis…│",
		"└───────┘",
	}, "\n"), out)

	assert.Equal(t, "│ab   │", strings.Split(Banner("ab", 7, AlignLeft), "\n")[1])
	assert.Equal(t, "│   ab│", strings.Split(Banner("ab", 7, AlignRight), "\n")[1])
	assert.Equal(t, "tiny", Banner("tiny", 2, AlignLeft))
}

func TestBannerAutoWidth(t *testing.T) {
	t.Parallel()

	ctx := envutil.WithEnvOverride(t.Context(), "GIRA_NO_BANNER", "true")
	assert.Equal(t, "hello\n", BannerAutoWidth(ctx, "hello", AlignLeft))

	ctx = envutil.WithEnvOverrides(t.Context(), map[string]string{
		"GIRA_NO_BANNER": "false",
		"COLUMNS":        "10",
	})

	lines := strings.Split(strings.TrimSuffix(BannerAutoWidth(ctx, "hello", AlignLeft), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "│hello   │", lines[1])
}
