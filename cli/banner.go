package cli

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/giraplus/giraplus-go/envutil"
)

const (
	boxTopLeft     = "╒"
	boxBottomLeft  = "└"
	boxTopRight    = "╕"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	ellipsis       = "…"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

const (
	DefaultTerminalWidth = 80
	bannerPadding        = 2
	minBannerWidth       = 3
)

// BannerAutoWidth boxes s using the terminal width from COLUMNS. With
// GIRA_NO_BANNER=true the text is returned as is.
func BannerAutoWidth(ctx context.Context, s string, align Alignment) string {
	if envutil.Bool(ctx, "GIRA_NO_BANNER", envutil.Default(false)).ValueOrElse(false) {
		return s + "\n"
	}

	width := envutil.Int(ctx, "COLUMNS", envutil.Default(DefaultTerminalWidth)).
		ValueOrElse(DefaultTerminalWidth)

	return Banner(s, width, align) + "\n"
}

// Banner draws a box of the given total width around s. Lines that do not
// fit are cut with an ellipsis.
func Banner(s string, width int, align Alignment) string {
	if width < minBannerWidth {
		return s
	}

	inner := width - bannerPadding
	parts := []string{boxTopLeft + strings.Repeat(boxTop, inner) + boxTopRight}

	for line := range strings.SplitSeq(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		parts = append(parts, boxSide+pad(line, inner, align)+boxSide)
	}

	parts = append(parts, boxBottomLeft+strings.Repeat(boxBottom, inner)+boxBottomRight)

	return strings.Join(parts, "\n")
}

func pad(text string, width int, align Alignment) string {
	length := countGraphic(text)
	if length > width {
		text = truncateGraphic(text, width-1) + ellipsis
		length = width
	}

	diff := width - length

	switch align {
	case AlignCenter:
		left := diff / 2 //nolint:mnd

		return fmt.Sprintf("%s%s%s", strings.Repeat(" ", left), text, strings.Repeat(" ", diff-left))
	case AlignRight:
		return strings.Repeat(" ", diff) + text
	default:
		return text + strings.Repeat(" ", diff)
	}
}

func countGraphic(s string) int {
	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			count++
		}
	}

	return count
}

func truncateGraphic(s string, n int) string {
	var sb strings.Builder

	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			if count == n {
				break
			}

			count++
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
