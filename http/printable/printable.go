// Package printable turns HTTP bodies into something safe to put in a log
// line or an error message.
//
// Text bodies are converted to UTF-8, using the charset from the
// Content-Type header when there is one and chardet detection otherwise.
// Anything that still doesn't look like text is base64-encoded.
package printable

import (
	"bytes"
	"encoding/base64"
	"io"
	"log/slog"
	"mime"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// Only this many leading bytes are inspected by the printability heuristic.
const printabilityCheckLen = 1024

// Share of printable runes above which a body counts as text.
const printableRatio = 0.95

// Payload is a printable rendering of a body.
type Payload struct {
	Base64    bool   `json:"base64,omitempty"`
	Content   string `json:"content"`
	Length    int    `json:"length"`
	Truncated bool   `json:"truncated,omitempty"`
}

// String returns the content, with an ellipsis if it was truncated.
func (p *Payload) String() string {
	if p == nil {
		return "<nil>"
	}

	if p.Truncated {
		return p.Content + "…"
	}

	return p.Content
}

func (p *Payload) LogValue() slog.Value {
	if p == nil {
		return slog.StringValue("<nil>")
	}

	return slog.GroupValue(
		slog.String("content", p.String()),
		slog.Bool("base64", p.Base64),
		slog.Int("size", p.Length))
}

// Truncate returns a copy whose content is at most size bytes, cut on a
// rune boundary for text payloads.
func (p *Payload) Truncate(size int) *Payload {
	if p == nil || size < 0 || len(p.Content) <= size {
		return p
	}

	cut := size
	if !p.Base64 {
		for cut > 0 && !utf8.RuneStart(p.Content[cut]) {
			cut--
		}
	}

	return &Payload{
		Base64:    p.Base64,
		Content:   p.Content[:cut],
		Length:    p.Length,
		Truncated: true,
	}
}

// Body renders data according to its Content-Type. It returns nil for an
// empty body.
func Body(data []byte, contentType string) *Payload {
	if len(data) == 0 {
		return nil
	}

	mimeType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mimeType = ""
	}

	if mimeType != "" && !isPrintableMimeType(mimeType) {
		return binary(data)
	}

	decoded, ok := toUTF8(data, strings.ToLower(params["charset"]))
	if !ok || !looksPrintable(decoded) {
		return binary(data)
	}

	return &Payload{
		Content: string(decoded),
		Length:  len(decoded),
	}
}

func binary(data []byte) *Payload {
	return &Payload{
		Base64:  true,
		Content: base64.StdEncoding.EncodeToString(data),
		Length:  len(data),
	}
}

func isPrintableMimeType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") ||
		strings.HasSuffix(mimeType, "+json") ||
		strings.HasSuffix(mimeType, "+xml") ||
		mimeType == "application/json" ||
		mimeType == "application/xml" ||
		mimeType == "application/javascript" ||
		mimeType == "application/x-www-form-urlencoded"
}

// toUTF8 decodes data using the charset hint, falling back to detection.
func toUTF8(data []byte, charsetHint string) ([]byte, bool) {
	if utf8.Valid(data) && (charsetHint == "" || charsetHint == "utf-8") {
		return data, true
	}

	label := charsetHint
	if label == "" {
		best, err := chardet.NewTextDetector().DetectBest(data)
		if err != nil {
			return data, utf8.Valid(data)
		}

		label = best.Charset
	}

	reader, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return data, utf8.Valid(data)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil || !utf8.Valid(decoded) {
		return data, false
	}

	return decoded, true
}

func looksPrintable(data []byte) bool {
	sample := data[:min(len(data), printabilityCheckLen)]

	printable, total := 0, 0

	for len(sample) > 0 {
		r, size := utf8.DecodeRune(sample)
		sample = sample[size:]
		total++

		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}

	return total > 0 && float64(printable)/float64(total) > printableRatio
}
