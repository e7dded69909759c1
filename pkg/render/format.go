package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/schemaviz/pkg/errors"
)

// Output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatJSON}

var contentTypes = map[string]string{
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// ValidFormat reports whether f is a supported output format.
func ValidFormat(f string) bool {
	return slices.Contains(Formats, f)
}

// ContentType returns the MIME type served for a format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// NeedsConverter reports whether a format goes through rsvg-convert.
func NeedsConverter(format string) bool {
	return format == FormatPNG || format == FormatPDF
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates. Unknown formats return an INVALID_FORMAT error.
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(out, f) {
			continue
		}
		if !ValidFormat(f) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (want one of %s)", f, strings.Join(Formats, ", "))
		}
		out = append(out, f)
	}
	return out, nil
}
