package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/schemaviz/pkg/compiler"
	"github.com/matzehuels/schemaviz/pkg/errors"
	"github.com/matzehuels/schemaviz/pkg/render"
	"github.com/matzehuels/schemaviz/pkg/render/dot"
)

// Render generates output artifacts in the requested formats.
// The DOT source and the SVG are produced at most once and shared by the
// formats derived from them.
func Render(g *compiler.Graph, opts Options) (map[string][]byte, error) {
	src := dot.ToDOT(g, opts.DOTOptions())

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = dot.RenderSVG(src)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "render svg")
		}
		return svg, nil
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case render.FormatDOT:
			data = []byte(src)
		case render.FormatSVG:
			data, err = svgOnce()
		case render.FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(data, DefaultPNGScale)
			}
		case render.FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(data)
			}
		case render.FormatJSON:
			data, err = MarshalGraph(g)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// MarshalGraph encodes a compiled graph as indented JSON.
func MarshalGraph(g *compiler.Graph) ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
	}
	return append(data, '\n'), nil
}
