package api

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/schemaviz/pkg/buildinfo"
	"github.com/matzehuels/schemaviz/pkg/errors"
	"github.com/matzehuels/schemaviz/pkg/pipeline"
	"github.com/matzehuels/schemaviz/pkg/render"
	"github.com/matzehuels/schemaviz/pkg/schema"
)

// mediaTypes maps request Content-Types to schema loader types.
var mediaTypes = map[string]string{
	"application/yaml":    "yaml",
	"application/x-yaml":  "yaml",
	"text/yaml":           "yaml",
	"application/json":    "yaml",
	"application/toml":    "toml",
	"application/hcl":     "hcl",
	"text/hcl":            "hcl",
	"application/graphql": "graphql",
}

// CacheHeader reports whether a rendered artifact came from the cache.
const CacheHeader = "X-Cache"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	opts, err := compileOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Formats = []string{render.FormatJSON}
	s.serve(w, r, opts)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := renderOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.serve(w, r, opts)
}

// serve parses the body, runs the pipeline and writes the single requested
// artifact.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	sc, err := s.readSchema(r)
	if err != nil {
		writeError(w, err)
		return
	}

	opts.Logger = s.logger.With("request_id", RequestIDFrom(r.Context()))
	result, err := s.runner.Run(r.Context(), sc, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	format := opts.Formats[0]
	if result.CacheInfo.RenderHit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) readSchema(r *http.Request) (*schema.Schema, error) {
	typ, err := schemaType(r)
	if err != nil {
		return nil, err
	}
	loader, err := schema.LoaderFor(typ)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty request body")
	}
	return loader.Parse(data, "request."+typ)
}

// schemaType resolves the loader type from ?type= or the Content-Type.
func schemaType(r *http.Request) (string, error) {
	if t := r.URL.Query().Get("type"); t != "" {
		return strings.ToLower(t), nil
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return "", errors.New(errors.ErrCodeUnsupportedSchema, "schema type required: set ?type= or Content-Type (known types: %s)",
			strings.Join(schema.Types(), ", "))
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnsupportedSchema, err, "content type %q", ct)
	}
	if t, ok := mediaTypes[mt]; ok {
		return t, nil
	}
	return "", errors.New(errors.ErrCodeUnsupportedSchema, "unsupported content type %q", mt)
}

// compileOptions reads focus and depth.
func compileOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Focus:   q.Get("focus"),
		Refresh: q.Get("refresh") == "true",
	}
	depth, err := intParam(q.Get("depth"), "depth")
	if err != nil {
		return opts, err
	}
	opts.Depth = depth
	return opts, nil
}

// renderOptions reads compile options plus format, rankdir and fontsize.
func renderOptions(r *http.Request) (pipeline.Options, error) {
	opts, err := compileOptions(r)
	if err != nil {
		return opts, err
	}
	q := r.URL.Query()

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = render.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err
	}
	opts.Formats = []string{format}
	opts.RankDir = q.Get("rankdir")

	fontSize, err := intParam(q.Get("fontsize"), "fontsize")
	if err != nil {
		return opts, err
	}
	opts.FontSize = fontSize
	return opts, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, v)
	}
	return n, nil
}
