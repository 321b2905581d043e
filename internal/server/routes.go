package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tsa-lab/tsaview/pkg/buildinfo"
	"github.com/tsa-lab/tsaview/pkg/cache"
	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/graph"
	"github.com/tsa-lab/tsaview/pkg/render/graphview"
	"github.com/tsa-lab/tsaview/pkg/render/nodelink"
	"github.com/tsa-lab/tsaview/pkg/render/overlay"
	"github.com/tsa-lab/tsaview/pkg/render/sink"
)

const svgContentType = "image/svg+xml"

// statsResponse is the body of /api/stats.
type statsResponse struct {
	NumGraphs int            `json:"num-graphs"`
	Store     string         `json:"store"`
	Sessions  int64          `json:"sessions"`
	Build     buildinfo.Info `json:"build"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		NumGraphs: n,
		Store:     s.store.ID(),
		Sessions:  s.sessions.Load(),
		Build:     buildinfo.Get(),
	})
}

func (s *Server) handleNumGraphs(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleRandomGraph serves a random graph. The optional nodes and edges
// query parameters fix its size and seed makes it reproducible.
func (s *Server) handleRandomGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nodes, err := intParam(q.Get("nodes"), 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	edges, err := intParam(q.Get("edges"), 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := graph.ValidateRandomSize(nodes, edges); err != nil {
		s.writeError(w, r, err)
		return
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if seed := q.Get("seed"); seed != "" {
		v, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "seed %q", seed))
			return
		}
		rng = rand.New(rand.NewPCG(v, v))
	}
	writeJSON(w, http.StatusOK, graph.RandomDocument(rng, nodes, edges))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	doc, _, err := s.graphAt(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleGraphSVG renders one graph. Query parameters: width, height,
// select ("node:3", "edge:0-3") and renderer ("view" or "nodelink").
func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, n, err := s.graphAt(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.artifactOpts(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sel, err := overlay.ParseSelection(opts.Selection)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hash, err := cache.HashJSON(doc)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "hash graph %d", n))
		return
	}

	opts.ID = "graph-" + strconv.Itoa(n)
	key := s.keyer.ArtifactKey(hash, opts)
	svg, err := cache.GetOrCreate(ctx, s.cache, key, s.opts.CacheTTL, func() ([]byte, error) {
		if opts.Renderer == "nodelink" {
			return s.renderNodeLink(ctx, doc)
		}
		v := s.newView(opts.ID, opts.Width, opts.Height)
		if err := v.Load(ctx, doc); err != nil {
			return nil, err
		}
		if err := v.Select(ctx, sel); err != nil {
			return nil, err
		}
		return sink.RenderSVG(v.Surface, sink.WithInteraction()), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, svgContentType, svg)
}

func (s *Server) renderNodeLink(ctx context.Context, doc graph.Document) ([]byte, error) {
	x, err := graph.PreprocessDocument(doc)
	if err != nil {
		return nil, err
	}
	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(x, nodelink.Options{Color: s.opts.Color}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "nodelink")
	}
	return svg, nil
}

// handleOccurrenceMatrix serves the edge occurrence counts over the first
// topx graphs, or all of them for "all".
func (s *Server) handleOccurrenceMatrix(w http.ResponseWriter, r *http.Request) {
	topx, err := topxParam(chi.URLParam(r, "topx"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.matrixJSON(r.Context(), topx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, "application/json", data)
}

// handlePrevalenceSVG draws the occurrence matrix as a graph whose edge
// widths scale with how often each edge occurs.
func (s *Server) handlePrevalenceSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	topx, err := topxParam(chi.URLParam(r, "topx"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.artifactOpts(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.matrixJSON(ctx, topx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var m graph.Matrix
	if err := json.Unmarshal(data, &m); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "decode matrix"))
		return
	}

	opts.Renderer, opts.ID = "prevalence", "prevalence"
	key := s.keyer.ArtifactKey(cache.Hash(data), opts)
	svg, err := cache.GetOrCreate(ctx, s.cache, key, s.opts.CacheTTL, func() ([]byte, error) {
		v := s.newView(opts.ID, opts.Width, opts.Height)
		if err := v.LoadPrevalence(ctx, m); err != nil {
			return nil, err
		}
		return sink.RenderSVG(v.Surface, sink.WithInteraction()), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, svgContentType, svg)
}

// matrixJSON returns the encoded occurrence matrix, cached per store
// contents and topx.
func (s *Server) matrixJSON(ctx context.Context, topx int) ([]byte, error) {
	version, err := s.store.Version(ctx)
	if err != nil {
		return nil, err
	}
	key := s.keyer.MatrixKey(version, topx)
	return cache.GetOrCreate(ctx, s.cache, key, cache.MatrixTTL, func() ([]byte, error) {
		docs, err := s.store.Top(ctx, topx)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "no graphs to count")
		}
		m, err := graph.OccurrenceMatrix(docs, topx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(m)
	})
}

func (s *Server) graphAt(r *http.Request) (graph.Document, int, error) {
	raw := chi.URLParam(r, "n")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return graph.Document{}, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "graph index %q", raw)
	}
	doc, err := s.store.Graph(r.Context(), n)
	return doc, n, err
}

func (s *Server) artifactOpts(r *http.Request) (cache.ArtifactKeyOpts, error) {
	q := r.URL.Query()
	opts := cache.ArtifactKeyOpts{
		Format:    "svg",
		Renderer:  "view",
		Width:     s.opts.Width,
		Height:    s.opts.Height,
		Selection: q.Get("select"),
		Color:     s.opts.Color,
	}
	var err error
	if opts.Width, err = floatParam(q.Get("width"), opts.Width); err != nil {
		return opts, err
	}
	if opts.Height, err = floatParam(q.Get("height"), opts.Height); err != nil {
		return opts, err
	}
	switch renderer := q.Get("renderer"); renderer {
	case "", "view":
	case "nodelink":
		opts.Renderer = renderer
	default:
		return opts, errors.New(errors.ErrCodeInvalidInput, "unknown renderer %q", renderer)
	}
	return opts, nil
}

// newView returns a view whose renderer logs through the server logger.
// A pinned color keeps cached artifacts stable.
func (s *Server) newView(id string, width, height float64) *graphview.View {
	var opts []graphview.ViewOption
	if s.opts.Color != "" {
		opts = append(opts, graphview.WithColor(s.opts.Color))
	}
	v := graphview.NewView(id, width, height, opts...)
	v.Renderer.Logger = s.logger
	return v
}

func topxParam(raw string) (int, error) {
	if raw == "all" {
		return -1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "topx %q: want a non-negative integer or \"all\"", raw)
	}
	return n, nil
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "%q is not an integer", raw)
	}
	return n, nil
}

func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%q is not a positive number", raw)
	}
	return v, nil
}
