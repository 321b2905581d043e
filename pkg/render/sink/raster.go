package sink

import (
	"github.com/tsa-lab/tsaview/pkg/render"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
)

// RenderPDF renders the surface as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(s *scene.Surface, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(RenderSVG(s, opts...))
}

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the surface as PNG via SVG conversion.
func RenderPNG(s *scene.Surface, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	return render.ToPNG(RenderSVG(s, r.svgOpts...), r.scale)
}
