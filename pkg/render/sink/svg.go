package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"slices"
	"time"

	"github.com/tsa-lab/tsaview/pkg/geom"
	"github.com/tsa-lab/tsaview/pkg/render/graphview"
	"github.com/tsa-lab/tsaview/pkg/render/scene"
)

const interactionCSS = `
    .edge-hover:hover, .edge-hover.pinned { stroke-opacity: 0.5; }
    .node, .edge-hover { cursor: pointer; }`

const interactionJS = `
    (function() {
      var svg = document.currentScript ? document.currentScript.ownerSVGElement : null;
      var root = svg || document;
      function emit(key) {
        root.dispatchEvent(new CustomEvent('tsaview:click', { detail: key, bubbles: true }));
      }
      root.querySelectorAll('[data-key]').forEach(function(el) {
        if (!el.classList.contains('node') && !el.classList.contains('edge-hover')) return;
        el.addEventListener('click', function(ev) { ev.stopPropagation(); emit(el.dataset.key); });
      });
      (svg || document.querySelector('svg')).addEventListener('click', function() { emit(''); });
    })();`

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	interaction bool
	animate     bool
}

// WithInteraction adds hover CSS and a click script. Clicks are reported as
// a "tsaview:click" CustomEvent whose detail is the element key, or "" for
// the background.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interaction = true } }

// WithAnimation draws elements in their starting state and emits SMIL
// animations for the recorded transitions. Without it the SVG shows the
// final state and exiting elements are omitted.
func WithAnimation() SVGOption { return func(r *svgRenderer) { r.animate = true } }

// RenderSVG serializes the surface as a standalone SVG document. Layers are
// emitted as groups in draw order, each element with a <title> tooltip.
func RenderSVG(s *scene.Surface, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		escape(s.ID), geom.Num(s.Width), geom.Num(s.Height), geom.Num(s.Width), geom.Num(s.Height))
	renderDefs(&buf)

	for _, l := range s.Layers() {
		fmt.Fprintf(&buf, "  <g class=%q>\n", l.Name())
		for _, e := range l.Elements() {
			if e.Exiting && !r.animate {
				continue
			}
			r.renderElement(&buf, e)
		}
		buf.WriteString("  </g>\n")
	}

	if r.interaction {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	side := geom.Num(geom.MarkerSide)
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <marker id=%q orient="auto" refX="0.1" refY="%s" markerWidth="%s" markerHeight="%s">`+"\n",
		graphview.ArrowMarkerID, geom.Num(geom.MarkerSide/2), side, side)
	fmt.Fprintf(buf, `      <path d="M 0 0 V %s L %s %s Z" fill="black"/>`+"\n", side, side, geom.Num(geom.MarkerSide/2))
	buf.WriteString("    </marker>\n")
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) renderElement(buf *bytes.Buffer, e *scene.Element) {
	class := e.Class
	if e.Highlight.Pinned {
		class += " pinned"
	}
	if e.Exiting {
		class += " exiting"
	}

	attrs := e.Attrs()
	if r.animate {
		attrs = startAttrs(e, attrs)
	}

	fmt.Fprintf(buf, `    <%s data-key=%q class=%q`, e.Shape, e.Key.String(), class)
	for _, a := range attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.Name, escape(a.Value))
	}
	buf.WriteString(">")
	if e.Title != "" {
		fmt.Fprintf(buf, "<title>%s</title>", escape(e.Title))
	}
	if r.animate {
		for _, t := range e.Transitions {
			if e.Overridden(t.Attr) {
				continue
			}
			renderTransition(buf, t)
		}
	}
	fmt.Fprintf(buf, "</%s>\n", e.Shape)
}

// startAttrs replaces each animated attribute's value with the value its
// earliest transition starts from.
func startAttrs(e *scene.Element, final []scene.Attr) []scene.Attr {
	ts := slices.Clone(e.Transitions)
	slices.SortStableFunc(ts, func(a, b scene.Transition) int { return int(a.Begin - b.Begin) })

	start := make(map[string]string)
	for _, t := range ts {
		if _, ok := start[t.Attr]; ok || t.From == "" || e.Overridden(t.Attr) {
			continue
		}
		start[t.Attr] = t.From
	}

	out := make([]scene.Attr, len(final))
	for i, a := range final {
		if v, ok := start[a.Name]; ok {
			a.Value = v
		}
		out[i] = a
	}
	return out
}

func renderTransition(buf *bytes.Buffer, t scene.Transition) {
	if t.Dur == 0 {
		fmt.Fprintf(buf, `<set attributeName=%q to="%s" begin="%s" fill="freeze"/>`,
			t.Attr, escape(t.To), millis(t.Begin))
		return
	}
	from := ""
	if t.From != "" {
		from = fmt.Sprintf(` from="%s"`, escape(t.From))
	}
	fmt.Fprintf(buf, `<animate attributeName=%q%s to="%s" begin="%s" dur="%s" fill="freeze"/>`,
		t.Attr, from, escape(t.To), millis(t.Begin), millis(t.Dur))
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
