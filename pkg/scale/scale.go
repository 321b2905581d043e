// Package scale provides the small set of numeric scales used when drawing:
// edge-weight scales that turn occurrence counts into stroke widths.
package scale

// Func maps an edge weight to a scaled weight.
type Func func(float64) float64

// Identity returns its input unchanged. It is the default edge-weight scale.
func Identity(v float64) float64 { return v }

// Linear maps the closed domain [D0, D1] onto [R0, R1], extrapolating
// outside the domain. A degenerate domain maps everything to the midpoint of
// the range.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// Map applies the scale.
func (l Linear) Map(v float64) float64 {
	if l.D1 == l.D0 {
		return (l.R0 + l.R1) / 2
	}
	t := (v - l.D0) / (l.D1 - l.D0)
	return l.R0 + t*(l.R1-l.R0)
}

// Func returns the scale as a Func.
func (l Linear) Func() Func { return l.Map }

// DefaultMaxWidth is the widest scaled weight of a prevalence graph.
const DefaultMaxWidth = 10.0

// Prevalence builds the weight scale for a prevalence graph: occurrence
// counts [1, max] map linearly onto [1, maxWidth].
func Prevalence(occurrences []float64, maxWidth float64) Linear {
	most := 1.0
	for _, o := range occurrences {
		if o > most {
			most = o
		}
	}
	return Linear{D0: 1, D1: most, R0: 1, R1: maxWidth}
}
