package render

import (
	"bytes"
	"testing"

	"github.com/tsa-lab/tsaview/pkg/errors"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><circle cx="5" cy="5" r="4"/></svg>`

func TestToPNGScale(t *testing.T) {
	for _, scale := range []float64{0, -1} {
		if _, err := ToPNG([]byte(tinySVG), scale); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ToPNG(scale=%g) error = %v, want INVALID_INPUT", scale, err)
		}
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		conv  func([]byte) ([]byte, error)
		magic []byte
	}{
		{"png", func(b []byte) ([]byte, error) { return ToPNG(b, 1) }, []byte("\x89PNG")},
		{"pdf", ToPDF, []byte("%PDF")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.conv([]byte(tinySVG))
			if !Available() {
				if !errors.Is(err, errors.ErrCodeUnsupported) {
					t.Errorf("without rsvg-convert error = %v, want UNSUPPORTED", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if !bytes.HasPrefix(out, tt.magic) {
				t.Errorf("output starts %q, want %q", out[:min(len(out), 4)], tt.magic)
			}
		})
	}
}
