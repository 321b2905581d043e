package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/graph"
)

// WriteDocument encodes doc to w in the given format.
// This format can be re-imported with [ReadDocument] for round-trip processing.
func WriteDocument(doc graph.Document, w io.Writer, format Format) error {
	return encode(doc, w, format)
}

// WriteSystem encodes a list of documents to w.
func WriteSystem(docs []graph.Document, w io.Writer, format Format) error {
	return encode(docs, w, format)
}

// Export writes doc to a file at path, choosing the format from the extension.
func Export(doc graph.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(doc, f, DetectFormat(path))
}

func encode(v any, w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	default:
		return errors.New(errors.ErrCodeUnsupported, "format %q", format)
	}
}
