package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tsa-lab/tsaview/pkg/errors"
	"github.com/tsa-lab/tsaview/pkg/graph"
)

// Format is an on-disk document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat picks the format from a path's extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadDocument decodes one document from r in the given format.
func ReadDocument(r io.Reader, format Format) (graph.Document, error) {
	var doc graph.Document
	if err := decode(r, format, &doc); err != nil {
		return graph.Document{}, err
	}
	return doc, nil
}

// Import reads one document from path.
func Import(path string) (graph.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return graph.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ReadDocument(f, DetectFormat(path))
	if err != nil {
		return graph.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ReadSystem decodes a system from r. A single document is accepted and
// returned as a one-graph system.
func ReadSystem(r io.Reader, format Format) ([]graph.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var docs []graph.Document
	listErr := decode(bytes.NewReader(data), format, &docs)
	if listErr == nil {
		return docs, nil
	}

	var doc graph.Document
	if err := decode(bytes.NewReader(data), format, &doc); err != nil {
		return nil, listErr
	}
	return []graph.Document{doc}, nil
}

// ImportSystem reads a system from path.
func ImportSystem(path string) ([]graph.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	docs, err := ReadSystem(f, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

func decode(r io.Reader, format Format, v any) error {
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "format %q", format)
	}
	return nil
}
