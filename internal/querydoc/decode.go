package querydoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads every document of the YAML file at path.
func LoadFile(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads every document from r. Unknown fields are rejected and each
// document is checked for a known kind.
func Decode(r io.Reader) ([]Document, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var docs []Document
	for i := 0; ; i++ {
		var d Document
		err := decoder.Decode(&d)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DecodeError{Doc: i, Reason: "failed to parse YAML", Err: err}
		}
		d.index = i
		if err := d.validate(); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		return nil, &DecodeError{Doc: 0, Reason: "no documents"}
	}
	return docs, nil
}

func (d *Document) validate() error {
	switch d.Kind {
	case KindVertex, KindEdge:
		if len(d.Steps) > 0 || len(d.From) > 0 || d.Paginate != nil {
			return d.fail("kind", "steps, from and paginate are only valid for traversals", nil)
		}
		if d.None {
			return d.fail("none", "statements always project", nil)
		}
		if d.Kind == KindEdge && len(d.IDs) > 0 {
			return d.fail("ids", "edge statements have no ids", nil)
		}
	case KindTraversal:
		if d.Label != "" || d.Alias != "" || len(d.IDs) > 0 || !d.Projection.isZero() {
			return d.fail("kind", "traversals take filters and projections per step", nil)
		}
	case "":
		return d.fail("kind", "kind is required", nil)
	default:
		return d.fail("kind", fmt.Sprintf("unknown kind %q", d.Kind), nil)
	}
	return nil
}

func (p Projection) isZero() bool {
	return len(p.Where) == 0 && len(p.Select) == 0 && p.All == "" && !p.None &&
		len(p.Aggregates) == 0 && len(p.Order) == 0 && p.Page == nil
}

func (d *Document) fail(field, reason string, err error) *DecodeError {
	return &DecodeError{Doc: d.index, Name: d.Name, Field: field, Reason: reason, Err: err}
}
