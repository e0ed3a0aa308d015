package treeio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/treecontrast/pkg/phylo"
)

// MarshalTree converts a tree to JSON bytes.
// Output is deterministic for a given tree, so the bytes are suitable as
// cache-hash input.
func MarshalTree(t *phylo.Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTreeTo(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTreeFile writes a tree to a JSON file.
// The file is created with 0644 permissions.
func WriteTreeFile(t *phylo.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTreeTo(t, f)
}

// WriteTree writes a tree as JSON to an io.Writer.
func WriteTree(t *phylo.Tree, w io.Writer) error {
	return writeTreeTo(t, w)
}

// ReadTreeFile reads a JSON file and returns the decoded, validated tree.
func ReadTreeFile(path string, opts ...phylo.BuilderOption) (*phylo.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f, opts...)
}

// ReadTree decodes a JSON tree document from an io.Reader into a validated
// tree. Builder options are passed through to construction.
func ReadTree(r io.Reader, opts ...phylo.BuilderOption) (*phylo.Tree, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToTree(doc, opts...)
}

// UnmarshalTree deserializes JSON bytes to a validated tree.
func UnmarshalTree(data []byte, opts ...phylo.BuilderOption) (*phylo.Tree, error) {
	return ReadTree(bytes.NewReader(data), opts...)
}

// MarshalTraits converts a trait vector to JSON bytes with sorted keys
// (encoding/json sorts map keys), so output is deterministic for hashing.
func MarshalTraits(name string, v phylo.TraitVector) ([]byte, error) {
	doc := TraitDocument{Name: name, Values: v}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadTraits decodes a JSON trait document.
func ReadTraits(r io.Reader) (TraitDocument, error) {
	var doc TraitDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return TraitDocument{}, fmt.Errorf("decode: %w", err)
	}
	if doc.Values == nil {
		return TraitDocument{}, fmt.Errorf("decode: trait document has no values")
	}
	return doc, nil
}

// ReadTraitsFile reads a trait document from a JSON file.
func ReadTraitsFile(path string) (TraitDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return TraitDocument{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTraits(f)
}

func writeTreeTo(t *phylo.Tree, w io.Writer) error {
	out := FromTree(t)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
