package transfer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the document format written by Encode.
const CurrentVersion = 1

// Document is the top-level YAML structure for a project tree.
type Document struct {
	Version int  `yaml:"version"`
	Project Node `yaml:"project"`
}

// Node is one phase and its children. Children are listed in position
// order; positions are not stored.
type Node struct {
	Title  string `yaml:"title"`
	Start  string `yaml:"start"`
	Phases []Node `yaml:"phases,omitempty"`
}

// Count returns the number of nodes in the tree, the node itself included.
func (n Node) Count() int {
	total := 0
	stack := []Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		total++
		stack = append(stack, cur.Phases...)
	}
	return total
}

// Encode renders the document as YAML.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a YAML document. Unknown keys are rejected.
func Decode(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &doc, nil
}

// Load reads and parses a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save writes the document to path, replacing any existing file atomically.
func Save(path string, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
