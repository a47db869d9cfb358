// Package loader parses edge-list files into immutable in-memory graphs.
//
// Each record holds two integer node ids separated by a delimiter and
// describes an edge from the first id to the second. The node count is
// always supplied by the caller: sink-only and isolated nodes cannot be
// inferred from the file contents.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/valkyraycho/surfrank/linkgraph/store/memory"
)

var (
	// ErrGraphLoad is matched by every error returned while loading an
	// edge list.
	ErrGraphLoad = errors.New("graph load failed")

	// ErrMalformedEdge is returned for records that do not contain exactly
	// two fields.
	ErrMalformedEdge = errors.New("malformed edge record")
)

// LoadError describes a fatal problem with a specific edge-list line.
type LoadError struct {
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("edge list line %d: %v", e.Line, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrGraphLoad }

type options struct {
	delimiter     string
	commentPrefix string
}

// Option customizes the edge-list format.
type Option func(*options)

// WithDelimiter sets the field delimiter. Defaults to a tab.
func WithDelimiter(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delimiter = delim
		}
	}
}

// WithCommentPrefix sets the prefix that marks a line as a comment.
// Defaults to "#". An empty prefix disables comment handling.
func WithCommentPrefix(prefix string) Option {
	return func(o *options) {
		o.commentPrefix = prefix
	}
}

// LoadFile opens path and loads it with Load.
func LoadFile(path string, n int, opts ...Option) (*memory.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGraphLoad, err)
	}
	defer func() { _ = f.Close() }()

	return Load(f, n, opts...)
}

// Load reads an edge list from r into a graph with n nodes. Any malformed
// record or id outside [0, n) aborts the load.
func Load(r io.Reader, n int, opts ...Option) (*memory.Graph, error) {
	o := options{delimiter: "\t", commentPrefix: "#"}
	for _, opt := range opts {
		opt(&o)
	}

	b, err := memory.NewBuilder(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGraphLoad, err)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		src, dst, skip, err := parseRecord(scanner.Text(), o)
		if err != nil {
			return nil, &LoadError{Line: line, Err: err}
		} else if skip {
			continue
		}

		if err := b.AddEdge(src, dst); err != nil {
			return nil, &LoadError{Line: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading edge list: %w", ErrGraphLoad, err)
	}

	return b.Build(), nil
}

func parseRecord(raw string, o options) (src, dst int, skip bool, err error) {
	record := strings.TrimSpace(raw)
	if record == "" || (o.commentPrefix != "" && strings.HasPrefix(record, o.commentPrefix)) {
		return 0, 0, true, nil
	}

	fields := strings.Split(record, o.delimiter)
	if len(fields) != 2 {
		return 0, 0, false, fmt.Errorf("%w: %q has %d fields", ErrMalformedEdge, record, len(fields))
	}

	if src, err = strconv.Atoi(strings.TrimSpace(fields[0])); err != nil {
		return 0, 0, false, fmt.Errorf("parsing source id: %w", err)
	}
	if dst, err = strconv.Atoi(strings.TrimSpace(fields[1])); err != nil {
		return 0, 0, false, fmt.Errorf("parsing destination id: %w", err)
	}
	return src, dst, false, nil
}
