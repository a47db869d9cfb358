// Package topic defines how topic-specific ranking learns which nodes belong
// to which topic. Classifying nodes is left to an external Partitioner; this
// package only ships a static partition that can be read from a file.
package topic

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/valkyraycho/surfrank/linkgraph/graph"
)

var (
	// ErrInvalidGroup is returned for unnamed, empty or duplicate groups.
	ErrInvalidGroup = errors.New("invalid topic group")

	// ErrMalformedRecord is returned for topic file lines that do not
	// contain a topic name and a node id.
	ErrMalformedRecord = errors.New("malformed topic record")
)

// Group is a named set of nodes that share a topic.
type Group struct {
	Name  string
	Nodes []int
}

// Partitioner is implemented by strategies that split the nodes of a graph
// into topic groups. Groups may overlap and need not cover every node.
type Partitioner interface {
	Partition(ctx context.Context, g graph.Graph) ([]Group, error)
}

// PartitionerFunc adapts a function to the Partitioner interface.
type PartitionerFunc func(context.Context, graph.Graph) ([]Group, error)

func (f PartitionerFunc) Partition(ctx context.Context, g graph.Graph) ([]Group, error) {
	return f(ctx, g)
}

// Static is a fixed partition known ahead of time.
type Static struct {
	groups []Group
}

// NewStatic validates groups and returns a partition that always yields
// them in the given order.
func NewStatic(groups ...Group) (*Static, error) {
	names := mapset.NewThreadUnsafeSet[string]()
	for _, grp := range groups {
		switch {
		case grp.Name == "":
			return nil, fmt.Errorf("unnamed group: %w", ErrInvalidGroup)
		case len(grp.Nodes) == 0:
			return nil, fmt.Errorf("group %q has no nodes: %w", grp.Name, ErrInvalidGroup)
		case !names.Add(grp.Name):
			return nil, fmt.Errorf("group %q defined twice: %w", grp.Name, ErrInvalidGroup)
		}
	}
	return &Static{groups: groups}, nil
}

// Partition returns copies of the static groups after checking that every
// node id is valid for g.
func (s *Static) Partition(_ context.Context, g graph.Graph) ([]Group, error) {
	out := make([]Group, len(s.groups))
	for i, grp := range s.groups {
		for _, v := range grp.Nodes {
			if !graph.InRange(g, v) {
				return nil, fmt.Errorf("topic %q node %d (nodes: %d): %w", grp.Name, v, g.NodeCount(), graph.ErrNodeOutOfRange)
			}
		}
		out[i] = Group{Name: grp.Name, Nodes: append([]int(nil), grp.Nodes...)}
	}
	return out, nil
}

// LoadFile reads a static partition from path. See Load.
func LoadFile(path string) (*Static, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open topic file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load reads "<topic>\t<node id>" records. Blank lines and lines starting
// with '#' are skipped. Groups are returned in order of first appearance.
func Load(r io.Reader) (*Static, error) {
	var (
		groups  []Group
		indexOf = make(map[string]int)
		scanner = bufio.NewScanner(r)
	)
	for line := 1; scanner.Scan(); line++ {
		record := strings.TrimSpace(scanner.Text())
		if record == "" || strings.HasPrefix(record, "#") {
			continue
		}

		fields := strings.Split(record, "\t")
		if len(fields) != 2 || strings.TrimSpace(fields[0]) == "" {
			return nil, fmt.Errorf("topic file line %d: %w", line, ErrMalformedRecord)
		}
		v, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("topic file line %d: %w: %w", line, ErrMalformedRecord, err)
		}

		name := strings.TrimSpace(fields[0])
		idx, ok := indexOf[name]
		if !ok {
			idx = len(groups)
			indexOf[name] = idx
			groups = append(groups, Group{Name: name})
		}
		groups[idx].Nodes = append(groups[idx].Nodes, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading topic file: %w", err)
	}

	return NewStatic(groups...)
}
