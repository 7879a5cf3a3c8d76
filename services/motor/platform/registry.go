package platform

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	mu     sync.RWMutex
	boards = map[string]*Board{}
)

// Register makes a board available by name. Duplicate names panic.
func Register(b *Board) {
	if err := b.Validate(); err != nil {
		panic(err)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, exists := boards[b.Name]; exists {
		panic(fmt.Sprintf("board already registered: %q", b.Name))
	}
	boards[b.Name] = b
}

func Lookup(name string) (*Board, bool) {
	mu.RLock()
	defer mu.RUnlock()
	b, ok := boards[name]
	return b, ok
}

// Names lists registered boards in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(boards))
	for n := range boards {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// LoadBoard decodes and validates a YAML board description.
func LoadBoard(r io.Reader) (*Board, error) {
	var b Board
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadBoardFile is LoadBoard on a file path.
func LoadBoardFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadBoard(f)
}
