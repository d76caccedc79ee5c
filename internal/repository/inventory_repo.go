package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"sync/atomic"
)

// Document is the parsed inventory file. Its shape is opaque apart from the
// optional "rooms" and "bookings" arrays counted for logging.
type Document struct {
	root any
}

func NewDocument(root any) *Document {
	return &Document{root: root}
}

func EmptyDocument() *Document {
	return &Document{root: map[string]any{}}
}

// Root returns the parsed JSON tree.
func (d *Document) Root() any {
	return d.root
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.root)
}

// Count returns the length of a top-level array field, or 0 when the field is
// absent or not an array.
func (d *Document) Count(key string) int {
	obj, ok := d.root.(map[string]any)
	if !ok {
		return 0
	}
	arr, ok := obj[key].([]any)
	if !ok {
		return 0
	}
	return len(arr)
}

type ConfigLoadError struct {
	Path   string
	Reason string // "missing", "unreadable" or "malformed"
	Err    error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("inventory %s (%s): %v", e.Path, e.Reason, e.Err)
}

func (e *ConfigLoadError) Unwrap() error {
	return e.Err
}

// LoadDocument reads and parses path as JSON.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		reason := "unreadable"
		if errors.Is(err, fs.ErrNotExist) {
			reason = "missing"
		}
		return nil, &ConfigLoadError{Path: path, Reason: reason, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, &ConfigLoadError{Path: path, Reason: "malformed", Err: err}
	}
	// Trailing content after the first value is also malformed.
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ConfigLoadError{Path: path, Reason: "malformed", Err: errors.New("unexpected data after top-level value")}
	}

	return &Document{root: root}, nil
}

type InventoryRepo struct {
	path    string
	current atomic.Pointer[Document]
}

func NewInventoryRepo(path string) *InventoryRepo {
	r := &InventoryRepo{path: path}
	r.current.Store(EmptyDocument())
	return r
}

// Current returns the document in effect. Safe for concurrent use.
func (r *InventoryRepo) Current() *Document {
	return r.current.Load()
}

// Reload replaces the current document with the file's contents. Failures are
// logged and leave the previous document in place.
func (r *InventoryRepo) Reload() {
	doc, err := LoadDocument(r.path)
	if err != nil {
		var loadErr *ConfigLoadError
		if errors.As(err, &loadErr) && loadErr.Reason == "missing" {
			log.Printf("WARNING: %s not found. The chatbot will have no room data.", r.path)
		} else {
			log.Printf("WARNING: Could not load %s: %v", r.path, err)
		}
		return
	}

	r.current.Store(doc)
	log.Printf("Loaded inventory from %s: %d rooms, %d bookings", r.path, doc.Count("rooms"), doc.Count("bookings"))
}
