package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	insaneJSON "github.com/ozontech/insane-json"
)

// WriteJSONList writes records as an indented JSON array with HTML escaping
// off: these files are edited by hand and the game text is full of markup
// characters that must stay readable.
func (w *Workspace) WriteJSONList(path string, records []string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("can't encode %q: %w", path, err)
	}
	return w.WriteFile(path, buf.Bytes())
}

// ReadJSONList parses a record array back. Files come from editors, so
// parse errors carry the path.
func (w *Workspace) ReadJSONList(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	root, err := insaneJSON.DecodeBytes(content)
	defer insaneJSON.Release(root)
	if err != nil {
		return nil, fmt.Errorf("can't parse %q: %w", path, err)
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%q: expected a JSON array of strings", path)
	}

	nodes := root.AsArray()
	records := make([]string, 0, len(nodes))
	for _, node := range nodes {
		// AsString returns a view into the decoder buffer that Release hands
		// back to the pool; copy so records survive the next decode.
		records = append(records, strings.Clone(node.AsString()))
	}
	return records, nil
}

// ReadJSONListPreferring returns the record list from the first stage that
// has the file.
func (w *Workspace) ReadJSONListPreferring(name string, stages ...Stage) ([]string, Stage, error) {
	for _, st := range stages {
		records, err := w.ReadJSONList(w.JSONPath(st, name))
		if err == nil {
			return records, st, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", err
		}
	}
	return nil, "", &MissingArtifactError{Name: name, Path: w.JSONPath(stages[len(stages)-1], name)}
}

// ReadBracedPreferring is ReadJSONListPreferring for the braced description
// file. A missing file is not an error: building without braced text is a
// plain re-encode.
func (w *Workspace) ReadBracedPreferring(stages ...Stage) ([]string, Stage, error) {
	for _, st := range stages {
		records, err := w.ReadJSONList(w.BracedPath(st))
		if err == nil {
			return records, st, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", err
		}
	}
	return nil, "", nil
}
