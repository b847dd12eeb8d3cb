package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"setup-packages/internal/logger"
)

// LoadManifest reads and parses the manifest at source.
// source may be a local path or an http(s) URL; compressed files and archives are
// unpacked transparently based on their extension.
func LoadManifest(ctx context.Context, source string) (*Manifest, error) {
	// Remote manifests are downloaded to a temp file first
	path := source
	if isRemote(source) {
		tmp, err := fetchManifest(ctx, source)
		if err != nil {
			return nil, err
		}
		defer func() {
			if rerr := os.Remove(tmp); rerr != nil {
				logger.Warn("[WARN] Failed to remove temporary manifest %s: %v\n", tmp, rerr)
			}
		}()
		path = tmp
	}

	// Check if the manifest file exists
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, source)
		}
		return nil, fmt.Errorf("failed to stat manifest %s: %w", source, err)
	}

	// Read the file, unpacking archives and compressed streams
	data, err := readManifestFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", source, err)
	}

	// Decode and validate the JSON
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	logger.Debug("[DEBUG] Loaded manifest %s with %d categories\n", source, len(m.Order))
	return m, nil
}

// ParseManifest decodes manifest JSON. Any syntax or schema problem is reported
// as ErrMalformedManifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
	}
	return &m, nil
}

// UnmarshalJSON decodes the top-level object token by token so the category
// order of the file is kept. A repeated key keeps its first position and its
// last value, matching encoding/json.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	// The document must open with an object
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("top level must be an object of categories, got %v", tok)
	}

	m.Order = nil
	m.Categories = make(map[string]Category)

	// Each iteration reads one "name": {...} pair
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		cat, err := decodeCategory(raw)
		if err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}

		// Only the first occurrence of a name decides its position
		if _, seen := m.Categories[name]; !seen {
			m.Order = append(m.Order, name)
		}
		m.Categories[name] = cat
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// decodeCategory validates a single category record. Unknown keys are ignored.
func decodeCategory(raw json.RawMessage) (Category, error) {
	// Arrays, strings and null are rejected before decoding
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return Category{}, errors.New("value must be an object with a packages array")
	}

	var rec struct {
		Description string    `json:"description"`
		Packages    *[]string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Category{}, err
	}
	// A pointer tells a missing or null "packages" apart from an empty list
	if rec.Packages == nil {
		return Category{}, errors.New("missing packages array")
	}
	for i, name := range *rec.Packages {
		if strings.TrimSpace(name) == "" {
			return Category{}, fmt.Errorf("package #%d has an empty name", i)
		}
		// Names are passed straight into the pacman and helper argv, where a
		// leading dash would be parsed as an option (e.g. "--overwrite=*").
		if strings.HasPrefix(name, "-") {
			return Category{}, fmt.Errorf("package #%d %q must not start with '-'", i, name)
		}
	}
	return Category{Description: rec.Description, Packages: *rec.Packages}, nil
}

// Lookup returns the category with the given name.
func (m *Manifest) Lookup(name string) (Category, bool) {
	cat, ok := m.Categories[name]
	return cat, ok
}

// Select resolves the categories to process. An empty override means every
// category in file order; otherwise the override is returned as given,
// including names the manifest does not contain.
func (m *Manifest) Select(override []string) []string {
	if len(override) == 0 {
		return append([]string(nil), m.Order...)
	}
	return append([]string(nil), override...)
}
