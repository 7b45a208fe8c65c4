package settings

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

//go:embed defaults/base_template.json
var defaultTemplate []byte

// Template is a parsed base template
type Template struct {
	Settings Settings

	// Keys lists the top level keys in file order
	Keys []string
}

// DefaultBase returns the built-in base template (Bambu Lab A1, 0.4 nozzle)
func DefaultBase() *Template {
	t, err := parseTemplate(defaultTemplate)
	if err != nil {
		panic(fmt.Sprintf("embedded base template is invalid: %v", err))
	}
	return t
}

// LoadBase reads a base template JSON file. An empty path selects the
// built-in template. A missing file is not an error: it yields an empty
// template and a warning.
func LoadBase(path string) (*Template, []string, error) {
	if path == "" {
		return DefaultBase(), nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Template{Settings: Settings{}}, []string{fmt.Sprintf("No base template at %s", path)}, nil
		}
		return nil, nil, fmt.Errorf("failed to read base template: %w", err)
	}

	t, err := parseTemplate(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse base template %s: %w", path, err)
	}
	return t, nil, nil
}

func parseTemplate(data []byte) (*Template, error) {
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s == nil {
		return &Template{Settings: Settings{}}, nil
	}

	keys, err := objectKeys(data)
	if err != nil {
		return nil, err
	}
	return &Template{Settings: s, Keys: keys}, nil
}

// objectKeys returns the keys of a JSON object in document order. A key
// that occurs twice is listed once, at its first position.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}

		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}
