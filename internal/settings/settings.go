// Package settings merges the print settings that end up in
// Metadata/project_settings.config: base template, named preset and
// key=value overrides, in that order.
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const indent = "    "

// Well-known keys the pipeline reads. Everything else is passed through.
const (
	KeyPrintableArea       = "printable_area"
	KeySparseInfillDensity = "sparse_infill_density"
	KeySparseInfillPattern = "sparse_infill_pattern"
	KeyLayerHeight         = "layer_height"
	KeyWallLoops           = "wall_loops"
	KeyEnableSupport       = "enable_support"
)

// Settings is a flat Bambu Studio settings document. Values are strings,
// or string lists when they come from a JSON template.
type Settings map[string]any

// Clone returns a shallow copy; list values are copied as well.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		switch list := v.(type) {
		case []any:
			out[k] = append([]any(nil), list...)
		case []string:
			out[k] = append([]string(nil), list...)
		default:
			out[k] = v
		}
	}
	return out
}

// String returns the value of key if it is a string
func (s Settings) String(key string) (string, bool) {
	v, ok := s[key].(string)
	return v, ok
}

// StringOr returns the string value of key or def if missing
func (s Settings) StringOr(key, def string) string {
	if v, ok := s.String(key); ok {
		return v
	}
	return def
}

// Strings returns a list value. A plain string is split on commas so that
// list settings can be given on the command line, e.g.
// printable_area=0x0,256x0,256x256,0x256.
func (s Settings) Strings(key string) ([]string, error) {
	switch v := s[key].(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d]: expected string, got %T", key, i, item)
			}
			out = append(out, str)
		}
		return out, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return nil, fmt.Errorf("%s: expected string list, got %T", key, v)
	}
}

// MarshalIndent renders the settings as the project_settings.config
// document with the keys sorted
func (s Settings) MarshalIndent() ([]byte, error) {
	return s.MarshalOrdered(nil)
}

// MarshalOrdered renders the settings with 4 space indentation. Keys listed
// in order come first, in that order; the remaining keys follow sorted.
func (s Settings) MarshalOrdered(order []string) ([]byte, error) {
	keys := make([]string, 0, len(s))
	seen := make(map[string]bool, len(s))
	for _, k := range order {
		if _, ok := s[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range s {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	if len(keys) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, k := range keys {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("error marshaling settings key %q: %w", k, err)
		}
		value, err := json.MarshalIndent(s[k], indent, indent)
		if err != nil {
			return nil, fmt.Errorf("error marshaling settings: %s: %w", k, err)
		}

		buf.WriteString(indent)
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}

// KeyOrder returns the key order of a merged document: the base template
// order, then preset keys not in the base (sorted), then override keys in
// the order they were given
func KeyOrder(base []string, preset Settings, overrides []string) []string {
	order := append([]string(nil), base...)
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		seen[k] = true
	}

	var presetKeys []string
	for k := range preset {
		if !seen[k] {
			presetKeys = append(presetKeys, k)
		}
	}
	sort.Strings(presetKeys)
	for _, k := range presetKeys {
		seen[k] = true
		order = append(order, k)
	}

	for _, override := range overrides {
		key, _, ok := strings.Cut(override, "=")
		if ok && !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}
	return order
}

// Merge layers base, preset and overrides ("key=value") left to right; the
// last write wins. Overrides without '=' are skipped with a warning.
// The inputs are not modified.
func Merge(base, preset Settings, overrides []string) (Settings, []string) {
	merged := base.Clone()
	for k, v := range preset.Clone() {
		merged[k] = v
	}

	var warnings []string
	for _, override := range overrides {
		key, value, ok := strings.Cut(override, "=")
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Invalid setting format '%s', expected key=value", override))
			continue
		}
		merged[key] = value
	}

	return merged, warnings
}
