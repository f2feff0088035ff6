package models

import (
	"encoding/json"
	"strings"
)

// The spaces table stores objectives, prerequisites, mentor and
// space_color as JSON text. Rows written by older clients (or corrupted
// by hand edits) must never block a load, so every decoder falls back
// to an empty default instead of returning an error.

// DecodeStringList parses a JSON array of strings, tolerating absence
// and malformed input.
func DecodeStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// DecodeMentor parses a JSON mentor object, falling back to the zero
// Mentor on malformed input.
func DecodeMentor(raw string) Mentor {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Mentor{}
	}
	var m Mentor
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Mentor{}
	}
	return m
}

// DecodeSpaceColor parses a JSON palette, returning nil (no palette)
// on malformed input.
func DecodeSpaceColor(raw string) *SpaceColor {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var c SpaceColor
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil
	}
	if c.Main == "" && c.Secondary == "" && c.Accent == "" {
		return nil
	}
	return &c
}

// EncodeJSON marshals v for storage in a JSON-text column. Encoding a
// model value cannot realistically fail; an empty object keeps the
// column well-formed if it somehow does.
func EncodeJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
