package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	top, sections, order := groupOptions(GetConfigOptions())
	lines := []string{"# quire configuration (TOML)", ""}
	for _, o := range top {
		lines = appendOption(lines, o)
	}
	for _, name := range order {
		lines = append(lines, "["+name+"]")
		for _, o := range sections[name] {
			lines = appendOption(lines, o)
		}
	}
	return strings.Join(lines, "\n")
}

// UpdateTOML adds options missing from an existing file and comments out
// keys that are no longer known. It reports whether anything changed.
func UpdateTOML(existing string) (string, bool) {
	known := make(map[string]bool)
	for _, o := range GetConfigOptions() {
		known[o.Key] = true
	}

	seen := make(map[string]bool)
	headerAt := make(map[string]int)
	section := ""
	out := make([]string, 0, strings.Count(existing, "\n")+1)
	changed := false
	for _, line := range strings.Split(existing, "\n") {
		trim := strings.TrimSpace(line)
		switch {
		case trim == "" || strings.HasPrefix(trim, "#"):
		case strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]"):
			section = strings.TrimSpace(trim[1 : len(trim)-1])
			headerAt[section] = len(out)
		default:
			key, ok := parseTOMLKey(trim)
			if !ok {
				break
			}
			if section != "" {
				key = section + "." + key
			}
			seen[key] = true
			if !known[key] {
				out = append(out, "# OUTDATED: option removed from config schema", "# "+trim)
				changed = true
				continue
			}
		}
		out = append(out, line)
	}

	var missing []ConfigOption
	for _, o := range GetConfigOptions() {
		if !seen[o.Key] {
			missing = append(missing, o)
		}
	}
	if len(missing) == 0 {
		return strings.Join(out, "\n"), changed
	}

	top, sections, order := groupOptions(missing)

	// Existing tables get their keys right below the header, walking from
	// the bottom so earlier indexes stay valid.
	var fresh []string
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		at, ok := headerAt[name]
		if !ok {
			fresh = append([]string{name}, fresh...)
			continue
		}
		var block []string
		for _, o := range sections[name] {
			block = appendOption(block, o)
		}
		out = append(out[:at+1], append(block, out[at+1:]...)...)
	}
	for _, name := range fresh {
		out = append(out, "", "["+name+"]")
		for _, o := range sections[name] {
			out = appendOption(out, o)
		}
	}
	// top-level keys must precede the first table header
	if len(top) > 0 {
		var head []string
		for _, o := range top {
			head = appendOption(head, o)
		}
		out = append(head, out...)
	}
	return strings.Join(out, "\n"), true
}

// groupOptions splits dotted keys into sections, preserving declaration order.
func groupOptions(opts []ConfigOption) ([]ConfigOption, map[string][]ConfigOption, []string) {
	var top []ConfigOption
	sections := make(map[string][]ConfigOption)
	var order []string
	for _, o := range opts {
		name, rest, ok := strings.Cut(o.Key, ".")
		if !ok {
			top = append(top, o)
			continue
		}
		if _, exists := sections[name]; !exists {
			order = append(order, name)
		}
		sections[name] = append(sections[name], ConfigOption{Key: rest, Default: o.Default, Comment: o.Comment})
	}
	return top, sections, order
}

func appendOption(lines []string, o ConfigOption) []string {
	if o.Comment != "" {
		lines = append(lines, "# "+o.Comment)
	}
	return append(lines, o.Key+" = "+tomlValue(o.Default), "")
}

func tomlValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case []string:
		parts := make([]string, len(x))
		for i, s := range x {
			parts[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}

func parseTOMLKey(line string) (string, bool) {
	key, _, ok := strings.Cut(line, "=")
	if !ok {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key[:1], `["'`) {
		return "", false
	}
	return key, true
}
