package model

import "strings"

// Tag/file reference columns are stored as semicolon-delimited lists with
// a trailing separator after each element (mirrors the original
// serializeStrings/deserializeStrings convention). These helpers convert
// between that wire representation and a Go []string.

func deserializeIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func serializeIDs(ids []string) string {
	var b strings.Builder
	for _, id := range ids {
		if id == "" {
			continue
		}
		b.WriteString(id)
		b.WriteByte(';')
	}
	return b.String()
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func appendUniqueID(ids []string, id string) []string {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}
