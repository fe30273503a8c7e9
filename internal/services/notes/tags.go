package notes

import "strings"

// NormalizeTag trims and lowercases a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// ParseTagList splits a comma separated list into normalized tags,
// dropping empty entries.
func ParseTagList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := NormalizeTag(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// MergeTags returns the union of existing and incoming, existing order first.
// Duplicates are removed on the normalized form.
func MergeTags(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, t := range list {
			t = NormalizeTag(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// RemoveTag returns tags without tag. The input is not modified.
func RemoveTag(tags []string, tag string) []string {
	tag = NormalizeTag(tag)
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}
