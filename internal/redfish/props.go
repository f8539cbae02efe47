// Copyright (C) RedfishTools, Inc.
// SPDX-License-Identifier: MIT

package redfish

import (
	"strings"
)

// readOnlyKeys are well-known identity and inventory properties that a
// service never accepts in a PATCH. RemoveReadOnly strips them along with all
// @odata metadata.
var readOnlyKeys = map[string]struct{}{
	"id":                {},
	"name":              {},
	"description":       {},
	"attributeregistry": {},
	"status":            {},
	"uuid":              {},
	"serialnumber":      {},
	"partnumber":        {},
	"sku":               {},
	"manufacturer":      {},
	"model":             {},
	"firmwareversion":   {},
	"links":             {},
	"actions":           {},
}

// pruneToPath walks a slash-delimited property path through data and returns
// a fragment that mirrors the nested shape along the path. Map keys match
// case-insensitively but the fragment preserves the original casing. Arrays
// are traversed element-wise; elements without the path are dropped.
func pruneToPath(data map[string]any, path string) (map[string]any, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return nil, false
	}
	fragment, ok := pruneMap(data, segments)
	if !ok {
		return nil, false
	}
	return fragment, true
}

func pruneMap(data map[string]any, segments []string) (map[string]any, bool) {
	key, val, ok := lookupKey(data, segments[0])
	if !ok {
		return nil, false
	}
	if len(segments) == 1 {
		return map[string]any{key: val}, true
	}
	pruned, ok := pruneValue(val, segments[1:])
	if !ok {
		return nil, false
	}
	return map[string]any{key: pruned}, true
}

func pruneValue(val any, segments []string) (any, bool) {
	switch v := val.(type) {
	case map[string]any:
		return pruneMap(v, segments)
	case []any:
		var pruned []any
		for _, item := range v {
			if fragment, ok := pruneValue(item, segments); ok {
				pruned = append(pruned, fragment)
			}
		}
		if len(pruned) == 0 {
			return nil, false
		}
		return pruned, true
	default:
		return nil, false
	}
}

// lookupKey finds name in data ignoring case and returns the stored key and
// value.
func lookupKey(data map[string]any, name string) (string, any, bool) {
	if val, ok := data[name]; ok {
		return name, val, true
	}
	lower := strings.ToLower(name)
	for key, val := range data {
		if strings.ToLower(key) == lower {
			return key, val, true
		}
	}
	return "", nil, false
}

// stripReadOnly returns a copy of data without read-only and @odata
// properties.
func stripReadOnly(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, val := range data {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "@odata") {
			continue
		}
		if _, reserved := readOnlyKeys[lower]; reserved {
			continue
		}
		out[key] = val
	}
	return out
}

// mergeFragment deep-merges src into dst. Fragments produced by pruneToPath
// only overlap on map containers, so scalar conflicts simply overwrite.
func mergeFragment(dst, src map[string]any) {
	for key, val := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = val
			continue
		}
		dstMap, dstOK := existing.(map[string]any)
		srcMap, srcOK := val.(map[string]any)
		if dstOK && srcOK {
			mergeFragment(dstMap, srcMap)
			continue
		}
		dst[key] = val
	}
}
