package patch

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/resume/model"
)

// DiffType classifies a diff entry. There is no "moved" type: a reordered
// array element shows up as a removed/added pair at each index.
type DiffType string

const (
	DiffAdded     DiffType = "added"
	DiffRemoved   DiffType = "removed"
	DiffUnchanged DiffType = "unchanged"
)

// DiffEntry describes one leaf difference between two documents.
type DiffEntry struct {
	Type  DiffType `json:"type"`
	Path  string   `json:"path"`
	Value any      `json:"value"`
}

// DiffOptions controls diff output.
type DiffOptions struct {
	IncludeUnchanged bool
}

// DiffSummary counts entries by type.
type DiffSummary struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// Summarize tallies a diff.
func Summarize(entries []DiffEntry) DiffSummary {
	var s DiffSummary
	for _, e := range entries {
		switch e.Type {
		case DiffAdded:
			s.Added++
		case DiffRemoved:
			s.Removed++
		case DiffUnchanged:
			s.Unchanged++
		}
	}
	return s
}

// ComputeDiff compares the leaves of two documents. A changed leaf yields a
// removed entry carrying the old value followed by an added entry carrying the
// new one. Empty strings, nulls and empty containers count as absent.
func ComputeDiff(oldDoc, newDoc model.Document, opts DiffOptions) ([]DiffEntry, error) {
	oldTree, err := oldDoc.ToTree()
	if err != nil {
		return nil, err
	}
	newTree, err := newDoc.ToTree()
	if err != nil {
		return nil, err
	}

	oldLeaves := map[string]any{}
	newLeaves := map[string]any{}
	order := map[string]string{}
	flatten("", "", oldTree, oldLeaves, order)
	flatten("", "", newTree, newLeaves, order)

	paths := make([]string, 0, len(order))
	for path := range order {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		return order[paths[i]] < order[paths[j]]
	})

	var out []DiffEntry
	for _, path := range paths {
		oldVal, inOld := oldLeaves[path]
		newVal, inNew := newLeaves[path]
		switch {
		case inOld && inNew && reflect.DeepEqual(oldVal, newVal):
			if opts.IncludeUnchanged {
				out = append(out, DiffEntry{Type: DiffUnchanged, Path: path, Value: newVal})
			}
		case inOld && inNew:
			out = append(out,
				DiffEntry{Type: DiffRemoved, Path: path, Value: oldVal},
				DiffEntry{Type: DiffAdded, Path: path, Value: newVal},
			)
		case inOld:
			out = append(out, DiffEntry{Type: DiffRemoved, Path: path, Value: oldVal})
		case inNew:
			out = append(out, DiffEntry{Type: DiffAdded, Path: path, Value: newVal})
		}
	}
	return out, nil
}

// flatten records every non-empty leaf under its display path. sortKey mirrors
// path with zero-padded indices so "[10]" sorts after "[9]".
func flatten(path, sortKey string, node any, leaves map[string]any, order map[string]string) {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			childPath := key
			childKey := key
			if path != "" {
				childPath = path + "." + key
				childKey = sortKey + "." + key
			}
			flatten(childPath, childKey, child, leaves, order)
		}
	case []any:
		for i, child := range v {
			flatten(fmt.Sprintf("%s[%d]", path, i), fmt.Sprintf("%s[%06d]", sortKey, i), child, leaves, order)
		}
	case nil:
		return
	case string:
		if strings.TrimSpace(v) == "" {
			return
		}
		leaves[path] = v
		order[path] = sortKey
	default:
		leaves[path] = v
		order[path] = sortKey
	}
}
