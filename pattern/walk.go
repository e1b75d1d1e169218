package pattern

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/printvault/printvault/types"
)

// Walk interprets segments against rootDir, depth-first, one segment per
// directory level, and returns every discovered model root.
//
// Accumulator semantics: each branch threads its own collection name and
// an immutable copy of the metadata map, so sibling branches can never
// observe each other's values. A {model} match terminates descent for
// that branch; directories inside a matched model root are model content,
// not further candidates.
//
// A missing root, a root with no matching subdirectories, and unreadable
// directories all yield fewer results rather than an error.
func Walk(rootDir string, segments []Segment) []types.DiscoveredModel {
	if len(segments) == 0 {
		return nil
	}
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil
	}

	var models []types.DiscoveredModel
	descend(root, segments, nil, nil, &models)
	return models
}

// descend processes one directory level against segments[0].
// collection and metadata are the accumulators for this branch only.
func descend(dir string, segments []Segment, collection *string, metadata map[string]string, out *[]types.DiscoveredModel) {
	subdirs := visibleSubdirs(dir)
	if len(subdirs) == 0 {
		return
	}

	seg := segments[0]
	for _, name := range subdirs {
		child := filepath.Join(dir, name)

		switch seg.Kind {
		case KindModel:
			*out = append(*out, types.DiscoveredModel{
				Name:           name,
				SourcePath:     child,
				CollectionName: collection,
				Metadata:       copyMap(metadata),
			})

		case KindCollection:
			branchName := name
			descend(child, segments[1:], &branchName, metadata, out)

		case KindMetadata:
			branchMeta := copyMap(metadata)
			if branchMeta == nil {
				branchMeta = make(map[string]string, 1)
			}
			branchMeta[seg.Slug] = name
			descend(child, segments[1:], collection, branchMeta, out)
		}
	}
}

// visibleSubdirs lists non-hidden subdirectory names of dir.
// Read failures (missing dir, permission denied) yield an empty list,
// skipping the branch without failing the walk.
func visibleSubdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}

// copyMap returns an independent copy of m; nil stays nil.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
