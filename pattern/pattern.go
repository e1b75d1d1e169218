// Package pattern implements the folder-import template language: a
// /-joined sequence of tokens mapping directory depth to semantic roles.
//
//	{Collection}/{metadata.artist}/{model}
//
// Parsing is pure and performs no I/O. The walk (walk.go) interprets
// parsed segments against a real directory tree.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern is the sentinel for template configuration errors.
// Surfaced synchronously to the caller before any job is enqueued.
var ErrInvalidPattern = errors.New("invalid import pattern")

// SegmentKind is the semantic role of one directory level.
type SegmentKind int

// Segment roles. Exactly one KindModel segment exists per pattern and
// it is always last.
const (
	KindModel SegmentKind = iota
	KindCollection
	KindMetadata
)

// Segment is one parsed level of an import template.
type Segment struct {
	Kind SegmentKind
	// Slug is the metadata key for KindMetadata segments, empty otherwise.
	Slug string
}

// Token renders the segment back to its template token.
func (s Segment) Token() string {
	switch s.Kind {
	case KindModel:
		return "{model}"
	case KindCollection:
		return "{Collection}"
	case KindMetadata:
		return "{metadata." + s.Slug + "}"
	default:
		return ""
	}
}

// slugPattern restricts metadata keys to snake_case identifiers.
var slugPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// metadataToken matches {metadata.<slug>} and captures the slug.
var metadataToken = regexp.MustCompile(`^\{metadata\.([^}]+)\}$`)

// Parse parses a template string into segments. Fails with
// ErrInvalidPattern if any token is unrecognized, if more than one
// {model} token appears, or if the last token is not {model}.
func Parse(template string) ([]Segment, error) {
	if strings.TrimSpace(template) == "" {
		return nil, fmt.Errorf("%w: empty template", ErrInvalidPattern)
	}

	tokens := strings.Split(template, "/")
	segments := make([]Segment, 0, len(tokens))
	modelCount := 0

	for _, token := range tokens {
		switch {
		case token == "{model}":
			modelCount++
			segments = append(segments, Segment{Kind: KindModel})
		case token == "{Collection}":
			segments = append(segments, Segment{Kind: KindCollection})
		case metadataToken.MatchString(token):
			slug := metadataToken.FindStringSubmatch(token)[1]
			if !slugPattern.MatchString(slug) {
				return nil, fmt.Errorf("%w: bad metadata slug %q", ErrInvalidPattern, slug)
			}
			segments = append(segments, Segment{Kind: KindMetadata, Slug: slug})
		default:
			return nil, fmt.Errorf("%w: unrecognized token %q", ErrInvalidPattern, token)
		}
	}

	if modelCount == 0 {
		return nil, fmt.Errorf("%w: missing {model} token", ErrInvalidPattern)
	}
	if modelCount > 1 {
		return nil, fmt.Errorf("%w: multiple {model} tokens", ErrInvalidPattern)
	}
	if segments[len(segments)-1].Kind != KindModel {
		return nil, fmt.Errorf("%w: {model} must be the last token", ErrInvalidPattern)
	}

	return segments, nil
}

// String renders segments back to the template form. For any template
// accepted by Parse, String(Parse(t)) == t.
func String(segments []Segment) string {
	tokens := make([]string, len(segments))
	for i, s := range segments {
		tokens[i] = s.Token()
	}
	return strings.Join(tokens, "/")
}
