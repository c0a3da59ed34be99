package rbac

import "strings"

// MatchFunc decides whether a request path satisfies a permission endpoint
// pattern. The middleware takes one so the matching policy stays swappable.
type MatchFunc func(path, endpoint string) bool

// MatchLoose reports whether the request path satisfies the endpoint
// pattern under containment semantics: segment counts must agree, every
// literal pattern segment must appear somewhere among the path segments,
// and parameter segments match anything. Literal matching ignores
// position, so reordered paths can still match; callers wanting
// positional matching use MatchStrict instead.
//
// Comparison is case sensitive; callers lower-case both inputs first.
func MatchLoose(path, endpoint string) bool {
	pathOnly, _, _ := strings.Cut(path, "?")
	pathSegments := strings.Split(pathOnly, "/")
	endpointSegments := strings.Split(endpoint, "/")

	if len(pathSegments) != len(endpointSegments) {
		return false
	}

	matched := false
	for _, segment := range endpointSegments {
		if isParamSegment(segment) {
			continue
		}
		matched = false
		for _, pathSegment := range pathSegments {
			if pathSegment == segment {
				matched = true
				break
			}
		}
		if !matched {
			break
		}
	}
	return matched
}

// MatchStrict is the positional variant: each literal segment must equal
// the path segment at the same index.
func MatchStrict(path, endpoint string) bool {
	pathOnly, _, _ := strings.Cut(path, "?")
	pathSegments := strings.Split(pathOnly, "/")
	endpointSegments := strings.Split(endpoint, "/")

	if len(pathSegments) != len(endpointSegments) {
		return false
	}
	if len(endpointSegments) == 0 {
		return false
	}
	for i, segment := range endpointSegments {
		if isParamSegment(segment) {
			continue
		}
		if pathSegments[i] != segment {
			return false
		}
	}
	return true
}

// Parameter segments use either the colon or the brace convention,
// e.g. "api/permissions/:permId" or "api/permissions/{permId}".
func isParamSegment(segment string) bool {
	return strings.Contains(segment, ":") || strings.Contains(segment, "{")
}
