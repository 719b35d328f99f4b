// Package paths groups documented methods by the generic form of their request path.
package paths

import (
	"strings"
)

// Placeholder replaces resource key segments in generic paths.
const Placeholder = "{var}"

// GenericPath converts a documented request path into its generic form: the
// base URL and any query string are removed and every {key} segment becomes
// Placeholder. The second result is false when the path is not root relative,
// which means it points outside the documented API.
func GenericPath(requestPath, baseURL string) (string, bool) {
	path := strings.TrimSpace(requestPath)

	// Some examples include the verb on the same line ("GET /me").
	if idx := strings.IndexByte(path, ' '); idx > 0 && !strings.Contains(path[:idx], "/") {
		path = strings.TrimSpace(path[idx+1:])
	}

	base := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if base != "" && len(path) >= len(base) && strings.EqualFold(path[:len(base)], base) {
		path = path[len(base):]
	}

	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}

	if !strings.HasPrefix(path, "/") {
		return "", false
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if IsKeySegment(segment) {
			segment = Placeholder
		}
		parts = append(parts, segment)
	}
	return "/" + strings.Join(parts, "/"), true
}

// IsKeySegment reports whether a path segment is a documented key token such as {user-id}.
func IsKeySegment(segment string) bool {
	return len(segment) >= 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

// Segments splits a generic path into its segments without the leading slash.
func Segments(genericPath string) []string {
	trimmed := strings.TrimPrefix(genericPath, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
