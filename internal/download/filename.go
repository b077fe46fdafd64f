package download

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Matches the disposition shape the update CDN sends: a single
// non-whitespace token, unquoted.
var dispositionRegex = regexp.MustCompile(`attachment; filename=(\S+)`)

// ResolveFilename determines the on-disk name for a response, preferring a
// Content-Disposition header over the resolved request URL. A disposition
// header that is present but does not parse is an error rather than a
// fall-through: the server asserted a filename we could not understand.
func ResolveFilename(resp *http.Response) (string, error) {
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		matches := dispositionRegex.FindStringSubmatch(disposition)
		if matches == nil {
			return "", fmt.Errorf("failed to parse content-disposition header: %s", disposition)
		}
		return matches[1], nil
	}
	for _, segment := range splitReverse(resp.Request.URL.Path) {
		if segment != "" {
			return segment, nil
		}
	}
	return "", fmt.Errorf("failed to parse the filename from the url %s", resp.Request.URL)
}

func splitReverse(path string) []string {
	segments := strings.Split(path, "/")
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return segments
}
