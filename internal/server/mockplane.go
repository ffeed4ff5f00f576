package server

import (
	"net/http"
	"strings"

	"reqcraft/internal/mock"
	"reqcraft/internal/model"
)

// handleMock serves the mock plane: ANY /mock/<path-and-tail>
// is matched against every Http endpoint's declared path, allowing
// "{name}" path segments to bind, with the request verb required to match
// the endpoint's method.
func (s *Server) handleMock(w http.ResponseWriter, r *http.Request) {
	reqPath := strings.TrimPrefix(r.URL.Path, "/mock")
	m := s.currentModel()
	if m == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no model loaded", "path": reqPath})
		return
	}

	ep, ok := matchMockEndpoint(m.Endpoints, reqPath, r.Method)
	if !ok || ep.Response == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no mock endpoint matches", "path": reqPath})
		return
	}
	body := mock.Synthesize(ep.Response, mock.ModeResponse)
	writeJSON(w, http.StatusOK, body)
}

func matchMockEndpoint(endpoints []model.Endpoint, reqPath, method string) (model.Endpoint, bool) {
	for _, ep := range endpoints {
		if ep.Kind != model.KindHTTP || ep.Method != method {
			continue
		}
		if pathMatches(ep.Path, reqPath) {
			return ep, true
		}
	}
	return model.Endpoint{}, false
}

// pathMatches compares a declared path (which may contain "{name}"
// segments) against a request path. A placeholder segment binds any
// single segment; a trailing placeholder also absorbs any further
// segments, so a catch-all route like "/files/{rest}" matches
// "/files/a/b/c".
func pathMatches(pattern, reqPath string) bool {
	patSegs := splitPath(pattern)
	reqSegs := splitPath(reqPath)

	for i, seg := range patSegs {
		isLast := i == len(patSegs)-1
		isPlaceholder := strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")

		if i >= len(reqSegs) {
			return false
		}
		if isPlaceholder {
			if isLast {
				return true // absorbs this and any remaining segments
			}
			continue
		}
		if seg != reqSegs[i] {
			return false
		}
	}
	return len(patSegs) == len(reqSegs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
