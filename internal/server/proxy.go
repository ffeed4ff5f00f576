package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxProxyBodyBytes caps request and response bodies independently at 25
// MiB per direction.
const maxProxyBodyBytes = 25 * 1024 * 1024

// proxyHopByHop lists the headers stripped in both directions; the proxy
// manages its own connection and CORS headers.
var proxyHopByHop = map[string]bool{
	"host":              true,
	"connection":        true,
	"content-length":    true,
	"transfer-encoding": true,
}

var proxyClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
	},
}

// proxyRequestTimeout bounds each proxied request's dial-plus-round-trip
// time; a var (not a const) so tests can shrink it to exercise the 504
// path without a real 60-second wait.
var proxyRequestTimeout = 60 * time.Second

// handleProxy serves the CORS proxy plane: ANY
// /proxy/<url-encoded-absolute-url> decodes the tail, forwards the
// method/headers/body to it, and writes the upstream response back once it
// has been read in full (buffered, up to the body cap).
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	tail := strings.TrimPrefix(r.URL.Path, "/proxy/")
	target, err := url.QueryUnescape(tail)
	if err != nil || target == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid proxy target"})
		return
	}
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	targetURL, err := url.Parse(target)
	if err != nil || !targetURL.IsAbs() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "proxy target must be an absolute URL"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), proxyRequestTimeout)
	defer cancel()

	body := http.MaxBytesReader(w, r.Body, maxProxyBodyBytes)
	upReq, err := http.NewRequestWithContext(ctx, r.Method, targetURL.String(), body)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to build proxy request"})
		return
	}
	for key, values := range r.Header {
		if proxyHopByHop[strings.ToLower(key)] {
			continue
		}
		for _, v := range values {
			upReq.Header.Add(key, v)
		}
	}

	resp, err := proxyClient.Do(upReq)
	if err != nil {
		if isBodyTooLarge(err) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "body too large"})
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "upstream request timed out"})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "proxy request failed", "details": err.Error()})
		return
	}
	defer resp.Body.Close()

	// Buffered (not streamed) so an over-cap response can still be turned
	// into a 502 instead of a response whose headers were already sent.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBodyBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "proxy response read failed", "details": err.Error()})
		return
	}
	if len(respBody) > maxProxyBodyBytes {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "body too large"})
		return
	}

	for key, values := range resp.Header {
		if proxyHopByHop[strings.ToLower(key)] || strings.HasPrefix(strings.ToLower(key), "access-control-") {
			continue
		}
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(respBody)
}

func isBodyTooLarge(err error) bool {
	return err != nil && strings.Contains(err.Error(), "http: request body too large")
}
