package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// EndpointID computes a deterministic endpoint ID: a SHA256 digest of
// (kind, resolved path/url, method), hex-encoded. method is empty for
// WebSocket/Socketio endpoints, which carry no verb.
//
// Content-addressing keeps the ID stable across file reorders, unlike an
// incrementing counter that would renumber every endpoint after a source
// file was reordered.
func EndpointID(kind EndpointKind, pathOrURL, method string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(pathOrURL))
	h.Write([]byte{0})
	h.Write([]byte(method))
	return hex.EncodeToString(h.Sum(nil))
}
