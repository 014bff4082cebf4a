// Package server exposes strip sessions over HTTP.
//
// Each viewer creates a session with POST /api/strips and then drives cycles
// either with POST /api/strips/{id}/cycle or over the WebSocket at
// /api/strips/{id}/ws, where every text frame is a Signals object answered by
// one Directives object. Scaled assets are served from /assets/.
package server
