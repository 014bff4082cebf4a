// Package client provides the HTTP and WebSocket client for the imagestrip
// server.
//
// # Overview
//
// Client wraps the JSON API: sessions are created with CreateSession, images
// are added with Register and summaries are read with FetchStatus. Cycles run
// through a Transport, either plain HTTP (SessionTransport) or a persistent
// WebSocket (Dial). Both satisfy the same interface so the viewer does not care
// which one the configuration picked. A WebSocket that failed a cycle is
// dropped and redialled on the next one.
//
// # Errors
//
// Responses with a status of 400 or above become *APIError carrying the
// server's error message.
package client
