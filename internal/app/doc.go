// Package app is the composition root of the viewer.
//
// Run loads the config and viewer preferences, opens the viewer log, creates
// a strip session on the server and picks the cycle transport (WebSocket by
// default, plain HTTP when configured). It then starts the status poller and
// hands everything to the ui package, blocking until the viewer exits. The
// session is deleted on the way out.
//
// The poller refreshes the session summary into a state.Store read by the UI.
// Failed polls are counted by the store; the wait between polls doubles with
// every consecutive failure, up to 30 seconds, so a stopped server is not
// hammered while the viewer shows it as offline.
package app
