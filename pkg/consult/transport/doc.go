// Package transport maintains the WebSocket link to the guardian
// backend.
//
// A Channel owns one connection and splits its frames into decoded
// protocol events and raw audio. A Manager owns the channel's
// lifecycle: it redials with exponential backoff when the link drops
// and guarantees at most one live channel at a time.
package transport
