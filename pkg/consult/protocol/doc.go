// Package protocol defines the wire messages exchanged with the
// guardian backend over a consult session.
//
// The session multiplexes two frame kinds: binary frames carry audio
// (microphone PCM upstream, synthesized MP3 downstream) and text frames
// carry JSON messages tagged with a "type" field. Commands flow from
// the client, events flow from the server.
package protocol
