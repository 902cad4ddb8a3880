// Package wire implements the byte-level codec shared by the inbound command
// stream and the outbound event stream.
//
// Every message travels as a frame: a 4-byte big-endian payload length
// followed by the payload. Fields inside a payload use the host's native
// byte order:
//
//	┌──────────────────────────┬──────────────────────────────────┐
//	│ length (u32, big-endian) │ payload (host byte order fields) │
//	└──────────────────────────┴──────────────────────────────────┘
//
// Strings carried with an explicit length may be padded with NUL bytes; the
// padding is trimmed and the remainder must be valid UTF-8.
package wire
