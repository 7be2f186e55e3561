// Package protocol implements the binary container that stores a recorded
// macro on disk.
//
// Layout (little-endian):
//
//	magic       "MACR{O}"                      7 bytes
//	event_types u32 count + count * i32
//	event_codes u32 count + count * (i32, u16)
//	events      u32 count + count * record
//
//	record:     duration(i64 ns) + type(u16) + code(u16) + value(i32) = 16 bytes
package protocol

// Magic is the tag every container starts with
const Magic = "MACR{O}"

const (
	// CountSize is the size of every sequence length prefix
	CountSize = 4

	// TypeSize is the size of an event_types element
	TypeSize = 4

	// CodePairSize is the size of an event_codes element
	CodePairSize = 6

	// EventSize is the size of one event record
	EventSize = 16
)
