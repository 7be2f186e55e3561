// Package capability builds the capability manifest of an input device.
package capability

import (
	"evmacro/internal/input"
	"evmacro/internal/macro"
)

// Probe asks q about every known event type and, for supported types, every
// code of that type. The result lists types and (type, code) pairs in
// ascending order, so the same device state always yields the same manifest.
func Probe(q input.Querier) macro.Capabilities {
	var caps macro.Capabilities
	for _, t := range input.KnownTypes {
		if !q.HasType(t) {
			continue
		}
		caps.EventTypes = append(caps.EventTypes, int32(t))
		for _, c := range input.Codes(t) {
			if q.HasCode(t, c) {
				caps.EventCodes = append(caps.EventCodes, macro.CodePair{Type: int32(t), Code: c})
			}
		}
	}
	return caps
}
