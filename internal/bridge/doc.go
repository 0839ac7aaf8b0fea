// Package bridge implements the dual-cadence synchronization engine between
// an Enigma2 receiver and the local item model.
//
// The engine drives two independent refresh cycles over a device's
// subscribed bindings:
//
//   - Slow cycle: infrequently changing attributes (model, firmware
//     versions, network details), resolved from their endpoint pages with
//     per-cycle response caching.
//   - Fast cycle: attributes that follow the viewing session (current
//     event, volume, standby state, stream PIDs), resolved every few
//     seconds.
//
// Within one cycle invocation each distinct endpoint page is fetched at
// most once; the response cache deduplicates requests across bindings and
// is cleared when the cycle completes. Outbound commands (remote-control
// key presses, channel zaps) follow an act-then-resync protocol: after the
// device acknowledges the command, the engine forces uncached resolution
// of the bindings the command is known to affect.
//
// Architecture:
//
//	MQTT / HTTP API ──► Dispatch ──► receiver ──► forced resync
//	                                    ▲
//	ticker (slow) ──► UpdateCycle ──────┤
//	ticker (fast) ──► FastCycle ────────┘──► items
//
// A single binding failure (timeout, malformed response, missing
// attribute) never aborts the cycle or the process; the binding is skipped
// for that pass and retried on the next tick.
package bridge
