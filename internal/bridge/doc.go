// Package bridge adapts the clock kernel for foreign embedding.
//
// A host runtime drives the kernel through two paths with identical
// semantics:
//
//   - The rich path returns JSON-marshalable views in which every
//     64-bit counter carries both a numeric field and a decimal string
//     twin. Hosts whose number type is only 53-bit safe read the
//     string; everyone else reads the number. A counter never crosses
//     the boundary as a double.
//
//   - The raw path writes into caller-owned uint32 buffers with a
//     fixed word layout, so a render loop polling at display refresh
//     rate allocates nothing per frame.
//
// Condition literals let hosts that cannot construct Go values
// register pulses from tagged JSON objects. Literals are parsed once
// at registration; malformed literals fail there, never during a tick.
package bridge
