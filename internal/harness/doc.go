// Package harness runs declarative clock scenarios for conformance
// testing.
//
// A scenario is a YAML file naming a clock configuration, a tick
// count, and assertions over the resulting trace. The harness builds
// the clock through the kernel's builder, drives it the requested
// number of ticks, records every step on which a pulse fired, and
// checks the assertions against the trace and the final snapshot.
//
// Golden-file comparison (RunWithGolden) pins the full trace of a
// scenario: any behavioral drift in the kernel shows up as a golden
// diff before it shows up as a failed assertion.
package harness
