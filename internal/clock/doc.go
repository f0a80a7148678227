// Package clock implements the beeclock logical time kernel.
//
// Time is a tick counter partitioned into a mixed-radix sequence of
// bounded digits (e.g. sec/min/hour). Each call to Tick advances the
// counter by one step, cascades the partitions in significance order,
// and evaluates every registered pulse predicate against the resulting
// snapshot.
//
// ARCHITECTURE:
//
// Single-Driver Stepping:
// The clock performs no I/O, spawns no goroutines, and blocks on
// nothing. One external driver calls Tick once per logical step. Tick
// is NOT safe for concurrent use on the same Clock without external
// serialization; the contract assumes a single driver goroutine.
//
// Two Lifecycle States:
// A Builder accumulates partitions, pulses, and an order selection
// (Unbuilt, fallible). Build validates everything and freezes the
// configuration into a Clock (Running, infallible). There is no path
// back: no partitions or pulses can be added after Build.
//
// CRITICAL PATTERNS:
//
// Front-Loaded Validation:
// Every possible misconfiguration is rejected by Build with a
// structured BuildError. A successfully built clock can always be
// stepped - Tick never returns an error, and the one would-be runtime
// edge case (a condition referencing a missing partition) degrades to
// false instead of aborting.
//
// Fixed-Shape Storage:
// Partition and pulse storage is sized exactly once at build time and
// never resized. A steady-state Tick allocates only the outcome's
// pulse list, which is bounded by the registered pulse count.
//
// Deterministic Ordering:
// Pulses within one outcome are listed in registration order, followed
// by the reserved overflow pulse when the tick counter wraps. Across
// steps, outcomes are strictly ordered by the (epoch, tick) pair.
package clock
