// Package hmr instruments source modules for hot updates.
//
// The build engine calls Hook.Resolve and Hook.Transform for every module it
// loads. Eligible modules (see Filter) get a preamble binding import.meta.hot
// to a hot context keyed by their module id, are compiled by a delegate
// Compiler, and are wrapped with refresh registration when the Refresher
// output carries the refresh marker. Everything else passes through untouched.
package hmr
