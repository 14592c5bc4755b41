// Package build owns the rebuild lifecycle: the engine contract, the build
// result shape and the Scheduler that serializes rebuilds.
//
// The Scheduler is a three-state machine (idle, building, building with a
// follow-up pending). Builds never overlap and any number of watch events
// arriving during a build collapse into exactly one follow-up build.
package build
