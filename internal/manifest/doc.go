// Package manifest maps a build's output metadata to public URLs, computes
// per-generation update sets and writes the bootstrap document.
package manifest
