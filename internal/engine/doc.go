// Package engine adapts esbuild to the build.Engine contract.
//
// It owns the incremental esbuild context, routes every loaded source file
// through the transform hook, serves the virtual hot runtime modules and
// converts the metafile into manifest.Metadata.
package engine
