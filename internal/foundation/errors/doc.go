// Package errors provides foundational, type-safe error primitives used across hotbundle.
//
// Errors carry a category (transform, build, config, watch, delivery, ...), a
// severity and structured context. The category decides how far an error
// propagates: transform and build errors fail one generation, config errors
// halt the dev server, watch and delivery errors are logged and swallowed.
//
// Example usage:
//
//	err := errors.TransformError("compile failed").
//		WithContext("path", path).
//		WithCause(cause).
//		Build()
package errors
