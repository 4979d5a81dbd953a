// Package mediatypes provides shared type definitions and utilities for media
// file classification across localfeed.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains primitive types,
// constants, and pure utility functions with no dependencies beyond the
// standard library.
//
// Use GetKind to classify a file by its extension:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	kind := mediatypes.GetKind(ext)
//
// and GetMimeType to pick the Content-Type for HTTP responses.
package mediatypes
