// Package defs holds the static knowledge base: definition nodes describing
// the built-in objects of a JavaScript environment, the parsers for their
// JSON and YAML documents, and the sanitizer that brings raw trees into
// canonical shape.
//
// A document is a nested object. Keys starting with "!" are metadata
// ("!type", "!doc", "!url", ...); every other key names a property of the
// live object the enclosing node describes.
package defs
