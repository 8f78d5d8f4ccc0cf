// Package domain holds the entities every other Trove package works in
// terms of: documents and their sheet sub-documents, chunks,
// extractions, search results, and the settings snapshot.
//
// The package sits at the centre of the hexagonal layout and imports
// nothing but the standard library. Ports express their contracts with
// these types, services implement behavior on them, and adapters map
// them to the outside world. Nothing here may grow a dependency on any
// other internal package.
package domain
