// Package raster implements the binary raster (Bitmap) that every other
// analysis step is built on.
//
// A Bitmap is a fixed-size W x H grid of on/off pixels stored as a dense,
// row-major bit array. The package provides:
//
//   - Pixel access: Set and IsOn are bounds-checked and return ErrOutOfBounds
//     for coordinates outside the grid. Nothing is clamped or wrapped.
//   - Thresholding of an 8-bit pixel Source into a Bitmap.
//   - Connected components with 8-connectivity, either as bounding boxes
//     (Components) or as traced boundary polygons (PolyComponents).
//   - Boundary tracing (Trace) and polygon simplification to dominant points.
//   - Thinning (Thin) to a one-pixel skeleton and vectorization of the
//     skeleton into straight segments (Segments).
//   - Row/column projection histograms and a histogram based region-of-
//     interest splitter.
//   - Export helpers: raw pixel buffers and image.Gray snapshots.
//
// # Polygons
//
// Boundary polygons run along pixel edges, so their vertices are pixel
// corners (see package geometry). For a component without holes, the set of
// pixels whose centres the polygon contains is exactly the component.
//
// # Thread Safety
//
// A Bitmap is not safe for concurrent mutation. Read-only methods may be
// called concurrently once no goroutine is writing. Use Clone to hand an
// independent copy to another goroutine.
package raster
