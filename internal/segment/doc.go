// Package segment builds a multi-threshold region hierarchy over one
// grayscale channel and proposes stable object boundaries from it.
//
// # Pipeline
//
//  1. Layer sweep: the channel is thresholded at every integer level
//     between its minimum and maximum intensity (exclusive). Polygon
//     components above a minimum area become Regions, with intensity
//     statistics measured over exactly the polygon's pixels. Layers are
//     computed in parallel, one scratch raster per worker.
//  2. Flatten and dedupe: regions are sorted by area, bounds and threshold;
//     a region whose bounding box equals its predecessor's is dropped.
//  3. Containment: each region is attached to the first larger region whose
//     box strictly contains its box and whose polygon covers it. A synthetic
//     root spanning the image takes everything else.
//  4. Pruning: leaves whose branch-ancestor path is short are removed until
//     no more qualify.
//  5. Trend analysis: area against threshold is fitted along each leaf's
//     root path; fits agreeing with the majority slope sign are reported as
//     candidates with their strongest window.
//
// # Arena
//
// All segments live in one slice owned by the Tree. Parents and children
// are slice indices, never pointers, and removed segments stay in the
// arena marked as removed so that indices remain stable.
//
// # Thread Safety
//
// Build is the only mutating phase besides Prune. Once Build (and any Prune)
// has returned, read-only methods such as Analyze, Filter, Leaves and Crop
// may be called concurrently.
package segment
