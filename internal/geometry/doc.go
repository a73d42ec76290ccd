// Package geometry provides the small set of integer geometric types shared
// by the raster, codec, segmentation and evaluation packages.
//
// # Coordinate System
//
// Pixel (x, y) occupies the unit square [x, x+1) x [y, y+1). Two kinds of
// coordinates therefore appear:
//   - Pixel coordinates, used by Rect and by the Contains methods. A Rect is
//     half-open: it covers pixels X..X+W-1 and Y..Y+H-1.
//   - Corner (lattice) coordinates, used for Polygon vertices. A traced pixel
//     boundary runs along pixel edges, so its vertices are integer corners.
//
// Polygon.Contains tests the centre of a pixel, (x+0.5, y+0.5), against the
// polygon. Because centres never fall on lattice edges, the test is exact
// for polygons traced on the lattice.
package geometry
