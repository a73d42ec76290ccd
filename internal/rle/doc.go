// Package rle encodes and decodes binary masks in the run-length format of
// the 2018 Data Science Bowl nuclei competition.
//
// A Run is a vertical strip of on pixels within one column. Pixels are
// numbered 1-based and column-major, top to bottom then left to right, so
// pixel (x, y) of a raster with height H has index x*H + y + 1. For H = 4,
// pixel (1, 2) has index 7.
//
// The text form of a mask is a space-delimited list of "index length" pairs.
// A mask file has one record per mask, "name,index1 len1 index2 len2 ...",
// usually preceded by the header line "ImageId,EncodedPixels".
//
// Encode merges traced components whose bounding boxes overlap before
// emitting runs, so an object split at a pixel diagonal is written as one
// mask. Decode is idempotent: re-applying runs to pixels that are already on
// is not an error.
package rle
