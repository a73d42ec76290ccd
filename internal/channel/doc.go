// Package channel turns decoded images into 8-bit, single-channel pixel
// sources for the segmentation engine.
//
// A Channel is an immutable grid of intensities together with its histogram
// and intensity range. It implements raster.Source, so it can be fed
// directly to raster.Threshold, segment.Build and model.Train.
//
// # Channel Kinds
//
//   - Gray: ITU-R BT.601 luminance, computed with disintegration/imaging
//   - Red, Green, Blue: the individual 8-bit color components
//   - Lightness: CIE L*a*b* lightness (L*) scaled to 0..255, computed with
//     go-colorful. Tracks perceived brightness better than Gray for stained
//     microscopy slides.
//
// # Loading
//
// ImageCache loads and caches decoded images by path. PNG, JPEG, GIF and
// TIFF are registered; TIFF support comes from golang.org/x/image/tiff,
// which is the common container for microscopy frames.
//
// # Thread Safety
//
// Channels are read-only after construction and safe for concurrent use.
// ImageCache is safe for concurrent use by multiple goroutines.
package channel
