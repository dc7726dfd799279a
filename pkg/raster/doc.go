// Package raster provides the pixel surface the compositor draws on.
//
// [Canvas] is the narrow drawing capability the compositor depends on:
// measure a string, draw text runs with an optional outline and blur, paste
// an image, and encode the result. [GG] implements it on top of
// github.com/fogleman/gg, with outlines and soft shadows done on glyph alpha
// masks.
//
// The package also owns background handling: [Decode] and [Open] read any
// format registered with the image package (JPEG, PNG, GIF, BMP, TIFF, WebP),
// honoring EXIF orientation, and [Normalize] scales and center-crops an image
// to the canonical slide size.
package raster
