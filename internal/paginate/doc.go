// Package paginate turns one tall rasterized document into a multi-page PDF.
//
// The raster is re-encoded as JPEG on a white background, cut into
// consecutive page-height bands and assembled with fpdf. The image is
// registered once and drawn on every page at a negative vertical offset, so
// each page shows its own band. Band heights always sum to the raster height:
// no row is dropped or repeated.
package paginate
