package paginate

import "errors"

// Sentinel errors for pagination.
var (
	// ErrEmptyRaster indicates a raster with no pixels or no data.
	ErrEmptyRaster = errors.New("empty raster")

	// ErrImageDecode indicates the captured screenshot could not be decoded.
	ErrImageDecode = errors.New("screenshot decoding failed")

	// ErrJPEGEncode indicates JPEG re-encoding failed.
	ErrJPEGEncode = errors.New("JPEG encoding failed")

	// ErrPDFAssembly indicates the PDF writer failed.
	ErrPDFAssembly = errors.New("PDF assembly failed")
)
