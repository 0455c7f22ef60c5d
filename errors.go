package jd2pdf

import "errors"

// Sentinel errors returned by Generate. Match them with errors.Is.
var (
	// ErrInvalidInput means the job or company failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGeneration wraps failures that have no more specific sentinel,
	// including recovered panics.
	ErrGeneration = errors.New("document generation failed")

	// ErrBrowserConnect means headless Chrome could not be launched or reached.
	ErrBrowserConnect = errors.New("failed to connect to browser")

	// ErrPageCreate means the off-screen tab could not be opened.
	ErrPageCreate = errors.New("failed to create browser page")

	// ErrPageLoad means the generated markup did not finish loading.
	ErrPageLoad = errors.New("failed to load page")

	// ErrCapture means the screenshot of the laid-out document failed.
	ErrCapture = errors.New("failed to capture page")

	// ErrRasterize means the captured image could not be converted to JPEG.
	ErrRasterize = errors.New("failed to rasterize document")

	// ErrPDFAssembly means the PDF could not be built from the raster.
	ErrPDFAssembly = errors.New("failed to assemble PDF")

	// ErrMarkup means the document markup could not be built.
	ErrMarkup = errors.New("failed to build document markup")

	// ErrInvalidAssetPath means WithAssetPath points at an unusable directory.
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// ErrStyleNotFound means the requested stylesheet does not exist.
	ErrStyleNotFound = errors.New("style not found")

	// ErrTemplateSetNotFound means the requested template set does not exist.
	ErrTemplateSetNotFound = errors.New("template set not found")

	// ErrInvalidOption means an option value was rejected by NewGenerator.
	ErrInvalidOption = errors.New("invalid option")

	// ErrPoolClosed is returned by GeneratorPool.Acquire after Close.
	ErrPoolClosed = errors.New("generator pool closed")
)
