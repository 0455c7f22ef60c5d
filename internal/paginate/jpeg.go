package paginate

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
)

// DefaultJPEGQuality trades negligible fidelity for a much smaller file.
const DefaultJPEGQuality = 85

// EncodeJPEG flattens img onto white and encodes it. Out-of-range quality
// uses DefaultJPEGQuality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyRaster
	}
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	bounds := img.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJPEGEncode, err)
	}
	return buf.Bytes(), nil
}

// FromPNG decodes a PNG screenshot into a JPEG raster. pages is the number
// of layout pages the markup declares, or 0 when unknown.
func FromPNG(data []byte, quality, pages int) (Raster, error) {
	if len(data) == 0 {
		return Raster{}, ErrEmptyRaster
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return Raster{}, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	encoded, err := EncodeJPEG(img, quality)
	if err != nil {
		return Raster{}, err
	}
	return Raster{
		JPEG:   encoded,
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
		Pages:  pages,
	}, nil
}
