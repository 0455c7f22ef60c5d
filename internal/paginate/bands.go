package paginate

import "math"

// A4 paper size in millimetres.
const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0
)

// pageHeightTolerance is how far a layout-derived page height may drift from
// the A4 ratio before it is ignored.
const pageHeightTolerance = 0.02

// Band is a horizontal strip of the raster, in pixels.
type Band struct {
	Top    int
	Height int
}

// PageHeightPx returns the A4 page height for a raster widthPx wide.
func PageHeightPx(widthPx int) int {
	return int(math.Round(float64(widthPx) * A4HeightMM / A4WidthMM))
}

// BandHeight picks the page height in pixels. When the markup declared its
// page count and the raster splits evenly into near-A4 pages, those pages
// are used so layout pages and PDF pages coincide; otherwise plain A4.
func BandHeight(widthPx, totalPx, pages int) int {
	a4 := PageHeightPx(widthPx)
	if pages <= 0 || totalPx <= 0 || a4 <= 0 {
		return a4
	}
	h := (totalPx + pages - 1) / pages
	if math.Abs(float64(h-a4))/float64(a4) > pageHeightTolerance {
		return a4
	}
	return h
}

// PlanBands cuts totalPx rows into consecutive bands of pagePx. The last band
// may be shorter. The band heights always sum to totalPx.
func PlanBands(totalPx, pagePx int) []Band {
	if totalPx <= 0 || pagePx <= 0 {
		return nil
	}
	bands := make([]Band, 0, (totalPx+pagePx-1)/pagePx)
	for top := 0; top < totalPx; top += pagePx {
		bands = append(bands, Band{Top: top, Height: min(pagePx, totalPx-top)})
	}
	return bands
}
