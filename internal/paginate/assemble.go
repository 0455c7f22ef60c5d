package paginate

import (
	"bytes"
	"fmt"
	"time"

	"codeberg.org/go-pdf/fpdf"
)

// Raster is one tall JPEG image of the whole document.
type Raster struct {
	JPEG   []byte
	Width  int // pixels
	Height int // pixels
	Pages  int // layout pages declared by the markup, 0 if unknown
}

// Meta is written into the PDF info dictionary. Created is used for both
// the creation and modification dates so equal inputs give equal bytes.
type Meta struct {
	Title   string
	Author  string
	Subject string
	Creator string
	Created time.Time
}

// Result is an assembled document.
type Result struct {
	PDF   []byte
	Pages int
	Bands []Band
}

const rasterImageName = "document"

// Assemble writes r as a compressed multi-page PDF, one page per band. Every
// page is 210 mm wide and exactly one band tall, so the bands tile the
// raster without gaps or overlap.
func Assemble(r Raster, meta Meta) (res Result, err error) {
	if len(r.JPEG) == 0 || r.Width <= 0 || r.Height <= 0 {
		return Result{}, ErrEmptyRaster
	}

	defer func() {
		if rec := recover(); rec != nil {
			res, err = Result{}, fmt.Errorf("%w: %v", ErrPDFAssembly, rec)
		}
	}()

	pagePx := BandHeight(r.Width, r.Height, r.Pages)
	bands := PlanBands(r.Height, pagePx)
	mmPerPx := A4WidthMM / float64(r.Width)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: A4WidthMM, Ht: float64(pagePx) * mmPerPx},
	})
	pdf.SetCompression(true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator(meta.Creator, true)
	if !meta.Created.IsZero() {
		pdf.SetCreationDate(meta.Created)
		pdf.SetModificationDate(meta.Created)
	}

	opts := fpdf.ImageOptions{ImageType: "JPG", AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(rasterImageName, opts, bytes.NewReader(r.JPEG))

	imageHeightMM := float64(r.Height) * mmPerPx
	for _, band := range bands {
		pdf.AddPage()
		pdf.ImageOptions(rasterImageName, 0, -float64(band.Top)*mmPerPx, A4WidthMM, imageHeightMM, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}
	return Result{PDF: buf.Bytes(), Pages: pdf.PageCount(), Bands: bands}, nil
}
