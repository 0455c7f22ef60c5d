// Package jd2pdf turns a job record and an optional company profile into a
// paginated A4 Job-Description PDF.
//
// # Quick Start
//
//	gen, err := jd2pdf.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	doc, err := gen.Generate(ctx, jd2pdf.Input{
//	    Job: jd2pdf.Job{
//	        Title:       "Backend Engineer",
//	        Description: "Build **APIs** for the hiring platform.",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(doc.Filename, doc.PDF, 0644)
//
// # Pipeline
//
// Each call to Generate runs, in order:
//
//  1. Logo resolution: the company logo URL is turned into an inline data
//     URL by a proxy endpoint, a direct fetch, then a browser image load.
//     Failure of every strategy renders a placeholder box.
//  2. Markup: a three page template is filled with display values. Missing
//     fields read "Not specified" or "Not Available"; optional sections
//     are omitted.
//  3. Render: the markup is opened in an off-screen headless Chrome tab
//     (go-rod), fonts and layout are given time to settle, and the full
//     content is captured as one high resolution image.
//  4. Pagination: the image is JPEG encoded and sliced into A4 pages of a
//     PDF, each page showing the next band of the capture.
//
// The Document carries the PDF bytes, the intermediate markup and the
// suggested filename.
//
// # Configuration
//
//	gen, err := jd2pdf.NewGenerator(
//	    jd2pdf.WithTimeout(2*time.Minute),
//	    jd2pdf.WithProxy("https://api.example.com", token),
//	    jd2pdf.WithLogger(logger),
//	    jd2pdf.WithClock(func() time.Time { return fixed }),
//	)
//
// A fixed clock makes output byte-identical for identical input.
//
// # Parallel Processing
//
// A Generator is safe for concurrent use: it owns one browser and opens a
// tab per call. For CPU-bound batches, GeneratorPool runs several browsers:
//
//	pool := jd2pdf.NewGeneratorPool(jd2pdf.ResolvePoolSize(0))
//	defer pool.Close()
//
//	gen, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(gen)
//
// # Environment
//
// ROD_BROWSER_BIN selects the Chrome binary. ROD_NO_SANDBOX=1 (or CI=true)
// disables the sandbox for containers.
package jd2pdf
