// Package pipeline builds the job-description markup.
//
// The stages are:
//   - NewPageData maps job and company records into display values, applying
//     every fallback rule ("Not specified", generic perks, placeholder copy)
//   - MarkdownDescription renders the description (goldmark) and sanitizes
//     it (bluemonday)
//   - Builder executes the page template set and injects the stylesheet
//   - Inspect reads back the markup for diagnostics
//
// Rasterization and PDF assembly live in the root jd2pdf package and in
// internal/paginate. Nothing here needs a browser.
package pipeline
