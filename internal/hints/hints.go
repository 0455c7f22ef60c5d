// Package hints turns common job-rendering failures into a short next step.
// Every hint renders as "\n  hint: <text>" so it can trail an error line.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-jd2pdf/internal/fileutil"
)

// HostNotAllowed is the plain advice for a refused proxy host. The HTTP API
// sends it verbatim; the CLI prefixes it through ForHostNotAllowed.
const HostNotAllowed = "add the host to server.allowedHosts; loopback and private addresses are only reachable when listed by IP"

// IsInContainer reports whether the process runs under Docker.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect suggests the Rod variables that usually fix a browser
// that will not start.
func ForBrowserConnect() string {
	var hints []string

	// Detect CI environment
	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	// Chrome refuses its sandbox inside most containers and CI runners
	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 when rendering in Docker or CI")
	}

	// Point at a system browser instead of the downloaded one
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to an installed Chrome")
	}

	return formatHints(hints)
}

// ForLogoFallback explains why a company logo became the placeholder. Without
// a proxy, hosts that send no CORS headers taint the export canvas and the
// browser strategy cannot read the pixels back.
func ForLogoFallback(proxyConfigured bool) string {
	if !proxyConfigured {
		return format("the logo host likely blocks cross-origin reads; set logo.proxyURL or JD2PDF_PROXY_URL to fetch it server-side")
	}
	return format("the proxy could not fetch the logo either; check its allowedHosts and logs, or inline the logo as a data URL")
}

// ForClippedPages points at the content that usually overruns a fixed A4
// page.
func ForClippedPages(pages []int) string {
	if len(pages) == 0 {
		return ""
	}
	return format("shorten the description or skill list, or load a tighter stylesheet with --style; rerun with --html to inspect the markup")
}

// ForHostNotAllowed wraps HostNotAllowed for CLI output.
func ForHostNotAllowed() string {
	return format(HostNotAllowed)
}

// ForTimeout suggests a longer deadline.
func ForTimeout() string {
	return format("slow logo hosts or long descriptions need more time, use --timeout or JD2PDF_TIMEOUT")
}

// ForConfigNotFound suggests --config, or the user config path when it is
// among the searched ones.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Offer the first path under the user config directory
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-jd2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory is returned when a PDF cannot be written.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

// ForStyleNotFound lists the embedded styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForJobFile describes the accepted input shapes.
func ForJobFile() string {
	return format(`expected {"job": {...}, "company": {...}} or a bare job object with "title" and "description"`)
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
