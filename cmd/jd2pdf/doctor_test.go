package main

import (
	"bytes"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPrintDoctorResult - Human-readable output
// ---------------------------------------------------------------------------

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   *doctorResult
		contains []string
		excludes []string
	}{
		{
			name: "ready",
			result: &doctorResult{
				Status: "ready",
				Chrome: chromeInfo{Found: true, Path: "/usr/bin/chromium", Version: "Chromium 120", Sandbox: true},
				Env:    envInfo{OS: "linux", Arch: "amd64"},
				System: systemInfo{TempWritable: true, Workers: 2},
				Config: configInfo{Source: "defaults", Timeout: "1m30s", LogoMode: "proxy > fetch > element"},
			},
			contains: []string{
				"[OK] Found at /usr/bin/chromium",
				"[OK] Version: Chromium 120",
				"[OK] Sandbox: enabled",
				"[OK] Platform: linux/amd64",
				"[OK] Workers: 2",
				"[OK] Logo strategies: proxy > fetch > element",
				"Status: Ready to render",
			},
			excludes: []string{"[ERROR]", "[WARN]"},
		},
		{
			name: "errors and warnings",
			result: &doctorResult{
				Status:   "errors",
				Env:      envInfo{OS: "linux", Arch: "arm64", Container: true, ContainerHint: "/.dockerenv"},
				Config:   configInfo{Source: "defaults"},
				Warnings: []string{"No logo proxy configured"},
				Errors:   []string{"Chrome not found"},
			},
			contains: []string{
				"[ERROR] Not found",
				"[OK] Container: detected (/.dockerenv)",
				"[ERROR] Temp directory: not writable",
				"[WARN] No logo proxy configured",
				"[ERROR] Chrome not found",
			},
			excludes: []string{"Ready to render"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, tt.result)
			out := buf.String()

			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsContainer / TestCheckConfig - Environment driven checks
// ---------------------------------------------------------------------------

func TestIsContainer_ExplicitVariable(t *testing.T) {
	t.Setenv("JD2PDF_CONTAINER", "1")

	ok, hint := isContainer()
	if !ok || hint != "JD2PDF_CONTAINER=1" {
		t.Errorf("isContainer() = %v, %q", ok, hint)
	}
}

func TestCheckConfig(t *testing.T) {
	t.Run("defaults warn about missing proxy", func(t *testing.T) {
		t.Setenv("JD2PDF_CONFIG", "")
		t.Setenv("JD2PDF_PROXY_URL", "")

		r := &doctorResult{}
		checkConfig(r, "")
		if r.Config.Source != "defaults" || r.Config.LogoMode != "fetch > element" {
			t.Errorf("config = %+v", r.Config)
		}
		if len(r.Warnings) != 1 || len(r.Errors) != 0 {
			t.Errorf("warnings = %v, errors = %v", r.Warnings, r.Errors)
		}
	})

	t.Run("proxy from env", func(t *testing.T) {
		t.Setenv("JD2PDF_CONFIG", "")
		t.Setenv("JD2PDF_PROXY_URL", "https://api.test")

		r := &doctorResult{}
		checkConfig(r, "")
		if r.Config.LogoMode != "proxy > fetch > element" {
			t.Errorf("logo mode = %q", r.Config.LogoMode)
		}
		if len(r.Warnings) != 0 {
			t.Errorf("warnings = %v, want none", r.Warnings)
		}
	})

	t.Run("config file", func(t *testing.T) {
		t.Setenv("JD2PDF_CONFIG", "")
		path := writeFile(t, t.TempDir(), "cfg.yaml", "render:\n  timeout: 2m\n")

		r := &doctorResult{}
		checkConfig(r, path)
		if r.Config.Source != path || r.Config.Timeout != "2m0s" {
			t.Errorf("config = %+v", r.Config)
		}
	})

	t.Run("broken config is an error", func(t *testing.T) {
		t.Setenv("JD2PDF_CONFIG", "")
		path := writeFile(t, t.TempDir(), "cfg.yaml", "render: [\n")

		r := &doctorResult{}
		checkConfig(r, path)
		if len(r.Errors) != 1 || !strings.HasPrefix(r.Errors[0], "Config: ") {
			t.Errorf("errors = %v", r.Errors)
		}
	})
}
