package hints

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Browser
// ---------------------------------------------------------------------------

// Not parallel: t.Setenv and the IsInContainer override are process-wide.
func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		ci          string
		noSandbox   string
		browserBin  string
		wantSandbox bool
		wantBin     bool
	}{
		{"ci without settings", false, "true", "", "", true, true},
		{"docker without settings", true, "", "", "", true, true},
		{"sandbox already disabled", true, "", "1", "", false, true},
		{"browser already set", false, "", "", "/usr/bin/chrome", false, false},
		{"everything configured", true, "true", "1", "/usr/bin/chrome", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			defer func() { IsInContainer = orig }()
			IsInContainer = func() bool { return tt.container }

			t.Setenv("CI", tt.ci)
			t.Setenv("GITHUB_ACTIONS", "")
			t.Setenv("GITLAB_CI", "")
			t.Setenv("JENKINS_URL", "")
			t.Setenv("ROD_NO_SANDBOX", tt.noSandbox)
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()

			if got := strings.Contains(hint, "ROD_NO_SANDBOX"); got != tt.wantSandbox {
				t.Errorf("sandbox hint = %v, want %v (hint %q)", got, tt.wantSandbox, hint)
			}
			if got := strings.Contains(hint, "ROD_BROWSER_BIN"); got != tt.wantBin {
				t.Errorf("browser hint = %v, want %v (hint %q)", got, tt.wantBin, hint)
			}
			if !tt.wantSandbox && !tt.wantBin && hint != "" {
				t.Errorf("ForBrowserConnect() = %q, want empty", hint)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Logo and layout
// ---------------------------------------------------------------------------

func TestForLogoFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		proxy   bool
		want    string
		notWant string
	}{
		{"no proxy suggests one", false, "JD2PDF_PROXY_URL", "allowedHosts"},
		{"proxy configured points at its policy", true, "allowedHosts", "JD2PDF_PROXY_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForLogoFallback(tt.proxy)
			if !strings.Contains(hint, tt.want) {
				t.Errorf("ForLogoFallback(%v) = %q, want %q", tt.proxy, hint, tt.want)
			}
			if strings.Contains(hint, tt.notWant) {
				t.Errorf("ForLogoFallback(%v) = %q, should not mention %q", tt.proxy, hint, tt.notWant)
			}
		})
	}
}

func TestForClippedPages(t *testing.T) {
	t.Parallel()

	if hint := ForClippedPages(nil); hint != "" {
		t.Errorf("ForClippedPages(nil) = %q, want empty", hint)
	}
	if hint := ForClippedPages([]int{2}); !strings.Contains(hint, "--html") {
		t.Errorf("ForClippedPages([2]) = %q, want --html suggestion", hint)
	}
}

func TestForHostNotAllowed(t *testing.T) {
	t.Parallel()

	hint := ForHostNotAllowed()
	if !strings.HasSuffix(hint, HostNotAllowed) {
		t.Errorf("ForHostNotAllowed() = %q, want it to end with HostNotAllowed", hint)
	}
	if !strings.Contains(HostNotAllowed, "server.allowedHosts") {
		t.Errorf("HostNotAllowed = %q, want the config key", HostNotAllowed)
	}
}

// ---------------------------------------------------------------------------
// CLI inputs and outputs
// ---------------------------------------------------------------------------

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{"no paths", nil, "--config"},
		{"user path offered", []string{"./jobs.yaml", "/home/u/.config/go-jd2pdf/jobs.yaml"}, "create /home/u/.config/go-jd2pdf/jobs.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if hint := ForConfigNotFound(tt.paths); !strings.Contains(hint, tt.contains) {
				t.Errorf("ForConfigNotFound() = %q, want %q", hint, tt.contains)
			}
		})
	}
}

func TestForStyleNotFound(t *testing.T) {
	t.Parallel()

	if hint := ForStyleNotFound(nil); hint != "" {
		t.Errorf("ForStyleNotFound(nil) = %q, want empty", hint)
	}
	if hint := ForStyleNotFound([]string{"default", "compact"}); !strings.Contains(hint, "default, compact") {
		t.Errorf("ForStyleNotFound() = %q, want the style list", hint)
	}
}

func TestHints_Format(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"timeout":      ForTimeout(),
		"output":       ForOutputDirectory(),
		"job file":     ForJobFile(),
		"config":       ForConfigNotFound(nil),
		"logo":         ForLogoFallback(false),
		"clipped":      ForClippedPages([]int{1}),
		"host refused": ForHostNotAllowed(),
	}

	for name, h := range tests {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("%s hint = %q, want \"\\n  hint: \" prefix", name, h)
		}
	}
}
