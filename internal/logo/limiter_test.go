package logo

import (
	"context"
	"testing"
)

func TestHostLimiter_PerHost(t *testing.T) {
	t.Parallel()

	hl := NewHostLimiter(0.001, 1)

	if !hl.AllowURL("https://a.test/1.png") {
		t.Fatal("first request to a.test should be allowed")
	}
	if hl.AllowURL("https://a.test/2.png") {
		t.Error("second request to a.test should be limited")
	}
	if !hl.AllowURL("https://b.test/1.png") {
		t.Error("b.test has its own budget")
	}
	if !hl.AllowURL("not a url") {
		t.Error("unparseable URLs share the fallback bucket")
	}
}

func TestHostLimiter_WaitHonoursContext(t *testing.T) {
	t.Parallel()

	hl := NewHostLimiter(0.001, 1)
	_ = hl.WaitURL(context.Background(), "https://a.test/x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hl.WaitURL(ctx, "https://a.test/y"); err == nil {
		t.Error("WaitURL() with cancelled context should fail")
	}
}
