// Package hostguard decides which remote hosts the service may reach on a
// caller's behalf, and builds HTTP clients that enforce that decision on
// every redirect hop and on every dialed address.
package hostguard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ErrHostNotAllowed is returned when a URL, redirect target or dialed
// address falls outside the policy.
var ErrHostNotAllowed = errors.New("host not allowed")

const (
	maxRedirects = 5
	dialTimeout  = 10 * time.Second
	keepAlive    = 30 * time.Second
)

// Policy holds the allow-list. Entries match exactly; an entry starting
// with "." or "*." also matches its subdomains. With no entries, any host
// is allowed except loopback, private and link-local addresses.
type Policy struct {
	exact    map[string]bool
	suffixes []string
	lookup   func(ctx context.Context, host string) ([]netip.Addr, error)
}

// New builds a Policy from allow-list entries. Blank entries are ignored.
func New(allowed []string) *Policy {
	p := &Policy{
		exact:  make(map[string]bool),
		lookup: defaultLookup,
	}
	for _, h := range allowed {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			p.suffixes = append(p.suffixes, h[1:])
		case strings.HasPrefix(h, "."):
			p.suffixes = append(p.suffixes, h)
		default:
			p.exact[h] = true
		}
	}
	return p
}

func defaultLookup(ctx context.Context, host string) ([]netip.Addr, error) {
	return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
}

func (p *Policy) open() bool {
	return len(p.exact) == 0 && len(p.suffixes) == 0
}

// Allows reports whether host passes the allow-list. Names are not
// resolved.
func (p *Policy) Allows(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(strings.Trim(host, "[]"), "."))
	if host == "" {
		return false
	}
	if p.open() {
		return !isInternalHost(host)
	}
	if p.exact[host] {
		return true
	}
	for _, s := range p.suffixes {
		if strings.HasSuffix(host, s) || host == s[1:] {
			return true
		}
	}
	return false
}

// allowsAddr reports whether a resolved address may be dialed. Internal
// addresses pass only when listed literally.
func (p *Policy) allowsAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !isInternalAddr(addr) {
		return true
	}
	return p.exact[addr.String()]
}

// CheckURL validates an absolute http(s) URL against the allow-list
// without resolving its host.
func (p *Policy) CheckURL(raw string) error {
	u, err := parseHTTPURL(raw)
	if err != nil {
		return err
	}
	if !p.Allows(u.Hostname()) {
		return fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}
	return nil
}

// Check is CheckURL plus resolution: a name that resolves to an internal
// address is refused unless that address is listed.
func (p *Policy) Check(ctx context.Context, raw string) error {
	u, err := parseHTTPURL(raw)
	if err != nil {
		return err
	}
	host := u.Hostname()
	if !p.Allows(host) {
		return fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		if !p.allowsAddr(addr) {
			return fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
		}
		return nil
	}

	addrs, err := p.lookup(ctx, host)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", host, err)
	}
	for _, a := range addrs {
		if !p.allowsAddr(a) {
			return fmt.Errorf("%w: %s resolves to %s", ErrHostNotAllowed, host, a.Unmap())
		}
	}
	return nil
}

// Control is a net.Dialer Control hook. It runs after DNS resolution, so it
// sees the address actually being dialed.
func (p *Policy) Control(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: unparsable address %q", ErrHostNotAllowed, address)
	}
	if !p.allowsAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrHostNotAllowed, ap.Addr().Unmap())
	}
	return nil
}

// CheckRedirect is an http.Client CheckRedirect hook that re-runs the
// allow-list on every hop.
func (p *Policy) CheckRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: redirect to %s scheme", ErrHostNotAllowed, req.URL.Scheme)
	}
	if !p.Allows(req.URL.Hostname()) {
		return fmt.Errorf("%w: redirect to %s", ErrHostNotAllowed, req.URL.Hostname())
	}
	return nil
}

// NewClient returns a client bound to p. Environment proxies are ignored
// so the dialed address is always the target's.
func NewClient(p *Policy, timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: keepAlive,
		Control:   p.Control,
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:       timeout,
		Transport:     transport,
		CheckRedirect: p.CheckRedirect,
	}
}

func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHostNotAllowed, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) url", ErrHostNotAllowed, raw)
	}
	return u, nil
}

// isInternalHost reports literal addresses and names that point inside the
// deployment. Names are not resolved.
func isInternalHost(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".internal") {
		return true
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return isInternalAddr(addr.Unmap())
}

func isInternalAddr(addr netip.Addr) bool {
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsUnspecified()
}
