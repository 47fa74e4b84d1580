package embedcheck

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bitcoin-os/shell/internal/infrastructure/logging"
	"github.com/bitcoin-os/shell/internal/providers/httpclient"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTTL = 10 * time.Minute

// Verdict is the outcome of one probe
type Verdict struct {
	Embeddable bool      `json:"embeddable"`
	Reason     string    `json:"reason,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Checker probes app URLs for framing restrictions. Verdicts are cached
// per URL.
type Checker struct {
	client *httpclient.Client
	self   *url.URL
	ttl    time.Duration
	cache  sync.Map // string -> Verdict
	logger *zap.Logger
}

// New creates a checker. selfOrigin is the shell's public origin, used for
// 'self' and SAMEORIGIN rules; it may be empty.
func New(client *httpclient.Client, selfOrigin string, logger *zap.Logger) *Checker {
	c := &Checker{
		client: client,
		ttl:    defaultTTL,
		logger: logging.OrNop(logger).Named("embedcheck"),
	}
	if selfOrigin != "" {
		if u, err := url.Parse(selfOrigin); err == nil && u.Host != "" {
			c.self = u
		}
	}
	return c
}

// Embeddable reports whether target may be hosted in an iframe on the shell
func (c *Checker) Embeddable(ctx context.Context, target string) (bool, error) {
	v, err := c.Check(ctx, target)
	if err != nil {
		return true, err
	}
	return v.Embeddable, nil
}

// Check probes target, returning a cached verdict when fresh
func (c *Checker) Check(ctx context.Context, target string) (Verdict, error) {
	if cached, ok := c.cache.Load(target); ok {
		v := cached.(Verdict)
		if time.Since(v.CheckedAt) < c.ttl {
			return v, nil
		}
	}

	resp, err := c.client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetHeader("Accept", "text/html").Get(target)
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("probe %s: %w", target, err)
	}

	v := c.evaluate(target, resp.Header().Get("X-Frame-Options"), resp.Header().Values("Content-Security-Policy"), resp.Body())
	v.CheckedAt = time.Now()
	c.cache.Store(target, v)

	c.logger.Debug("embed probe",
		zap.String("url", target),
		zap.Bool("embeddable", v.Embeddable),
		zap.String("reason", v.Reason))
	return v, nil
}

func (c *Checker) evaluate(target, xfo string, csp []string, body []byte) Verdict {
	targetURL, _ := url.Parse(target)

	policies := append([]string(nil), csp...)
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body))); err == nil {
		doc.Find("meta[http-equiv]").Each(func(_ int, s *goquery.Selection) {
			if strings.EqualFold(s.AttrOr("http-equiv", ""), "Content-Security-Policy") {
				policies = append(policies, s.AttrOr("content", ""))
			}
		})
	}

	for _, policy := range policies {
		sources, ok := FrameAncestors(policy)
		if !ok {
			continue
		}
		if c.ancestorsAllow(sources, targetURL) {
			return Verdict{Embeddable: true, Reason: "frame-ancestors allows shell"}
		}
		return Verdict{Embeddable: false, Reason: "frame-ancestors excludes shell"}
	}

	switch strings.ToUpper(strings.TrimSpace(xfo)) {
	case "":
		return Verdict{Embeddable: true}
	case "DENY":
		return Verdict{Embeddable: false, Reason: "X-Frame-Options: DENY"}
	case "SAMEORIGIN":
		if sameOrigin(c.self, targetURL) {
			return Verdict{Embeddable: true, Reason: "X-Frame-Options: SAMEORIGIN"}
		}
		return Verdict{Embeddable: false, Reason: "X-Frame-Options: SAMEORIGIN"}
	default:
		return Verdict{Embeddable: false, Reason: "X-Frame-Options: " + xfo}
	}
}

func (c *Checker) ancestorsAllow(sources []string, target *url.URL) bool {
	for _, src := range sources {
		switch strings.ToLower(src) {
		case "'none'":
			return false
		case "*":
			return true
		case "'self'":
			if sameOrigin(c.self, target) {
				return true
			}
		default:
			if c.self != nil && sourceMatches(src, c.self) {
				return true
			}
		}
	}
	return false
}

// FrameAncestors extracts the frame-ancestors source list from a CSP value
func FrameAncestors(policy string) ([]string, bool) {
	for _, directive := range strings.Split(policy, ";") {
		fields := strings.Fields(directive)
		if len(fields) == 0 || !strings.EqualFold(fields[0], "frame-ancestors") {
			continue
		}
		return fields[1:], true
	}
	return nil, false
}

func sameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

// sourceMatches handles host sources like https://example.com, *.example.com
// and scheme-only sources like https:.
func sourceMatches(src string, origin *url.URL) bool {
	src = strings.ToLower(src)
	if strings.HasSuffix(src, ":") && !strings.Contains(src, "/") {
		return strings.TrimSuffix(src, ":") == origin.Scheme
	}

	scheme := ""
	if i := strings.Index(src, "://"); i >= 0 {
		scheme, src = src[:i], src[i+3:]
	}
	if scheme != "" && scheme != origin.Scheme {
		return false
	}
	host := strings.TrimSuffix(src, "/")
	originHost := strings.ToLower(origin.Host)

	if strings.HasPrefix(host, "*.") {
		return strings.HasSuffix(originHost, host[1:])
	}
	return host == originHost || host == strings.ToLower(origin.Hostname())
}
