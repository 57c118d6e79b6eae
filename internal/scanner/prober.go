package scanner

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maxvaer/rexprobe/internal/content"
	"github.com/maxvaer/rexprobe/internal/log"
)

// Prober issues one probe. Implementations never return an error: every
// failure is folded into the result's Outcome.
type Prober interface {
	Probe(ctx context.Context, index int, rawURL string) ProbeResult
}

// Fetcher downloads a body for the probe with the given index.
type Fetcher interface {
	Fetch(ctx context.Context, index int, rawURL string) (content.Download, error)
}

// ProberConfig configures an HTTPProber.
type ProberConfig struct {
	Client    *http.Client // defaults to NewClient(Timeout, ...)
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string

	// Download also fetches the body of 2xx responses. Redirect targets are
	// fetched whenever Fetcher is set.
	Download bool
	Fetcher  Fetcher

	Logger *logrus.Logger
}

// ClientOptions tunes the transport built by NewClient.
type ClientOptions struct {
	Timeout  time.Duration
	Threads  int
	Proxy    string
	Insecure bool
}

// NewClient builds the HTTP client shared by the prober and the content
// fetcher. Redirects are never followed here.
func NewClient(opts ClientOptions) (*http.Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: opts.Timeout,
		}).DialContext,
		TLSHandshakeTimeout: opts.Timeout,
		MaxIdleConnsPerHost: opts.Threads,
		MaxIdleConns:        opts.Threads,
	}
	if opts.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// HTTPProber probes with a HEAD request and classifies the response.
type HTTPProber struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	headers   map[string]string
	download  bool
	fetcher   Fetcher
	logger    *logrus.Logger
}

// NewHTTPProber creates an HTTPProber.
func NewHTTPProber(cfg ProberConfig) (*HTTPProber, error) {
	client := cfg.Client
	if client == nil {
		var err error
		client, err = NewClient(ClientOptions{Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &HTTPProber{
		client:    client,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		headers:   cfg.Headers,
		download:  cfg.Download,
		fetcher:   cfg.Fetcher,
		logger:    logger,
	}, nil
}

// Probe sends HEAD rawURL and classifies the answer. A redirect target is
// fetched through the Fetcher; a 2xx body only when downloads are enabled.
func (p *HTTPProber) Probe(ctx context.Context, index int, rawURL string) (res ProbeResult) {
	res = ProbeResult{Index: index, URL: rawURL}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeClientError
			res.Error = fmt.Sprintf("unexpected failure: %v", r)
		}
		res.Duration = time.Since(start)
	}()

	resp, err := p.head(ctx, rawURL)
	if err != nil {
		res.Outcome = ClassifyError(err)
		res.Error = errorMessage(err)
		p.logger.WithFields(logrus.Fields{
			"index":   index,
			"url":     rawURL,
			"outcome": res.Outcome.String(),
		}).Debug(res.Error)
		return res
	}

	res.StatusCode = resp.StatusCode
	res.Headers = resp.Header.Clone()
	p.logger.WithFields(logrus.Fields{
		"index":           index,
		"url":             rawURL,
		"status":          resp.StatusCode,
		"request_headers": p.headers,
		"headers":         res.Headers,
	}).Debug("probe response")

	loc := resp.Header.Get("Location")
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		res.Outcome = OutcomeSuccess
		if p.download {
			p.fetch(ctx, &res, rawURL)
		}
	case resp.StatusCode >= 300 && resp.StatusCode < 400 && loc != "":
		res.Outcome = OutcomeRedirect
		res.RedirectURL = loc
		if u, err := resp.Location(); err == nil {
			res.RedirectURL = u.String()
		}
		p.fetch(ctx, &res, res.RedirectURL)
	default:
		res.Outcome = OutcomeStatus
	}
	return res
}

func (p *HTTPProber) head(ctx context.Context, rawURL string) (*http.Response, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp, nil
}

// fetch stores the body of target. Failures are logged; the probe outcome
// stands.
func (p *HTTPProber) fetch(ctx context.Context, res *ProbeResult, target string) {
	if p.fetcher == nil {
		return
	}
	d, err := p.fetcher.Fetch(ctx, res.Index, target)
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"index": res.Index,
			"url":   target,
		}).Warnf("content fetch failed: %v", err)
		return
	}
	res.ContentPath = d.Path
	if d.Truncated {
		p.logger.WithFields(logrus.Fields{
			"index": res.Index,
			"url":   target,
			"bytes": d.Bytes,
		}).Warn("body truncated at max body size")
	}
}

// ClassifyError maps a request error to OutcomeTransportError for network
// failures and OutcomeClientError for everything else.
func ClassifyError(err error) Outcome {
	// *url.Error satisfies net.Error itself, so look underneath it.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}

	var (
		netErr    net.Error
		dnsErr    *net.DNSError
		opErr     *net.OpError
		verifyErr *tls.CertificateVerificationError
		recordErr tls.RecordHeaderError
		authErr   x509.UnknownAuthorityError
		hostErr   x509.HostnameError
		certErr   x509.CertificateInvalidError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return OutcomeTransportError
	case errors.As(err, &dnsErr), errors.As(err, &opErr), errors.As(err, &netErr):
		return OutcomeTransportError
	case errors.As(err, &verifyErr), errors.As(err, &recordErr),
		errors.As(err, &authErr), errors.As(err, &hostErr), errors.As(err, &certErr):
		return OutcomeTransportError
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED):
		return OutcomeTransportError
	}
	return OutcomeClientError
}

func errorMessage(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}
