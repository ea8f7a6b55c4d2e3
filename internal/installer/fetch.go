package installer

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"toolenv-installer/internal/config"
	"toolenv-installer/internal/logger"
)

// Fetcher downloads a remote artifact to a local destination, streaming the
// body and reporting progress as it goes.
type Fetcher interface {
	Download(name, rawURL, dest string, proxy *config.Proxy) error
}

// HTTPFetcher is the production Fetcher. OnProgress, when set, receives the
// number of bytes written so far and the total (-1 if unknown).
type HTTPFetcher struct {
	OnProgress func(written, total int64)
}

// Download streams rawURL into dest, honoring the manifest proxy block.
func (f *HTTPFetcher) Download(name, rawURL, dest string, proxy *config.Proxy) error {
	client, err := clientFor(rawURL, proxy)
	if err != nil {
		return err
	}

	logger.Info("[INFO] Downloading %s from %s\n", name, rawURL)
	resp, err := client.Get(rawURL)
	if err != nil {
		return fmt.Errorf("failed to GET %s: %w", rawURL, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s failed: HTTP status %d", rawURL, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", dest, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close destination file: %v\n", cerr)
		}
	}()

	var w io.Writer = out
	if f.OnProgress != nil {
		w = &progressWriter{w: out, total: resp.ContentLength, report: f.OnProgress}
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	logger.Debug("[DEBUG] Downloaded %s to %s\n", name, dest)
	return nil
}

// clientFor builds an HTTP client routed through the proxy block, if one
// applies to the target host.
func clientFor(rawURL string, proxy *config.Proxy) (*http.Client, error) {
	client := &http.Client{Timeout: 30 * time.Minute}
	if proxy == nil {
		return client, nil
	}

	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url %s: %w", rawURL, err)
	}
	if hostExcluded(target.Hostname(), proxy.NoProxy) {
		return client, nil
	}

	proxyURL := proxy.HTTP
	if target.Scheme == "https" && proxy.HTTPS != "" {
		proxyURL = proxy.HTTPS
	}
	if proxyURL == "" {
		return client, nil
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proxy url %s: %w", proxyURL, err)
	}
	client.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
	return client, nil
}

// hostExcluded implements the usual comma-separated no_proxy matching:
// exact host or domain suffix.
func hostExcluded(host, noProxy string) bool {
	for _, entry := range strings.Split(noProxy, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if host == entry || strings.HasSuffix(host, "."+strings.TrimPrefix(entry, ".")) {
			return true
		}
	}
	return false
}

// progressWriter forwards writes and reports the running byte count.
type progressWriter struct {
	w       io.Writer
	written int64
	total   int64
	report  func(written, total int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	p.report(p.written, p.total)
	return n, err
}
