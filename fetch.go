package advisor

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/advisor/date"
)

// dailyCache is an http.RoundTripper storing successful responses on disk for the day.
type dailyCache struct {
	base  http.RoundTripper
	dir   string
	today func() date.Date
}

func (c *dailyCache) RoundTrip(req *http.Request) (*http.Response, error) {
	// the key is unique per day, so the cache expires every day.
	key := fmt.Sprintf("%s %s %s", c.today(), req.Method, req.URL)
	file := filepath.Join(c.dir, fmt.Sprintf("adv-%x", sha1.Sum([]byte(key))))

	if content, err := os.ReadFile(file); err == nil {
		if resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req); err == nil {
			return resp, nil
		}
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil || resp.StatusCode >= 300 {
		return resp, err
	}
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return resp, nil
	}
	// a failed write only misses the cache next time.
	_ = os.WriteFile(file, content, 0o644)
	return resp, nil
}

// DailyClient returns an HTTP client caching successful responses in dir until the end
// of the day. An empty dir is the temporary directory.
func DailyClient(dir string) *http.Client {
	if dir == "" {
		dir = os.TempDir()
	}
	return &http.Client{Transport: &dailyCache{base: http.DefaultTransport, dir: dir, today: date.Today}}
}

// Fetch gets a provider JSON payload from addr and imports it with paths.
func Fetch(ctx context.Context, client *http.Client, addr string, paths FieldPaths) (*Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	return Import(resp.Body, paths)
}
