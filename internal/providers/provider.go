// Package providers holds one fetcher per (asset class, external price source).
//
// Every fetcher returns a symbol -> toman price map. A provider that answered but
// had no usable rows yields an empty map and a nil error; transport, status and
// decode problems are returned as errors. Fetchers never touch shared state.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
)

var (
	// ErrUnexpectedStatus is wrapped when a provider answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrEmptyResponse is returned when a provider body carries nothing to parse.
	ErrEmptyResponse = errors.New("empty response")
)

// Fetcher retrieves prices from one provider for one asset class.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) (models.PriceMap, error)
}

// RateAware fetchers need the resolved USD rate to convert USD-denominated rows.
type RateAware interface {
	Fetcher
	WithUSDRate(rate float64) Fetcher
}

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// NewHTTPClient returns the client shared by all providers.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// get performs a GET and returns the open body of a 2xx response. The caller
// closes it.
func get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9,en;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}
	return resp.Body, nil
}

// Unit is the currency a provider quotes local prices in.
type Unit int

const (
	UnitToman Unit = iota
	UnitRial
)

func (u Unit) toToman(v float64) float64 {
	if u == UnitRial {
		return RialToToman(v)
	}
	return v
}
