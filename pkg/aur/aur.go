package aur

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	aurctlhttp "github.com/aurtool/aurctl/pkg/http"
)

const DefaultBaseURL = "https://aur.archlinux.org"

// Record is one package's metadata as returned by the archive's RPC
// interface.
type Record struct {
	Name        string   `json:"Name"`
	PackageBase string   `json:"PackageBase"`
	Version     string   `json:"Version"`
	Description string   `json:"Description"`
	URL         string   `json:"URL"`
	NumVotes    int      `json:"NumVotes"`
	Popularity  float64  `json:"Popularity"`
	OutOfDate   int64    `json:"OutOfDate"`
	Maintainer  string   `json:"Maintainer"`
	Provides    []string `json:"Provides"`
	Depends     []string `json:"Depends"`
	MakeDepends []string `json:"MakeDepends"`
}

type rpcResponse struct {
	Version     int      `json:"version"`
	Type        string   `json:"type"`
	ResultCount int      `json:"resultcount"`
	Results     []Record `json:"results"`
	Error       string   `json:"error"`
}

// Client talks to the remote archive: batched metadata queries, free-text
// search, and raw build-script fetches. It holds no session state.
type Client struct {
	HTTP    *aurctlhttp.RLHTTPClient
	BaseURL string
}

// NewClient returns a Client against the default archive, rate limited to
// avoid DOS'ing the server.
func NewClient() *Client {
	return &Client{
		HTTP:    aurctlhttp.NewClient(rate.NewLimiter(rate.Every(500*time.Millisecond), 1)),
		BaseURL: DefaultBaseURL,
	}
}

// Info fetches metadata for all the given names in a single round trip.
// Names unknown to the archive are simply absent from the result.
func (c *Client) Info(ctx context.Context, names []string) ([]Record, error) {
	v := url.Values{}
	v.Set("v", "5")
	v.Set("type", "info")
	for _, n := range names {
		v.Add("arg[]", n)
	}
	return c.rpc(ctx, v)
}

// Search runs a free-text query against package names and descriptions.
func (c *Client) Search(ctx context.Context, term string) ([]Record, error) {
	v := url.Values{}
	v.Set("v", "5")
	v.Set("type", "search")
	v.Set("arg", term)
	return c.rpc(ctx, v)
}

func (c *Client) rpc(ctx context.Context, v url.Values) ([]Record, error) {
	u := fmt.Sprintf("%s/rpc?%s", c.BaseURL, v.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed querying %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non ok http response for URI %s code: %v", u, resp.StatusCode)
	}

	var parsed rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode RPC response: %w", err)
	}
	if parsed.Type == "error" {
		return nil, fmt.Errorf("RPC error: %s", parsed.Error)
	}

	return parsed.Results, nil
}

// PKGBUILD fetches the raw build script for a package base. Split-package
// siblings share one base and therefore one fetch.
func (c *Client) PKGBUILD(ctx context.Context, base string) (string, error) {
	u := fmt.Sprintf("%s/cgit/aur.git/plain/PKGBUILD?h=%s", c.BaseURL, url.QueryEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed fetching PKGBUILD for %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non ok http response fetching PKGBUILD for %s code: %v", base, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed reading PKGBUILD for %s: %w", base, err)
	}
	return string(b), nil
}

// CloneURL is the git URL a package base's sources are fetched from.
func (c *Client) CloneURL(base string) string {
	return fmt.Sprintf("%s/%s.git", c.BaseURL, url.PathEscape(base))
}

// SortMode selects the ordering of search results presented to the user.
type SortMode int

const (
	// Alphabetical sorts ascending by package name.
	Alphabetical SortMode = iota
	// ByVotes sorts by vote count descending.
	ByVotes
)

// Sort orders records in place. Both modes are stable with respect to the
// original response order, so ties resolve deterministically.
func Sort(records []Record, mode SortMode) {
	switch mode {
	case ByVotes:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].NumVotes > records[j].NumVotes
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Name < records[j].Name
		})
	}
}
