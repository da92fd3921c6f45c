// Package version reports whether a newer s1dash release is published.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// ReleasesURL is the latest-release endpoint for s1dash
	ReleasesURL = "https://api.github.com/repos/studiowebux/s1dash/releases/latest"

	checkTimeout = 5 * time.Second
)

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Update describes the latest published release
type Update struct {
	Available bool
	Latest    string
	URL       string
}

// Checker queries a releases endpoint
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker creates a checker for the public release feed
func NewChecker() *Checker {
	return &Checker{
		URL:    ReleasesURL,
		Client: &http.Client{Timeout: checkTimeout},
	}
}

// Check compares current with the latest release
func (c *Checker) Check(ctx context.Context, current string) (Update, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Update{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "s1dash/"+current)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Update{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Update{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Update{}, fmt.Errorf("failed to decode response: %w", err)
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	return Update{
		Available: latest != "" && isNewerVersion(latest, strings.TrimPrefix(current, "v")),
		Latest:    latest,
		URL:       rel.HTMLURL,
	}, nil
}

// isNewerVersion compares two dotted versions and returns true if latest > current.
// Pre-release and build suffixes are ignored.
func isNewerVersion(latest, current string) bool {
	latestParts := parseVersion(latest)
	currentParts := parseVersion(current)

	n := max(len(latestParts), len(currentParts))
	for i := 0; i < n; i++ {
		l, c := part(latestParts, i), part(currentParts, i)
		if l != c {
			return l > c
		}
	}
	return false
}

func part(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// parseVersion parses a version string into integer parts
func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	var result []int
	for _, p := range strings.Split(version, ".") {
		num, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		result = append(result, num)
	}
	return result
}
