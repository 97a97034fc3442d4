package doctor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"ext2view/internal/remote"
)

type Backend interface {
	Directory(ctx context.Context) (remote.Listing, error)
	Execute(ctx context.Context, name string, args []string) (remote.Result, error)
}

type Report struct {
	URL     string
	Path    string
	Entries int
}

// Check verifies the backend URL is usable and both the listing and command
// endpoints answer.
func Check(ctx context.Context, baseURL string, backend Backend) (Report, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Report{}, fmt.Errorf("invalid backend url %q", baseURL)
	}
	listing, err := backend.Directory(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("backend at %s is not reachable: %w", baseURL, err)
	}
	res, err := backend.Execute(ctx, "pwd", nil)
	if err != nil {
		return Report{}, fmt.Errorf("command endpoint failed: %w", err)
	}
	if !res.Success {
		return Report{}, fmt.Errorf("pwd reported failure: %s", strings.TrimSpace(res.Output))
	}
	return Report{URL: baseURL, Path: listing.Path, Entries: len(listing.Items)}, nil
}
