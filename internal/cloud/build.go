package cloud

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/logging"
)

type buildRequest struct {
	Platform       string `json:"platform"`
	BuildType      string `json:"build_type,omitempty"`
	AndroidWebview string `json:"android_webview,omitempty"`
	AndroidArch    string `json:"android_arch,omitempty"`
}

type buildStarted struct {
	BuildID string `json:"build_id"`
}

// BuildProject queues a build and follows its event stream until the build
// finishes. progress receives each status message.
func (c *HTTPClient) BuildProject(ctx context.Context, projectID string, opts BuildOptions, progress func(string)) (*BuildResult, error) {
	if !ValidPlatform(opts.Platform) {
		return nil, ErrInvalidPlatform
	}

	req := buildRequest{
		Platform:       opts.Platform,
		BuildType:      opts.BuildType,
		AndroidWebview: opts.AndroidWebview,
		AndroidArch:    opts.AndroidArch,
	}
	started, err := WithRetry(ctx, func() (*buildStarted, error) {
		var out buildStarted
		if err := c.doJSON(ctx, http.MethodPost, projectPath(projectID, "build"), req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("build queued", logging.Fields{"project_id": projectID, "build_id": started.BuildID, "platform": opts.Platform})

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultBuildTimeout)
	defer cancel()

	resp, err := WithRetry(ctx, func() (*http.Response, error) {
		r, err := c.newRequest(ctx, http.MethodGet, projectPath(projectID, "build/"+url.PathEscape(started.BuildID)+"/events"), nil)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Accept", "text/event-stream")
		return c.sendWith(c.stream, r)
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	ev, err := NewBuildStream(resp.Body).Process(ctx, progress)
	if err != nil {
		return nil, err
	}

	return &BuildResult{
		BuildID:   started.BuildID,
		Platform:  opts.Platform,
		BinaryURL: ev.BinaryURL,
	}, nil
}

// DownloadBuild saves the built binary at binaryURL to dest.
func (c *HTTPClient) DownloadBuild(ctx context.Context, binaryURL, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	_, err := WithRetry(ctx, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, binaryURL, nil)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to create request: %w", err)
		}
		if c.session != nil && strings.HasPrefix(binaryURL, c.endpoint) {
			req.Header.Set(SessionHeader, c.session.Token)
		}
		resp, err := c.sendWith(c.transfer, req)
		if err != nil {
			return struct{}{}, err
		}
		defer func() { _ = resp.Body.Close() }()
		return struct{}{}, writeFile(dest, resp.Body)
	})
	if err != nil {
		return fmt.Errorf("failed to download build: %w", err)
	}
	return nil
}
