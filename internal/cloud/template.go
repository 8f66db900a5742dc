package cloud

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type templatesResponse struct {
	Templates []Template `json:"templates"`
}

// ListTemplates returns the templates create can start from.
func (c *HTTPClient) ListTemplates(ctx context.Context) ([]Template, error) {
	return WithRetry(ctx, func() ([]Template, error) {
		var out templatesResponse
		if err := c.doJSON(ctx, http.MethodGet, "/api/templates", nil, &out); err != nil {
			return nil, err
		}
		return out.Templates, nil
	})
}

// DownloadTemplate fetches a template archive and extracts it into dir.
func (c *HTTPClient) DownloadTemplate(ctx context.Context, templateID, dir string) error {
	data, err := WithRetry(ctx, func() ([]byte, error) {
		req, err := c.newRequest(ctx, http.MethodGet, "/api/template/"+url.PathEscape(templateID)+"/archive", nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.sendWith(c.transfer, req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return fmt.Errorf("failed to download template %q: %w", templateID, err)
	}
	return extractZip(data, dir)
}

// extractZip unpacks archive into dir, refusing entries that would land
// outside it.
func extractZip(archive []byte, dir string) error {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("invalid template archive: %w", err)
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	for _, f := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("invalid template archive: entry %q escapes the project directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}
