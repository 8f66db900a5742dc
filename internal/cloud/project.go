package cloud

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/logging"
)

// skippedDirs are never synced with the cloud.
var skippedDirs = map[string]bool{
	constants.ProjectInfoDir: true,
	".git":                   true,
	"node_modules":           true,
	"platforms":              true,
	"plugins":                true,
}

// ProjectInfo is the local link between a directory and a cloud project.
type ProjectInfo struct {
	ProjectID string `json:"project_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Template  string `json:"template,omitempty"`
}

// ProjectInfoPath returns where dir's project info is kept.
func ProjectInfoPath(dir string) string {
	return filepath.Join(dir, constants.ProjectInfoDir, constants.ProjectInfoFile)
}

// ReadProjectInfo reads dir's project info. A missing file yields an empty info.
func ReadProjectInfo(dir string) (*ProjectInfo, error) {
	data, err := os.ReadFile(ProjectInfoPath(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return &ProjectInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project info: %w", err)
	}
	var info ProjectInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectInfoPath(dir), err)
	}
	return &info, nil
}

// WriteProjectInfo stores dir's project info.
func WriteProjectInfo(dir string, info *ProjectInfo) error {
	path := ProjectInfoPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project info: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// fileSet maps slash-separated project paths to content hashes.
type fileSet map[string]string

func (s fileSet) sortedPaths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func localFiles(dir string) (fileSet, error) {
	files := fileSet{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		sum, err := hashFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return files, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type filesResponse struct {
	Files map[string]string `json:"files"`
}

func (c *HTTPClient) remoteFiles(ctx context.Context, projectID string) (fileSet, error) {
	return WithRetry(ctx, func() (fileSet, error) {
		var out filesResponse
		if err := c.doJSON(ctx, http.MethodGet, projectPath(projectID, "files"), nil, &out); err != nil {
			return nil, err
		}
		if out.Files == nil {
			return fileSet{}, nil
		}
		return out.Files, nil
	})
}

func projectPath(projectID, rest string) string {
	return "/api/project/" + url.PathEscape(projectID) + "/" + rest
}

func filePath(projectID, path string) string {
	return projectPath(projectID, "file") + "?path=" + url.QueryEscape(path)
}

type createProjectResponse struct {
	ProjectID string `json:"project_id"`
}

// UploadProject sends changed files to the cloud project linked to dir,
// creating and linking a project first when dir has none.
func (c *HTTPClient) UploadProject(ctx context.Context, dir string, opts SyncOptions, progress func(UploadProgress)) (string, error) {
	info, err := ReadProjectInfo(dir)
	if err != nil {
		return "", err
	}

	local, err := localFiles(dir)
	if err != nil {
		return "", err
	}

	remote := fileSet{}
	projectID := info.ProjectID
	switch {
	case projectID != "":
		if remote, err = c.remoteFiles(ctx, projectID); err != nil {
			return "", err
		}
	case !opts.DryRun:
		name := info.Name
		if name == "" {
			name = filepath.Base(absOrSelf(dir))
		}
		var created createProjectResponse
		if err := c.doJSON(ctx, http.MethodPost, "/api/projects", map[string]string{"name": name}, &created); err != nil {
			return "", fmt.Errorf("failed to create cloud project: %w", err)
		}
		projectID = created.ProjectID
		info.ProjectID = projectID
		if err := WriteProjectInfo(dir, info); err != nil {
			return "", err
		}
	}

	var changed []string
	for _, p := range local.sortedPaths() {
		if opts.Force || remote[p] != local[p] {
			changed = append(changed, p)
		}
	}

	for i, p := range changed {
		if progress != nil {
			progress(UploadProgress{Index: i, Total: len(changed), Path: p})
		}
		if opts.DryRun {
			continue
		}
		if err := c.putFile(ctx, projectID, dir, p); err != nil {
			return "", fmt.Errorf("failed to upload %s: %w", p, err)
		}
	}

	if opts.Delete {
		for _, p := range remote.sortedPaths() {
			if _, ok := local[p]; ok {
				continue
			}
			logging.Debug("deleting remote file", logging.Fields{"path": p, "dry_run": opts.DryRun})
			if opts.DryRun {
				continue
			}
			if err := c.doJSON(ctx, http.MethodDelete, filePath(projectID, p), nil, nil); err != nil {
				return "", fmt.Errorf("failed to delete remote %s: %w", p, err)
			}
		}
	}

	return projectID, nil
}

func (c *HTTPClient) putFile(ctx context.Context, projectID, dir, rel string) error {
	_, err := WithRetry(ctx, func() (struct{}, error) {
		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return struct{}{}, err
		}
		defer f.Close()

		req, err := c.newRequest(ctx, http.MethodPut, filePath(projectID, rel), f)
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := c.sendWith(c.transfer, req)
		if err != nil {
			return struct{}{}, err
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return struct{}{}, resp.Body.Close()
	})
	return err
}

// DownloadProject writes changed cloud files into dir and links dir to the
// project.
func (c *HTTPClient) DownloadProject(ctx context.Context, projectID, dir string, opts SyncOptions, progress func(UploadProgress)) error {
	remote, err := c.remoteFiles(ctx, projectID)
	if err != nil {
		return err
	}

	local := fileSet{}
	if _, err := os.Stat(dir); err == nil {
		if local, err = localFiles(dir); err != nil {
			return err
		}
	}

	var changed []string
	for _, p := range remote.sortedPaths() {
		if opts.Force || local[p] != remote[p] {
			changed = append(changed, p)
		}
	}

	for i, p := range changed {
		if progress != nil {
			progress(UploadProgress{Index: i, Total: len(changed), Path: p})
		}
		if opts.DryRun {
			continue
		}
		if err := c.getFile(ctx, projectID, dir, p); err != nil {
			return fmt.Errorf("failed to download %s: %w", p, err)
		}
	}

	if opts.Delete {
		for _, p := range local.sortedPaths() {
			if _, ok := remote[p]; ok {
				continue
			}
			logging.Debug("deleting local file", logging.Fields{"path": p, "dry_run": opts.DryRun})
			if opts.DryRun {
				continue
			}
			if err := os.Remove(filepath.Join(dir, filepath.FromSlash(p))); err != nil {
				return fmt.Errorf("failed to delete %s: %w", p, err)
			}
		}
	}

	if opts.DryRun {
		return nil
	}
	info, err := ReadProjectInfo(dir)
	if err != nil {
		return err
	}
	info.ProjectID = projectID
	return WriteProjectInfo(dir, info)
}

func (c *HTTPClient) getFile(ctx context.Context, projectID, dir, rel string) error {
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	_, err := WithRetry(ctx, func() (struct{}, error) {
		req, err := c.newRequest(ctx, http.MethodGet, filePath(projectID, rel), nil)
		if err != nil {
			return struct{}{}, err
		}
		resp, err := c.sendWith(c.transfer, req)
		if err != nil {
			return struct{}{}, err
		}
		defer func() { _ = resp.Body.Close() }()
		return struct{}{}, writeFile(target, resp.Body)
	})
	return err
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type projectsResponse struct {
	Projects []Project `json:"projects"`
}

// ListProjects returns the user's cloud projects.
func (c *HTTPClient) ListProjects(ctx context.Context) ([]Project, error) {
	return WithRetry(ctx, func() ([]Project, error) {
		var out projectsResponse
		if err := c.doJSON(ctx, http.MethodGet, "/api/projects", nil, &out); err != nil {
			return nil, err
		}
		return out.Projects, nil
	})
}

func absOrSelf(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
