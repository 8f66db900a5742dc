// Package cloud is the boundary to Monaca Cloud. Task modules depend on the
// Client interface; HTTPClient is the production implementation with retry
// for transient failures and a streamed build status.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/quocvuong92/monaca-cli/internal/constants"
)

var (
	// ErrNotLoggedIn is returned when no valid session is available.
	ErrNotLoggedIn = errors.New("not signed in to Monaca Cloud")

	// ErrInvalidPlatform is returned for a build platform the cloud does not support.
	ErrInvalidPlatform = fmt.Errorf("invalid platform. Must be one of: %s", strings.Join(constants.BuildPlatforms, ", "))
)

// APIError is a non-2xx answer from the cloud.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// UploadProgress is reported once per file during upload and download.
type UploadProgress struct {
	Index int
	Total int
	Path  string
}

// Percent formats the progress the way the upload log shows it: the
// percentage text cut to five characters.
func (p UploadProgress) Percent() string {
	if p.Total <= 0 {
		return "100%"
	}
	s := strconv.FormatFloat(100*float64(p.Index+1)/float64(p.Total), 'f', -1, 64)
	if len(s) > 5 {
		s = s[:5]
	}
	return s + "%"
}

// SyncOptions control upload and download.
type SyncOptions struct {
	Delete bool
	Force  bool
	DryRun bool
}

// BuildOptions are the remote build parameters.
type BuildOptions struct {
	Platform       string
	BuildType      string
	AndroidWebview string
	AndroidArch    string
}

// BuildResult is a finished remote build.
type BuildResult struct {
	BuildID   string `json:"build_id"`
	Platform  string `json:"platform"`
	BinaryURL string `json:"binary_url"`
}

// Project is a cloud project summary.
type Project struct {
	ID          string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Template is a project template offered by create.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Client is what task modules need from Monaca Cloud.
type Client interface {
	// Relogin validates the stored session. It returns ErrNotLoggedIn when
	// the user must sign in again.
	Relogin(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error

	// UploadProject uploads dir and returns the cloud project id.
	UploadProject(ctx context.Context, dir string, opts SyncOptions, progress func(UploadProgress)) (string, error)
	DownloadProject(ctx context.Context, projectID, dir string, opts SyncOptions, progress func(UploadProgress)) error
	BuildProject(ctx context.Context, projectID string, opts BuildOptions, progress func(string)) (*BuildResult, error)
	BuildPageURL(projectID string) string
	DownloadBuild(ctx context.Context, binaryURL, dest string) error

	ListProjects(ctx context.Context) ([]Project, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	DownloadTemplate(ctx context.Context, templateID, dir string) error
}

// ValidPlatform reports whether the cloud builds for platform.
func ValidPlatform(platform string) bool {
	for _, p := range constants.BuildPlatforms {
		if p == platform {
			return true
		}
	}
	return false
}
