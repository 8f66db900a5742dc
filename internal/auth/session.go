// Package auth stores the Monaca Cloud session between invocations.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quocvuong92/monaca-cli/internal/constants"
)

// ErrNoSession is returned when no session has been saved.
var ErrNoSession = errors.New("not logged in, please run 'monaca login' first")

// Session is what a successful login leaves on disk.
type Session struct {
	Token    string    `json:"token"`
	Email    string    `json:"email"`
	Endpoint string    `json:"endpoint,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// GetSessionPath returns the path where the session is stored
func GetSessionPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", constants.AppName, "session"), nil
}

// SaveSession writes the session with owner-only permissions.
func SaveSession(s Session) error {
	path, err := GetSessionPath()
	if err != nil {
		return err
	}
	if s.Token == "" {
		return errors.New("refusing to save a session without a token")
	}
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	return nil
}

// LoadSession reads the saved session.
func LoadSession() (*Session, error) {
	path, err := GetSessionPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session file is corrupt, please run 'monaca login' again: %w", err)
	}
	if s.Token == "" {
		return nil, ErrNoSession
	}

	return &s, nil
}

// DeleteSession removes the stored session. A missing file is not an error.
func DeleteSession() error {
	path, err := GetSessionPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// IsLoggedIn checks if a session exists
func IsLoggedIn() bool {
	_, err := LoadSession()
	return err == nil
}
