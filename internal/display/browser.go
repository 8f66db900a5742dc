package display

import (
	"os/exec"
	"runtime"

	"github.com/quocvuong92/monaca-cli/internal/logging"
)

// openCommand is swapped in tests.
var openCommand = func(url string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return exec.Command("xdg-open", url)
	}
}

// TryOpenBrowser opens url in the default browser. Failure is logged and
// otherwise ignored; callers always print the URL too.
func TryOpenBrowser(url string) bool {
	cmd := openCommand(url)
	if err := cmd.Start(); err != nil {
		logging.Debug("could not open browser", logging.Fields{"url": url, "error": err.Error()})
		return false
	}
	go func() { _ = cmd.Wait() }()
	return true
}
