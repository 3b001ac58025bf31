package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// BrowserCommand returns the command that opens url on goos.
//
// A non-empty $BROWSER takes precedence on every platform.
func BrowserCommand(goos, url string) (string, []string, error) {
	if b := os.Getenv("BROWSER"); b != "" {
		return b, []string{url}, nil
	}
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("%w: no browser launcher for %s", ErrNotImplemented, goos)
	}
}

// OpenBrowser opens the default system browser to the specified URL without waiting for it to exit.
func OpenBrowser(url string) error {
	name, args, err := BrowserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
