package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var (
	getRuntime = func() string { return runtime.GOOS }
	getenv     = os.Getenv
	startCmd   = func(c *exec.Cmd) error { return c.Start() }
)

// BrowserOpener launches a browser at the given URL. The login flow takes one so tests can follow the
// authorization redirect themselves.
type BrowserOpener func(url string) error

// OpenBrowser starts the user's browser at url without waiting for it.
//
// $BROWSER wins when set. Under WSL the Windows handler is used since xdg-open is rarely configured there.
func OpenBrowser(url string) error {
	name, args, err := browserCommand(url)
	if err != nil {
		return err
	}
	if err := startCmd(exec.Command(name, args...)); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func browserCommand(url string) (string, []string, error) {
	if b := strings.TrimSpace(getenv("BROWSER")); b != "" {
		fields := strings.Fields(b)
		return fields[0], append(fields[1:], url), nil
	}

	switch rt := getRuntime(); rt {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	case "linux":
		if getenv("WSL_DISTRO_NAME") != "" {
			return "rundll32.exe", []string{"url.dll,FileProtocolHandler", url}, nil
		}
		return "xdg-open", []string{url}, nil
	case "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}
