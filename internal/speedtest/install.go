package speedtest

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"github.com/speedwagon-io/speedbot/internal/lib/logger/sl"
)

const (
	debScriptURL = "https://packagecloud.io/install/repositories/ookla/speedtest-cli/script.deb.sh"
	rpmScriptURL = "https://packagecloud.io/install/repositories/ookla/speedtest-cli/script.rpm.sh"
)

var (
	debianMarkers = []string{"/etc/debian_version"}
	redhatMarkers = []string{"/etc/redhat-release", "/etc/centos-release"}
)

// Installer makes sure the speedtest binary is present, installing it from
// Ookla's package repository when it is not.
type Installer struct {
	log      *slog.Logger
	binary   string
	runner   Runner
	goos     string
	lookPath func(string) (string, error)
	exists   func(string) bool
}

func NewInstaller(log *slog.Logger, binary string, runner Runner) *Installer {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Installer{
		log:      log,
		binary:   binary,
		runner:   runner,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		exists:   fileExists,
	}
}

// Ensure reports whether the binary is available after the call. Failures
// are logged and never abort the caller.
func (i *Installer) Ensure(ctx context.Context) bool {
	i.log.Info("detected OS", slog.String("os", i.goos))

	if i.goos != "linux" {
		i.log.Warn("automatic speedtest installation supports only Linux")
		return false
	}

	if path, err := i.lookPath(i.binary); err == nil {
		i.log.Info("speedtest is already installed", slog.String("path", path))
		return true
	}

	i.log.Info("speedtest not found, attempting installation")

	var scriptURL, manager string
	switch {
	case i.anyExists(debianMarkers):
		scriptURL, manager = debScriptURL, "apt-get"
	case i.anyExists(redhatMarkers):
		scriptURL, manager = rpmScriptURL, "yum"
	default:
		i.log.Error("unsupported Linux distribution")
		return false
	}

	steps := [][]string{
		{"sh", "-c", "curl -s " + scriptURL + " | sudo bash"},
		{"sudo", manager, "install", "-y", "speedtest"},
	}

	for _, step := range steps {
		if _, stderr, err := i.runner.Run(ctx, step[0], step[1:]...); err != nil {
			i.log.Error("installation failed",
				slog.Any("command", step),
				slog.String("stderr", string(stderr)),
				sl.Err(err),
			)
			return false
		}
	}

	i.log.Info("speedtest successfully installed")
	return true
}

func (i *Installer) anyExists(paths []string) bool {
	for _, p := range paths {
		if i.exists(p) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
