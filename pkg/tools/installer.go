package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// CommandRunner runs argv to completion and returns captured stderr.
type CommandRunner func(ctx context.Context, argv []string) (stderr []byte, err error)

// Installer installs missing executables through the platform package manager.
type Installer struct {
	GOOS     string
	LookPath func(string) (string, error)
	Run      CommandRunner
	IsRoot   func() bool
}

// NewInstaller returns an Installer for the running host. Install output is
// streamed to progress so the user can follow sudo prompts.
func NewInstaller(progress io.Writer) *Installer {
	return &Installer{
		GOOS:     runtime.GOOS,
		LookPath: exec.LookPath,
		Run:      streamingRunner(progress),
		IsRoot:   func() bool { return os.Geteuid() == 0 },
	}
}

// SelectManager returns the first available package manager for the platform.
func (i *Installer) SelectManager() (PackageManager, error) {
	managers := ManagersFor(i.GOOS)
	if len(managers) == 0 {
		return nil, &UnsupportedPlatformError{GOOS: i.GOOS}
	}
	for _, m := range managers {
		if _, err := i.LookPath(m.Binary()); err == nil {
			return m, nil
		}
	}
	names := make([]string, 0, len(managers))
	for _, m := range managers {
		names = append(names, m.Name())
	}
	return nil, &DependencyInstallError{
		Err: fmt.Errorf("no supported package manager found (tried %s)", strings.Join(names, ", ")),
	}
}

// Command builds the full argv that installs packages with m, adding sudo when needed.
func (i *Installer) Command(m PackageManager, packages []string) ([]string, error) {
	argv := m.InstallArgs(packages)
	if !m.RequiresPrivilege() || (i.IsRoot != nil && i.IsRoot()) {
		return argv, nil
	}
	if _, err := i.LookPath("sudo"); err != nil {
		return nil, &DependencyInstallError{
			Manager:  m.Name(),
			Packages: packages,
			Err:      errors.New("sudo is not installed or not on PATH"),
		}
	}
	return append([]string{"sudo"}, argv...), nil
}

// Install installs packages. It returns *UnsupportedPlatformError when the OS
// has no supported manager and *DependencyInstallError for every other failure.
func (i *Installer) Install(ctx context.Context, packages []string) error {
	if len(packages) == 0 {
		return nil
	}

	m, err := i.SelectManager()
	if err != nil {
		var ie *DependencyInstallError
		if errors.As(err, &ie) {
			ie.Packages = packages
		}
		return err
	}

	argv, err := i.Command(m, packages)
	if err != nil {
		return err
	}

	logger.Info("installing dependencies",
		logger.String("manager", m.Name()),
		logger.Strings("packages", packages))

	stderr, err := i.Run(ctx, argv)
	if err != nil {
		return &DependencyInstallError{
			Manager:  m.Name(),
			Packages: packages,
			Command:  argv,
			Stderr:   string(stderr),
			Err:      err,
		}
	}

	logger.Info("dependencies installed", logger.String("manager", m.Name()))
	return nil
}

func streamingRunner(progress io.Writer) CommandRunner {
	return func(ctx context.Context, argv []string) ([]byte, error) {
		// #nosec G204 - argv is built from the fixed package manager table
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		var stderr bytes.Buffer
		cmd.Stdin = os.Stdin
		if progress != nil {
			cmd.Stdout = progress
			cmd.Stderr = io.MultiWriter(progress, &stderr)
		} else {
			cmd.Stderr = &stderr
		}
		err := cmd.Run()
		return stderr.Bytes(), err
	}
}
