package tools

import (
	"fmt"
	"slices"
)

// PackageManager describes an OS package manager that can install scanner dependencies.
type PackageManager interface {
	Name() string
	// Binary is the executable looked up on PATH to decide availability.
	Binary() string
	// InstallArgs returns the argv (without privilege escalation) that installs packages.
	InstallArgs(packages []string) []string
	// RequiresPrivilege reports whether the install must run through sudo.
	RequiresPrivilege() bool
	InstallationURL() string
	SupportedPlatforms() []string
}

// systemManager is a table-driven PackageManager.
type systemManager struct {
	name       string
	binary     string
	verb       []string
	privileged bool
	url        string
	platforms  []string
}

func (m *systemManager) Name() string            { return m.name }
func (m *systemManager) Binary() string          { return m.binary }
func (m *systemManager) RequiresPrivilege() bool { return m.privileged }
func (m *systemManager) InstallationURL() string { return m.url }
func (m *systemManager) SupportedPlatforms() []string {
	return append([]string(nil), m.platforms...)
}

func (m *systemManager) InstallArgs(packages []string) []string {
	args := make([]string, 0, 1+len(m.verb)+len(packages))
	args = append(args, m.binary)
	args = append(args, m.verb...)
	return append(args, packages...)
}

var (
	aptManager = &systemManager{
		name: "apt-get", binary: "apt-get", verb: []string{"install", "-y"}, privileged: true,
		url: "https://wiki.debian.org/apt-get", platforms: []string{"linux"},
	}
	yumManager = &systemManager{
		name: "yum", binary: "yum", verb: []string{"install", "-y"}, privileged: true,
		url: "https://access.redhat.com/solutions/9934", platforms: []string{"linux"},
	}
	pacmanManager = &systemManager{
		name: "pacman", binary: "pacman", verb: []string{"-S", "--noconfirm"}, privileged: true,
		url: "https://wiki.archlinux.org/title/Pacman", platforms: []string{"linux"},
	}
	dnfManager = &systemManager{
		name: "dnf", binary: "dnf", verb: []string{"install", "-y"}, privileged: true,
		url: "https://dnf.readthedocs.io", platforms: []string{"linux"},
	}
	zypperManager = &systemManager{
		name: "zypper", binary: "zypper", verb: []string{"--non-interactive", "install"}, privileged: true,
		url: "https://en.opensuse.org/Portal:Zypper", platforms: []string{"linux"},
	}
	apkManager = &systemManager{
		name: "apk", binary: "apk", verb: []string{"add"}, privileged: true,
		url: "https://wiki.alpinelinux.org/wiki/Alpine_Package_Keeper", platforms: []string{"linux"},
	}
	brewManager = &systemManager{
		name: "brew", binary: "brew", verb: []string{"install"},
		url: "https://brew.sh", platforms: []string{"darwin"},
	}
	wingetManager = &systemManager{
		name: "winget", binary: "winget", verb: []string{"install", "--silent", "--accept-package-agreements"},
		url: "https://learn.microsoft.com/windows/package-manager/winget/", platforms: []string{"windows"},
	}
	scoopManager = &systemManager{
		name: "scoop", binary: "scoop", verb: []string{"install"},
		url: "https://scoop.sh", platforms: []string{"windows"},
	}
)

// allManagers is the preference order; the first available manager for the platform wins.
var allManagers = []PackageManager{
	aptManager, yumManager, pacmanManager, dnfManager, zypperManager, apkManager,
	brewManager,
	wingetManager, scoopManager,
}

// ManagersFor returns the package managers supported on goos in preference order.
// An empty result means the platform is unsupported.
func ManagersFor(goos string) []PackageManager {
	var out []PackageManager
	for _, m := range allManagers {
		if slices.Contains(m.SupportedPlatforms(), goos) {
			out = append(out, m)
		}
	}
	return out
}

// GetManager returns a PackageManager by name.
func GetManager(name string) (PackageManager, error) {
	for _, m := range allManagers {
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown package manager: %s", name)
}
