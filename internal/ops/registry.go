// Package ops classifies CLI commands into the groups shown in root help.
package ops

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"
)

// CommandGroup is the help section a command is listed under.
type CommandGroup string

const (
	GroupScan     CommandGroup = "scan"     // scanners and single-tool runs
	GroupWorkflow CommandGroup = "workflow" // workflows, plugins, AI analysis
	GroupSupport  CommandGroup = "support"  // version, audit
)

// Groups lists the groups in help order.
var Groups = []CommandGroup{GroupScan, GroupWorkflow, GroupSupport}

// Title is the help heading for g.
func (g CommandGroup) Title() string {
	switch g {
	case GroupScan:
		return "Scan Commands"
	case GroupWorkflow:
		return "Workflow Commands"
	default:
		return "Support Commands"
	}
}

// CommandRegistration is a classified command.
type CommandRegistration struct {
	Name        string
	Group       CommandGroup
	Command     *cobra.Command
	Description string
}

// Registry holds command classifications.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*CommandRegistration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*CommandRegistration)}
}

var globalRegistry = NewRegistry()

// GetRegistry returns the process-wide command registry.
func GetRegistry() *Registry { return globalRegistry }

// RegisterCommand classifies cmd in the global registry.
func RegisterCommand(group CommandGroup, cmd *cobra.Command) error {
	return globalRegistry.Register(cmd.Name(), group, cmd, cmd.Short)
}

// Register adds a command. Names must be unique.
func (r *Registry) Register(name string, group CommandGroup, cmd *cobra.Command, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	r.commands[name] = &CommandRegistration{Name: name, Group: group, Command: cmd, Description: description}
	return nil
}

// GetCommand returns the registration for name.
func (r *Registry) GetCommand(name string) (*CommandRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// GetCommandsByGroup returns the commands in group sorted by name.
func (r *Registry) GetCommandsByGroup(group CommandGroup) []*CommandRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*CommandRegistration
	for _, c := range r.commands {
		if c.Group == group {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
