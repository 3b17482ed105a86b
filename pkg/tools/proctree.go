package tools

import (
	"errors"

	gps "github.com/shirou/gopsutil/v3/process"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// KillTree kills the process identified by pid together with all of its
// descendants. Children are collected before the parent is killed so that
// re-parenting to init does not hide them.
func KillTree(pid int) error {
	root, err := gps.NewProcess(int32(pid)) // #nosec G115 -- pids fit in int32
	if err != nil {
		if errors.Is(err, gps.ErrorProcessNotRunning) {
			return nil
		}
		return err
	}

	victims := descendants(root)
	victims = append(victims, root)

	var errs []error
	for _, p := range victims {
		if err := p.Kill(); err != nil && !errors.Is(err, gps.ErrorProcessNotRunning) {
			if running, rerr := p.IsRunning(); rerr == nil && !running {
				continue
			}
			errs = append(errs, err)
		}
	}
	logger.Debug("killed process tree", logger.Int("pid", pid), logger.Int("processes", len(victims)))
	return errors.Join(errs...)
}

func descendants(p *gps.Process) []*gps.Process {
	children, err := p.Children()
	if err != nil {
		return nil
	}
	var out []*gps.Process
	for _, c := range children {
		out = append(out, descendants(c)...)
		out = append(out, c)
	}
	return out
}
