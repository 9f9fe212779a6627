package chart

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/KaramelBytes/kpiscope/internal/utils"
)

// SystemViewer renders a figure to a temp file and hands it to the desktop opener.
type SystemViewer struct {
	Plotter *Plotter
	// Dir receives the temp images; empty means os.TempDir().
	Dir string
	// Open overrides the platform opener (used by tests).
	Open func(path string) error
}

func (v *SystemViewer) Show(fig Figure, name string) error {
	if v.Plotter == nil {
		return fmt.Errorf("show %s: viewer has no plotter", name)
	}
	f, err := os.CreateTemp(v.Dir, "kpiscope-"+utils.SafeName(name)+"-*."+v.Plotter.Style().Format)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := v.Plotter.Encode(fig, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close preview: %w", err)
	}
	open := v.Open
	if open == nil {
		open = openWithSystem
	}
	return open(f.Name())
}

func openWithSystem(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open viewer: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
