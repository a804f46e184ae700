package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"coursepack/internal/config"
	"coursepack/internal/course"
	"coursepack/internal/manifest"
)

func loadCourse(arg string) (*course.Document, string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, "", errors.New("course document path is required")
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return nil, "", err
	}
	doc, err := course.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return doc, path, nil
}

// defaultOutputPath names the archive after the course file inside dir.
func defaultOutputPath(dir, source, ext string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" {
		base = "course"
	}
	return filepath.Join(dir, base+ext)
}

type manifestFlags struct {
	navigation string
	completion string
	passMark   int
	timeLimit  int
	version    string
	noRetake   bool
}

func (f *manifestFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.navigation, "navigation", "", "Navigation mode (linear or free)")
	flags.StringVar(&f.completion, "completion", "", "Completion criteria (view-all or pass-assessment)")
	flags.IntVar(&f.passMark, "pass-mark", 0, "Assessment pass mark in percent")
	flags.IntVar(&f.timeLimit, "time-limit", 0, "Time limit in minutes (0 for none)")
	flags.StringVar(&f.version, "package-version", "", "Package version recorded in the manifest")
	flags.BoolVar(&f.noRetake, "no-retake", false, "Disallow assessment retakes")
}

// options overlays explicitly set flags onto the configured defaults.
func (f *manifestFlags) options(cmd *cobra.Command, cfg *config.Config) manifest.Options {
	changed := cmd.Flags().Changed
	opts := manifest.OptionsFromConfig(cfg)
	if changed("navigation") {
		opts.NavigationMode = manifest.NavigationMode(f.navigation)
	}
	if changed("completion") {
		opts.CompletionCriteria = manifest.CompletionCriteria(f.completion)
	}
	if changed("pass-mark") {
		opts.PassMark = f.passMark
	}
	if changed("time-limit") {
		opts.TimeLimit = time.Duration(f.timeLimit) * time.Minute
	}
	if changed("package-version") {
		opts.Version = f.version
	}
	if changed("no-retake") {
		opts.AllowRetake = !f.noRetake
	}
	return opts
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
