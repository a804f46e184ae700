package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"coursepack/internal/config"
	"coursepack/internal/workflow"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var quiet bool
	var noHistory bool
	var mflags manifestFlags

	cmd := &cobra.Command{
		Use:   "build <course.json|course.yaml>",
		Short: "Build a SCORM package from a course document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, source, err := loadCourse(args[0])
			if err != nil {
				return err
			}
			opts := mflags.options(cmd, cfg)
			if err := opts.Validate(); err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = defaultOutputPath(cfg.Paths.OutputDir, source, ".zip")
			} else if target, err = config.ExpandPath(target); err != nil {
				return err
			}

			engine, err := ctx.engine(cmd, !noHistory)
			if err != nil {
				return err
			}
			req := workflow.BuildRequest{
				Document:   doc,
				Options:    opts,
				SourcePath: source,
				OutputPath: target,
			}
			var printer *progressPrinter
			if !quiet {
				printer = newProgressPrinter(cmd.ErrOrStderr())
				req.OnProgress = printer.update
			}
			res, err := engine.Build(cmd.Context(), req)
			if printer != nil {
				printer.done()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pkg := res.Package.Manifest
			fmt.Fprintf(out, "Wrote %s (%s)\n", res.OutputPath, humanBytes(int64(len(res.Package.Buffer))))
			fmt.Fprintf(out, "Identifier: %s\n", pkg.Identifier)
			fmt.Fprintf(out, "Pages: %d  Resources: %d  Elapsed: %s\n", len(pkg.PageOrder), len(pkg.Resources), res.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Archive path (defaults to <output_dir>/<course>.zip)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the build in history")
	mflags.register(cmd)
	return cmd
}
