package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"coursepack/internal/config"
	"coursepack/internal/runtimedoc"
	"coursepack/internal/stage"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var stageFlag string
	var outputPath string
	var simulate bool
	var mflags manifestFlags

	cmd := &cobra.Command{
		Use:   "preview <course.json|course.yaml>",
		Short: "Render a standalone preview at an authoring stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			name := cfg.Preview.Stage
			if cmd.Flags().Changed("stage") {
				name = stageFlag
			}
			st, err := stage.Parse(name)
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

			engine, err := ctx.engine(cmd, false)
			if err != nil {
				return err
			}
			session := engine.OpenPreview(opts)
			defer func() { _ = session.Close() }()
			res, err := session.Render(cmd.Context(), doc, st)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			target := strings.TrimSpace(outputPath)
			if target == "-" {
				if _, err := out.Write(res.HTML); err != nil {
					return err
				}
			} else {
				if target == "" {
					target = defaultOutputPath(cfg.Paths.OutputDir, source, "."+st.String()+".html")
				} else if target, err = config.ExpandPath(target); err != nil {
					return err
				}
				if err := os.WriteFile(target, res.HTML, 0o644); err != nil {
					return fmt.Errorf("write preview: %w", err)
				}
				fmt.Fprintf(out, "Wrote %s preview to %s\n", st, target)
			}
			if len(res.Placeholders) > 0 {
				fmt.Fprintf(out, "Placeholders: %s\n", strings.Join(res.Placeholders, ", "))
			}
			if len(res.Missing) > 0 {
				fmt.Fprintf(out, "Missing required media: %s\n", strings.Join(res.Missing, ", "))
			}

			if !simulate {
				return nil
			}
			rt, err := session.Simulate()
			if err != nil {
				return err
			}
			return printSimulation(out, rt)
		},
	}

	cmd.Flags().StringVar(&stageFlag, "stage", "", "Authoring stage (seed, prompt, json, media, audio, scorm)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Preview file path, or - for stdout")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "Walk the navigation without answering questions")
	mflags.register(cmd)
	return cmd
}

// printSimulation advances through the course without answering anything
// and reports where navigation stops.
func printSimulation(out io.Writer, rt *runtimedoc.Runtime) error {
	rows := [][]string{{"1", rt.Nav.Current(), "start"}}
	for !rt.Nav.Terminal() {
		next, err := rt.Nav.Next()
		if errors.Is(err, runtimedoc.ErrNavigationBlocked) {
			rows = append(rows, []string{"", rt.Nav.Current(), "blocked by unanswered knowledge check"})
			break
		}
		if err != nil {
			return err
		}
		rows = append(rows, []string{strconv.Itoa(len(rows) + 1), next, "visited"})
	}
	fmt.Fprintln(out, renderTable("Simulation", []string{"Step", "Page", "Result"}, rows, []columnAlignment{alignRight}))
	fmt.Fprintf(out, "Lesson status: %s\n", rt.LessonStatus())
	return nil
}
