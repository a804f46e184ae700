package main

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"coursepack/internal/config"
	"coursepack/internal/manifest"
	"coursepack/internal/packager"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "inspect <package.zip>",
		Short:       "Summarize a built package",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			pkg, sizes, err := readPackage(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:       %s\n", pkg.Title)
			fmt.Fprintf(out, "Identifier:  %s\n", pkg.Identifier)
			fmt.Fprintf(out, "Version:     %s (SCORM %s, schema %d)\n", pkg.Version, pkg.SCORMVersion, pkg.SchemaVersion)
			fmt.Fprintf(out, "Navigation:  %s\n", pkg.NavigationMode)
			fmt.Fprintf(out, "Completion:  %s (pass mark %d%%)\n", pkg.CompletionCriteria, pkg.PassMark)
			fmt.Fprintf(out, "Retake:      %s\n", yesNo(pkg.AllowRetake))
			fmt.Fprintln(out)

			pageRows := make([][]string, 0, len(pkg.Pages))
			for i, page := range pkg.Pages {
				pageRows = append(pageRows, []string{strconv.Itoa(i + 1), page.ID, page.Kind, page.Title, strconv.Itoa(len(page.Resources))})
			}
			fmt.Fprintln(out, renderTable("Pages", []string{"#", "ID", "Kind", "Title", "Media"}, pageRows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}))

			resRows := make([][]string, 0, len(pkg.Resources))
			for _, res := range pkg.Resources {
				location := res.Href
				size := humanBytes(sizes[res.Href])
				if res.External() {
					location = res.ExternalURL
					size = "-"
				}
				resRows = append(resRows, []string{res.ID, res.Kind, res.MimeType, location, size})
			}
			fmt.Fprintln(out, renderTable("Resources", []string{"ID", "Kind", "Type", "Location", "Size"}, resRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
}

// readPackage decodes the course manifest and uncompressed entry sizes.
func readPackage(path string) (manifest.Package, map[string]int64, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return manifest.Package{}, nil, fmt.Errorf("open package: %w", err)
	}
	defer zr.Close()

	sizes := make(map[string]int64, len(zr.File))
	var raw []byte
	for _, f := range zr.File {
		sizes[f.Name] = int64(f.UncompressedSize64)
		if f.Name != packager.EntryCourseManifest {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return manifest.Package{}, nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		raw, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return manifest.Package{}, nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if raw == nil {
		return manifest.Package{}, nil, errors.New("package has no " + packager.EntryCourseManifest)
	}
	pkg, err := manifest.Decode(raw)
	if err != nil {
		return manifest.Package{}, nil, fmt.Errorf("decode %s: %w", packager.EntryCourseManifest, err)
	}
	return pkg, sizes, nil
}
