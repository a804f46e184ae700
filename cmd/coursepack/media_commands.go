package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"coursepack/internal/config"
	"coursepack/internal/course"
	"coursepack/internal/mediastore"
	"coursepack/internal/resolver"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Manage the media store",
	}
	mediaCmd.AddCommand(newMediaAddCommand(ctx))
	mediaCmd.AddCommand(newMediaListCommand(ctx))
	return mediaCmd
}

func newMediaAddCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var sourceURL string

	cmd := &cobra.Command{
		Use:   "add <id> <file>",
		Short: "Store a media file under an id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := mediastore.ValidateID(id); err != nil {
				return err
			}
			path, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read media file: %w", err)
			}

			name := filepath.Base(path)
			detected := mimetype.Detect(data)
			kind := course.MediaKind(strings.ToLower(strings.TrimSpace(kindFlag)))
			if kind == course.KindUnknown {
				kind = resolver.Classify(course.KindUnknown, kindFromMIME(detected.String()), name)
			}
			if !kind.Valid() {
				return fmt.Errorf("unknown media kind %q", kindFlag)
			}

			store, err := ctx.mediaStore()
			if err != nil {
				return err
			}
			payload := mediastore.Payload{
				ID:           id,
				Kind:         kind,
				MimeType:     detected.String(),
				OriginalName: name,
				SourceURL:    sourceURL,
				Data:         data,
			}
			if err := store.Put(cmd.Context(), payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s as %s (%s, %s)\n", name, id, kind, humanBytes(int64(len(data))))
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "Media kind (image, video, audio, caption); detected when omitted")
	cmd.Flags().StringVar(&sourceURL, "source", "", "Original URL the file was downloaded from")
	return cmd
}

func newMediaListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored media",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.mediaStore()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Media store is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				added := "-"
				if !e.CreatedAt.IsZero() {
					added = e.CreatedAt.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{e.ID, string(e.Kind), e.MimeType, e.OriginalName, humanBytes(e.Size), added})
			}
			fmt.Fprintln(out, renderTable("", []string{"ID", "Kind", "Type", "Name", "Size", "Added"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}

func kindFromMIME(mimeType string) course.MediaKind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return course.KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return course.KindVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return course.KindAudio
	case strings.HasPrefix(mimeType, "text/vtt"):
		return course.KindCaption
	}
	return course.KindUnknown
}
