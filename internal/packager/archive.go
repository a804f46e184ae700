package packager

import (
	"archive/zip"
	"bytes"
	"context"
	"sort"
	"time"

	"coursepack/internal/failures"
)

// archiveEpoch is the modification time stamped on every entry.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

type entry struct {
	name string
	data []byte
}

// writeArchive zips entries in name order. onEntry runs after each entry is
// written. No bytes are returned unless the whole archive succeeds.
func writeArchive(ctx context.Context, entries []entry, onEntry func(done, total int)) ([]byte, error) {
	sorted := append([]entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, e := range sorted {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return nil, failures.Wrap(failures.ErrCanceled, "packager", "write archive", e.name, err)
		}
		header := &zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		}
		header.SetMode(0o644)
		w, err := zw.CreateHeader(header)
		if err != nil {
			_ = zw.Close()
			return nil, &failures.ArchiveAssemblyFailure{Entry: e.name, Err: err}
		}
		if _, err := w.Write(e.data); err != nil {
			_ = zw.Close()
			return nil, &failures.ArchiveAssemblyFailure{Entry: e.name, Err: err}
		}
		if onEntry != nil {
			onEntry(i+1, len(sorted))
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &failures.ArchiveAssemblyFailure{Err: err}
	}
	return buf.Bytes(), nil
}

// Entry names inside a package.
const (
	EntryIMSManifest    = "imsmanifest.xml"
	EntryCourseManifest = "course-manifest.json"
	EntryIndex          = "index.html"
)
