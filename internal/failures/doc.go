// Package failures defines the error taxonomy shared by the assembly engine.
//
// Key responsibilities:
//   - Sentinel markers (ErrNotFound, ErrValidation, ErrArchive, ...) that
//     callers classify with errors.Is.
//   - Typed outcomes for the resolution and packaging paths:
//     ResourceNotFound, MissingResources, InvalidManifestOptions and
//     ArchiveAssemblyFailure. Terminal errors always carry the complete list
//     of offending ids or fields.
//   - The Wrap helper that prefixes component and operation context while
//     keeping the marker in the chain.
package failures
