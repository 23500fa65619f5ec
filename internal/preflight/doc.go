// Package preflight provides readiness checks for the drive, directories,
// helper binaries and system services totem-disc depends on.
//
// These checks run in two contexts:
//   - The watch daemon calls RunAll at startup and logs every failed check.
//   - The CLI "totem-disc check" command renders all results and exits
//     non-zero when a required check fails.
//
// Checks for optional features are marked Optional and never fail the run.
package preflight
