// Package disc classifies optical media and disc-like directories.
//
// DetectFromDevice and DetectWithURL probe a block device or disc image for a
// DVD, Video CD or audio CD, falling back to Data for any readable medium
// without a recognized structure. DetectFromDir inspects a directory such as a
// mount point. Classification is read-only and stateless: nothing is mounted,
// ejected or cached, and every handle opened during a probe is closed before
// the call returns.
//
// Failures are reported as *ClassificationError values whose kind can be
// matched with errors.Is (ErrNoMedium, ErrPermission, ErrNotDevice, ...).
// Retrying, for instance after waiting for a disc with WaitForReady, is left
// to the caller.
package disc
