// Package issue defines the diagnostics the type algebra and the
// reconciler emit, and the hook through which they are emitted.
//
// Diagnostics are the only error channel of the narrowing core: the
// algebra always returns a best-effort type and reports problems through
// a Reporter, synchronously, in the order they are found. Buffering and
// ordering beyond that are the collector's concern.
//
// Every issue has a content-addressed Fingerprint so a store can dedupe
// the same finding across repeated runs.
package issue
