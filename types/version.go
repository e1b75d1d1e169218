package types

// Version is the canonical project version.
// The CLI, the worker binary, and the notification event schema share
// this version (lockstep versioning).
const Version = "0.3.0"
