package types

import "errors"

// Path rewriting errors.
var (
	ErrConfigMissing    = errors.New("directory mapping not set")
	ErrConfigIncomplete = errors.New("directory mapping incomplete: new_directory not set")
	ErrInvalidPattern   = errors.New("invalid pattern")
)

// Reference lookup errors. Callers in the core treat ErrReferenceNotFound as
// a silent no-op.
var (
	ErrReferenceNotFound = errors.New("reference not found")
)

// Store errors.
var (
	ErrPersistence     = errors.New("persistence failure")
	ErrVersionExists   = errors.New("version already exists")
	ErrNotFound        = errors.New("version not found")
	ErrInvalidVersion  = errors.New("invalid version")
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Version generation errors.
var (
	ErrInvalidVersionFormat = errors.New("previous version is not an integer")
	ErrUnknownVersionKind   = errors.New("unknown version kind")
	ErrNotInteractive       = errors.New("interactive input requested without a terminal")
)
