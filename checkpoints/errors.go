package checkpoints

import "errors"

var (
	// ErrBadMagic is returned when the stream's first bytes don't match
	// either the binary or textual archive magic.
	ErrBadMagic = errors.New("checkpoints: unrecognized magic")

	// ErrTruncated wraps any short-read while parsing an otherwise
	// recognized archive.
	ErrTruncated = errors.New("checkpoints: truncated stream")

	// ErrUnknownRecordLength is returned by the textual parser when a
	// decoded checkpoint line is neither the V1 nor the V2 record width.
	ErrUnknownRecordLength = errors.New("checkpoints: unknown record length")

	// ErrNoCheckpoints is returned when an archive declares zero
	// checkpoints; a checkpoint archive with nothing in it cannot seed a
	// store.
	ErrNoCheckpoints = errors.New("checkpoints: archive contains no checkpoints")

	// ErrTooManySignatures is returned when the declared signature count
	// exceeds the historical 256-signature ceiling.
	ErrTooManySignatures = errors.New("checkpoints: signature count out of range")
)
