package engine

import "errors"

var (
	ErrNilDefinition    = errors.New("engine: definition is nil")
	ErrUnknownField     = errors.New("engine: unknown field")
	ErrInvalidCount     = errors.New("engine: count is not an allowed option")
	ErrNotGroup         = errors.New("engine: field is not a repeatable group")
	ErrCountDriven      = errors.New("engine: group is sized by its count field")
	ErrIndexOutOfRange  = errors.New("engine: member index out of range")
	ErrMinMembers       = errors.New("engine: group is at its minimum size")
	ErrMaxMembers       = errors.New("engine: group is at its maximum size")
	ErrNotFile          = errors.New("engine: field is not a file input")
	ErrFileType         = errors.New("engine: file type is not accepted")
	ErrUploadInFlight   = errors.New("engine: upload already in progress for field")
	ErrUploaderMissing  = errors.New("engine: no uploader configured")
	ErrUpload           = errors.New("engine: upload failed")
	ErrOptionsLoaderNil = errors.New("engine: no options loader configured")
)
