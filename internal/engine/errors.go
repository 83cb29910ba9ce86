package engine

import "errors"

var (
	ErrInvalidEndpoints  = errors.New("invalid endpoints")
	ErrInvalidGeometry   = errors.New("invalid geometry")
	ErrMissingAsset      = errors.New("missing asset")
	ErrMalformedScene    = errors.New("malformed scene")
	ErrDanglingReference = errors.New("dangling reference")
	ErrBothCubesAttached = errors.New("both cubes already attached")
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedKind   = errors.New("unsupported kind")
	ErrSceneVersion      = errors.New("unsupported scene version")
)
