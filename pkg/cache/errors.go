package cache

import "errors"

// ErrInvalidKey is returned for keys that are not plain file names, such
// as keys containing a path separator.
var ErrInvalidKey = errors.New("invalid cache key")
