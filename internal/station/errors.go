package station

import "errors"

// ErrMalformedRecord is returned by Parse for a record without usable coordinates.
var ErrMalformedRecord = errors.New("malformed station record")
