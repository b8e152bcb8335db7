package handler

import "errors"

var (
	ErrAddressRequired = errors.New("address required")
	ErrAddressNotFound = errors.New("address not found")
	ErrGeocoding       = errors.New("geocoding failed")
	ErrUpstream        = errors.New("station feed unavailable")
)
