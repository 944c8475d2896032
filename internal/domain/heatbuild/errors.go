package heatbuild

import "errors"

// Sentinel kinds for heat building errors.
var (
	ErrUnknownPolicy = errors.New("unknown seeding policy")
)
