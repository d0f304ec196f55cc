// Package canon provides the canonical encoding used to fingerprint game
// state.
//
// Values are a closed set (String, Int, Bool, Array, Object) serialised as
// RFC 8785 style canonical JSON and hashed with a domain prefix. There are
// no floats: coordinates are quantised with Fixed before they enter a
// Value, so the same board always hashes the same on every platform.
package canon
