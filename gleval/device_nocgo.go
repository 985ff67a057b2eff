//go:build tinygo || !cgo

package gleval

import "errors"

var errNoCGO = errors.New("querying the GPU requires CGo and is not supported on TinyGo")

// QueryDevice reads the limits of the current GPU. It requires CGo.
func QueryDevice() (Device, error) {
	return Device{}, errNoCGO
}
