//go:build linux

package cli

import "golang.org/x/sys/unix"

// Terminal attribute ioctls for the key prompt.
const (
	getTermiosIoctl = unix.TCGETS
	setTermiosIoctl = unix.TCSETS
)
