//go:build !linux

package raspberry

func openGpiomem() (GPIO, error) {
	return nil, ErrNotSupported
}

func openGpiod() (GPIO, error) {
	return nil, ErrNotSupported
}
