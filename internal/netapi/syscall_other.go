//go:build !windows

package netapi

type unsupportedAPI struct{}

func defaultAPI() api {
	return unsupportedAPI{}
}

func (unsupportedAPI) shareEnum(string, uint32, **byte, uint32, *uint32, *uint32, *uint32) (uint32, error) {
	return 0, ErrNotSupported
}

func (unsupportedAPI) shareGetInfo(string, string, uint32, **byte) (uint32, error) {
	return 0, ErrNotSupported
}

func (unsupportedAPI) bufferFree(*byte) error {
	return nil
}
