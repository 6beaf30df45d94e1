//go:build windows

package netapi

import (
	"syscall"

	"golang.org/x/sys/windows"
)

//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go syscall_windows.go

//sys netShareEnum(serverName *uint16, level uint32, buf **byte, prefMaxLen uint32, entriesRead *uint32, totalEntries *uint32, resumeHandle *uint32) (neterr error) = netapi32.NetShareEnum
//sys netShareGetInfo(serverName *uint16, netName *uint16, level uint32, buf **byte) (neterr error) = netapi32.NetShareGetInfo
//sys netApiBufferFree(buf *byte) (neterr error) = netapi32.NetApiBufferFree

type winAPI struct{}

func defaultAPI() api {
	return winAPI{}
}

// serverPtr converts an optional server name; nil selects the local host.
func serverPtr(server string) (*uint16, error) {
	if server == "" {
		return nil, nil
	}
	return windows.UTF16PtrFromString(server)
}

func status(err error) uint32 {
	if err == nil {
		return NERR_Success
	}
	if errno, ok := err.(syscall.Errno); ok {
		return uint32(errno)
	}
	return ERROR_INVALID_PARAM
}

func (winAPI) shareEnum(server string, level uint32, buf **byte, prefMaxLen uint32, entriesRead, totalEntries, resumeHandle *uint32) (uint32, error) {
	sp, err := serverPtr(server)
	if err != nil {
		return 0, err
	}
	return status(netShareEnum(sp, level, buf, prefMaxLen, entriesRead, totalEntries, resumeHandle)), nil
}

func (winAPI) shareGetInfo(server, netname string, level uint32, buf **byte) (uint32, error) {
	sp, err := serverPtr(server)
	if err != nil {
		return 0, err
	}
	np, err := windows.UTF16PtrFromString(netname)
	if err != nil {
		return 0, err
	}
	return status(netShareGetInfo(sp, np, level, buf)), nil
}

func (winAPI) bufferFree(buf *byte) error {
	return netApiBufferFree(buf)
}
