// Package netapi enumerates the shares a host publishes through the
// netapi32 level-1 share functions and copies the results into
// process-owned shareinfo records. It owns the native buffers it receives
// and releases every one of them before returning.
package netapi

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"sharekeeper/internal/shareinfo"
)

// NET_API_STATUS values used by the share functions.
const (
	NERR_Success         uint32 = 0
	ERROR_ACCESS_DENIED  uint32 = 5
	ERROR_NOT_ENOUGH_MEM uint32 = 8
	ERROR_INVALID_PARAM  uint32 = 87
	ERROR_INVALID_LEVEL  uint32 = 124
	ERROR_MORE_DATA      uint32 = 234
	NERR_BufTooSmall     uint32 = 2123
	NERR_NetNameNotFound uint32 = 2310
)

// MaxPreferredLength asks the host to allocate as much as the result needs.
const MaxPreferredLength uint32 = 0xFFFFFFFF

const infoLevel1 uint32 = 1

var (
	// ErrNotSupported is returned on platforms without netapi32.
	ErrNotSupported = errors.New("netapi: share enumeration is only supported on windows")
	// ErrAccessDenied is matched by a NetError carrying ERROR_ACCESS_DENIED.
	ErrAccessDenied = errors.New("netapi: access denied")
	// ErrShareNotFound is matched by a NetError carrying NERR_NetNameNotFound.
	ErrShareNotFound = errors.New("netapi: share not found")
)

var statusText = map[uint32]string{
	ERROR_ACCESS_DENIED:  "access denied",
	ERROR_NOT_ENOUGH_MEM: "not enough memory",
	ERROR_INVALID_PARAM:  "invalid parameter",
	ERROR_INVALID_LEVEL:  "invalid level",
	ERROR_MORE_DATA:      "more data is available",
	NERR_BufTooSmall:     "buffer too small",
	NERR_NetNameNotFound: "share name not found",
}

// NetError is a failed NET_API_STATUS from one of the share functions.
type NetError struct {
	Op     string
	Server string
	Status uint32
}

func (e *NetError) Error() string {
	server := e.Server
	if server == "" {
		server = "local host"
	}
	text, ok := statusText[e.Status]
	if !ok {
		text = "status"
	}
	return fmt.Sprintf("%s on %s failed: %s (%d)", e.Op, server, text, e.Status)
}

// Unwrap maps well-known statuses to the package sentinels.
func (e *NetError) Unwrap() error {
	switch e.Status {
	case ERROR_ACCESS_DENIED:
		return ErrAccessDenied
	case NERR_NetNameNotFound:
		return ErrShareNotFound
	}
	return nil
}

// api is the raw netapi32 surface. Implementations return the
// NET_API_STATUS; err is reserved for failures before the call is made.
type api interface {
	shareEnum(server string, level uint32, buf **byte, prefMaxLen uint32, entriesRead, totalEntries, resumeHandle *uint32) (uint32, error)
	shareGetInfo(server, netname string, level uint32, buf **byte) (uint32, error)
	bufferFree(buf *byte) error
}

// Native share calls are serialized process-wide.
var callMu sync.Mutex

// Enumerator lists the shares of one server.
type Enumerator struct {
	// Server is the target host; empty means the local computer.
	Server string
	// PageSize is the preferred maximum buffer length per call.
	PageSize uint32

	api api
	log *logrus.Entry
}

// NewEnumerator returns an enumerator for server using the platform API.
func NewEnumerator(server string) *Enumerator {
	return newEnumerator(server, defaultAPI())
}

func newEnumerator(server string, a api) *Enumerator {
	return &Enumerator{
		Server:   server,
		PageSize: MaxPreferredLength,
		api:      a,
		log:      logrus.WithField("server", server),
	}
}

// Enumerate returns every share on the server. It keeps calling
// NetShareEnum while the host reports more data and frees each returned
// buffer once its records have been copied.
func (e *Enumerator) Enumerate(ctx context.Context) ([]shareinfo.ShareRecord, error) {
	callMu.Lock()
	defer callMu.Unlock()

	var (
		resume  uint32
		records = make([]shareinfo.ShareRecord, 0)
	)
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			buf          *byte
			entriesRead  uint32
			totalEntries uint32
		)
		status, err := e.api.shareEnum(e.Server, infoLevel1, &buf, e.PageSize, &entriesRead, &totalEntries, &resume)
		if err != nil {
			return nil, errors.Wrap(err, "NetShareEnum")
		}
		if status != NERR_Success && status != ERROR_MORE_DATA {
			e.free(buf)
			return nil, errors.WithStack(&NetError{Op: "NetShareEnum", Server: e.Server, Status: status})
		}

		got, err := shareinfo.RecordsAt(unsafe.Pointer(buf), int(entriesRead), shareinfo.EncodingUTF16)
		if ferr := e.free(buf); ferr != nil && err == nil {
			err = ferr
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read share page %d", page)
		}
		records = append(records, got...)

		e.log.WithFields(logrus.Fields{
			"page":  page,
			"read":  entriesRead,
			"total": totalEntries,
		}).Debug("netapi: share page copied")

		if status == NERR_Success {
			return records, nil
		}
		if entriesRead == 0 {
			return nil, errors.Errorf("NetShareEnum on %q reported more data without returning entries", e.Server)
		}
	}
}

// GetInfo returns the level-1 record of a single share.
func (e *Enumerator) GetInfo(ctx context.Context, name string) (shareinfo.ShareRecord, error) {
	if err := ctx.Err(); err != nil {
		return shareinfo.ShareRecord{}, err
	}
	callMu.Lock()
	defer callMu.Unlock()

	var buf *byte
	status, err := e.api.shareGetInfo(e.Server, name, infoLevel1, &buf)
	if err != nil {
		return shareinfo.ShareRecord{}, errors.Wrap(err, "NetShareGetInfo")
	}
	if status != NERR_Success {
		e.free(buf)
		return shareinfo.ShareRecord{}, errors.WithStack(&NetError{Op: "NetShareGetInfo", Server: e.Server, Status: status})
	}

	r, err := shareinfo.FromNative((*shareinfo.Native)(unsafe.Pointer(buf)))
	if ferr := e.free(buf); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		return shareinfo.ShareRecord{}, errors.Wrapf(err, "read share %q", name)
	}
	return r, nil
}

func (e *Enumerator) free(buf *byte) error {
	if buf == nil {
		return nil
	}
	if err := e.api.bufferFree(buf); err != nil {
		e.log.WithError(err).Warn("netapi: NetApiBufferFree failed")
		return errors.Wrap(err, "NetApiBufferFree")
	}
	return nil
}
