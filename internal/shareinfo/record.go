// Package shareinfo is the native interop boundary for share descriptors. It
// mirrors the level-1 share record returned by the host's share enumeration
// API and converts it to and from process-owned Go values. No other package
// depends on native layout details.
package shareinfo

import (
	"encoding/binary"
	"unsafe"
)

// ShareRecord describes one share as reported by the host. Field order is
// part of the native layout contract and must not change.
type ShareRecord struct {
	Name   string    `json:"name"`
	Type   ShareType `json:"share_type"`
	Remark string    `json:"remark"`
}

// New returns a record built from caller-supplied values.
func New(name string, t ShareType, remark string) ShareRecord {
	return ShareRecord{Name: name, Type: t, Remark: remark}
}

// String returns the share name. The zero record renders as "".
func (r ShareRecord) String() string {
	return r.Name
}

// FieldOrder returns the native field order of a share record.
func FieldOrder() []string {
	return []string{"name", "shareType", "remark"}
}

// Native is the in-memory shape of SHARE_INFO_1 as written by the host:
//
//	typedef struct _SHARE_INFO_1 {
//	  LMSTR shi1_netname;
//	  DWORD shi1_type;
//	  LMSTR shi1_remark;
//	} SHARE_INFO_1;
//
// A zero Native is a valid out-parameter target.
type Native struct {
	Netname *uint16
	Type    uint32
	Remark  *uint16
}

// FromNative copies a wide-string record out of host memory.
func FromNative(n *Native) (ShareRecord, error) {
	return FromPointer(unsafe.Pointer(n), EncodingUTF16)
}

// FromPointer interprets the bytes at p as a Native record whose string
// fields use enc. The returned strings are copies owned by the Go heap; the
// caller may release the native buffer afterwards.
//
// A nil p yields ErrInvalidAddress. Any other invalid address faults in the
// host and cannot be recovered here.
func FromPointer(p unsafe.Pointer, enc Encoding) (ShareRecord, error) {
	if p == nil {
		return ShareRecord{}, ErrInvalidAddress
	}
	n := (*Native)(p)
	name, err := stringAt(unsafe.Pointer(n.Netname), enc)
	if err != nil {
		return ShareRecord{}, err
	}
	remark, err := stringAt(unsafe.Pointer(n.Remark), enc)
	if err != nil {
		return ShareRecord{}, err
	}
	return ShareRecord{Name: name, Type: ShareType(n.Type), Remark: remark}, nil
}

// RecordsAt interprets count contiguous Native records starting at p, the
// layout returned by a level-1 enumeration.
func RecordsAt(p unsafe.Pointer, count int, enc Encoding) ([]ShareRecord, error) {
	if count == 0 {
		return []ShareRecord{}, nil
	}
	if p == nil {
		return nil, ErrInvalidAddress
	}
	natives := unsafe.Slice((*Native)(p), count)
	records := make([]ShareRecord, 0, count)
	for i := range natives {
		r, err := FromPointer(unsafe.Pointer(&natives[i]), enc)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// stringAt reads a NUL-terminated string of enc code units at p. A nil p is
// an absent optional string and yields "".
func stringAt(p unsafe.Pointer, enc Encoding) (string, error) {
	if p == nil {
		return "", nil
	}
	unit := enc.UnitSize()
	n := 0
	for ; n < maxStringUnits; n++ {
		if isZeroUnit(unsafe.Add(p, n*unit), unit) {
			break
		}
	}
	if n == maxStringUnits {
		return "", ErrUnterminated
	}
	return enc.Decode(unsafe.Slice((*byte)(p), n*unit), binary.NativeEndian)
}

func isZeroUnit(p unsafe.Pointer, unit int) bool {
	for _, b := range unsafe.Slice((*byte)(p), unit) {
		if b != 0 {
			return false
		}
	}
	return true
}
