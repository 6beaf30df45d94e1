package shareinfo

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// NERR_Success as carried in the trailing status word.
const ndrStatusSuccess uint32 = 0

// Referent IDs start where Samba and Windows start them.
const ndrFirstReferent uint32 = 0x00020000

// MarshalNDR encodes records as the NDR stub of a level-1 NetrShareEnum
// response ([MS-SRVS] 3.1.4.8). The fixed part of each entry appears in
// native field order, followed by the deferred conformant varying strings.
//
//	level, switch, container ref, entries read, buffer ref,
//	[max count, {name ref, type, remark ref}*, {max, offset, actual, utf16le, pad}*],
//	total entries, resume handle ref, status
func MarshalNDR(records []ShareRecord) []byte {
	buf := make([]byte, 0, 64+len(records)*48)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, ndrFirstReferent)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(records)))

	if len(records) == 0 {
		buf = binary.LittleEndian.AppendUint32(buf, 0)
	} else {
		ref := ndrFirstReferent + 4
		buf = binary.LittleEndian.AppendUint32(buf, ref)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(records)))
		for _, r := range records {
			ref += 4
			buf = binary.LittleEndian.AppendUint32(buf, ref)
			buf = binary.LittleEndian.AppendUint32(buf, uint32(r.Type))
			ref += 4
			buf = binary.LittleEndian.AppendUint32(buf, ref)
		}
		for _, r := range records {
			buf = appendNDRString(buf, r.Name)
			buf = appendNDRString(buf, r.Remark)
		}
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(records)))
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, ndrStatusSuccess)
	return buf
}

func appendNDRString(buf []byte, s string) []byte {
	units := append(utf16.Encode([]rune(s)), 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(units)))
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(units)))
	for _, u := range units {
		buf = binary.LittleEndian.AppendUint16(buf, u)
	}
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

type ndrReader struct {
	buf []byte
	off int
}

func (r *ndrReader) uint32() (uint32, error) {
	if len(r.buf)-r.off < 4 {
		return 0, fmt.Errorf("%w: need 4 bytes at offset %d", ErrShortBuffer, r.off)
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *ndrReader) string() (string, error) {
	maxCount, err := r.uint32()
	if err != nil {
		return "", err
	}
	offset, err := r.uint32()
	if err != nil {
		return "", err
	}
	actual, err := r.uint32()
	if err != nil {
		return "", err
	}
	if offset != 0 || actual > maxCount {
		return "", fmt.Errorf("shareinfo: malformed ndr string (max %d, offset %d, actual %d)", maxCount, offset, actual)
	}
	n := int(actual) * 2
	if len(r.buf)-r.off < n {
		return "", fmt.Errorf("%w: string of %d bytes at offset %d", ErrShortBuffer, n, r.off)
	}
	units := make([]uint16, actual)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(r.buf[r.off+i*2:])
	}
	r.off += n
	for r.off%4 != 0 && r.off < len(r.buf) {
		r.off++
	}
	if len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units)), nil
}

// UnmarshalNDR decodes a level-1 NetrShareEnum response stub produced by
// MarshalNDR or a Windows server. Null string referents decode as "".
func UnmarshalNDR(b []byte) ([]ShareRecord, error) {
	r := &ndrReader{buf: b}
	level, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if _, err := r.uint32(); err != nil {
		return nil, err
	}
	if level != 1 {
		return nil, fmt.Errorf("shareinfo: unsupported info level %d", level)
	}
	containerRef, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if containerRef == 0 {
		return []ShareRecord{}, nil
	}
	entries, err := r.uint32()
	if err != nil {
		return nil, err
	}
	bufferRef, err := r.uint32()
	if err != nil {
		return nil, err
	}

	records := []ShareRecord{}
	if bufferRef != 0 {
		count, err := r.uint32()
		if err != nil {
			return nil, err
		}
		if count != entries {
			return nil, fmt.Errorf("shareinfo: array count %d does not match entries read %d", count, entries)
		}
		if uint64(count)*12 > uint64(len(b)-r.off) {
			return nil, fmt.Errorf("%w: %d entries", ErrShortBuffer, count)
		}

		type fixedPart struct{ nameRef, typ, remarkRef uint32 }
		fixed := make([]fixedPart, count)
		for i := range fixed {
			if fixed[i].nameRef, err = r.uint32(); err != nil {
				return nil, err
			}
			if fixed[i].typ, err = r.uint32(); err != nil {
				return nil, err
			}
			if fixed[i].remarkRef, err = r.uint32(); err != nil {
				return nil, err
			}
		}

		records = make([]ShareRecord, count)
		for i, f := range fixed {
			records[i].Type = ShareType(f.typ)
			if f.nameRef != 0 {
				if records[i].Name, err = r.string(); err != nil {
					return nil, fmt.Errorf("entry %d name: %w", i, err)
				}
			}
			if f.remarkRef != 0 {
				if records[i].Remark, err = r.string(); err != nil {
					return nil, fmt.Errorf("entry %d remark: %w", i, err)
				}
			}
		}
	}

	if _, err := r.uint32(); err != nil { // total entries
		return nil, err
	}
	resumeRef, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if resumeRef != 0 {
		if _, err := r.uint32(); err != nil {
			return nil, err
		}
	}
	status, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if status != ndrStatusSuccess {
		return records, fmt.Errorf("shareinfo: server returned status 0x%08x", status)
	}
	return records, nil
}
