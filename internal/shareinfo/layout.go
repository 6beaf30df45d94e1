package shareinfo

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// Layout is the offset table of a native share record for one pointer width.
type Layout struct {
	PtrSize      int
	NameOffset   int
	TypeOffset   int
	RemarkOffset int
	Size         int
}

// LayoutFor returns the naturally aligned layout for 4- or 8-byte pointers.
func LayoutFor(ptrSize int) (Layout, error) {
	if ptrSize != 4 && ptrSize != 8 {
		return Layout{}, fmt.Errorf("%w: %d", ErrUnsupportedPointerSize, ptrSize)
	}
	l := Layout{PtrSize: ptrSize, NameOffset: 0, TypeOffset: ptrSize}
	l.RemarkOffset = alignUp(l.TypeOffset+4, ptrSize)
	l.Size = alignUp(l.RemarkOffset+ptrSize, ptrSize)
	return l, nil
}

// NativeLayout is the layout the compiler chose for Native on this platform.
func NativeLayout() Layout {
	var n Native
	return Layout{
		PtrSize:      int(unsafe.Sizeof(n.Netname)),
		NameOffset:   int(unsafe.Offsetof(n.Netname)),
		TypeOffset:   int(unsafe.Offsetof(n.Type)),
		RemarkOffset: int(unsafe.Offsetof(n.Remark)),
		Size:         int(unsafe.Sizeof(n)),
	}
}

func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// Memory is a readable view of host memory addressed by absolute address.
type Memory interface {
	ReadAt(addr uint64, n int) ([]byte, error)
}

// Image is a snapshot of host memory starting at Base.
type Image struct {
	Base uint64
	Data []byte
}

// ReadAt returns n bytes at addr. The slice aliases the image.
func (m *Image) ReadAt(addr uint64, n int) ([]byte, error) {
	if addr < m.Base || n < 0 {
		return nil, fmt.Errorf("%w: 0x%x", ErrInvalidAddress, addr)
	}
	off := addr - m.Base
	if off > uint64(len(m.Data)) || uint64(n) > uint64(len(m.Data))-off {
		return nil, fmt.Errorf("%w: 0x%x+%d", ErrInvalidAddress, addr, n)
	}
	return m.Data[off : off+uint64(n)], nil
}

// fits returns how many size-byte records start at addr inside the image.
func (m *Image) fits(addr uint64, size int) int {
	if addr < m.Base || size <= 0 {
		return 0
	}
	off := addr - m.Base
	if off >= uint64(len(m.Data)) {
		return 0
	}
	return int((uint64(len(m.Data)) - off) / uint64(size))
}

// Decoder reads share records out of a Memory using an explicit offset table
// and text encoding.
type Decoder struct {
	Layout   Layout
	Encoding Encoding
	Order    binary.ByteOrder
}

// NewDecoder returns a decoder for the given pointer width and encoding,
// little-endian as on every Windows target.
func NewDecoder(ptrSize int, enc Encoding) (*Decoder, error) {
	l, err := LayoutFor(ptrSize)
	if err != nil {
		return nil, err
	}
	return &Decoder{Layout: l, Encoding: enc, Order: binary.LittleEndian}, nil
}

// Decode reads the record at addr.
func (d *Decoder) Decode(mem Memory, addr uint64) (ShareRecord, error) {
	raw, err := mem.ReadAt(addr, d.Layout.Size)
	if err != nil {
		return ShareRecord{}, err
	}
	name, err := d.stringAt(mem, d.pointer(raw[d.Layout.NameOffset:]))
	if err != nil {
		return ShareRecord{}, fmt.Errorf("name: %w", err)
	}
	remark, err := d.stringAt(mem, d.pointer(raw[d.Layout.RemarkOffset:]))
	if err != nil {
		return ShareRecord{}, fmt.Errorf("remark: %w", err)
	}
	return ShareRecord{
		Name:   name,
		Type:   ShareType(d.Order.Uint32(raw[d.Layout.TypeOffset:])),
		Remark: remark,
	}, nil
}

// DecodeArray reads count contiguous records starting at addr. When mem is an
// *Image, a count whose fixed parts do not fit in the image is rejected with
// ErrInvalidAddress before anything is read.
func (d *Decoder) DecodeArray(mem Memory, addr uint64, count int) ([]ShareRecord, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	var records []ShareRecord
	if img, ok := mem.(*Image); ok {
		if n := img.fits(addr, d.Layout.Size); count > n {
			return nil, fmt.Errorf("%w: %d records at 0x%x, image holds %d", ErrInvalidAddress, count, addr, n)
		}
		records = make([]ShareRecord, 0, count)
	} else {
		// Unbounded memory: grow as reads succeed.
		records = []ShareRecord{}
	}

	stride := uint64(d.Layout.Size)
	for i := 0; i < count; i++ {
		r, err := d.Decode(mem, addr+uint64(i)*stride)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (d *Decoder) pointer(b []byte) uint64 {
	if d.Layout.PtrSize == 4 {
		return uint64(d.Order.Uint32(b))
	}
	return d.Order.Uint64(b)
}

func (d *Decoder) stringAt(mem Memory, addr uint64) (string, error) {
	if addr == 0 {
		return "", nil
	}
	unit := d.Encoding.UnitSize()
	var units []byte
	for i := 0; i < maxStringUnits; i++ {
		b, err := mem.ReadAt(addr+uint64(i*unit), unit)
		if err != nil {
			return "", err
		}
		if isZero(b) {
			return d.Encoding.Decode(units, d.Order)
		}
		units = append(units, b...)
	}
	return "", ErrUnterminated
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Encoder lays records out as the host would: a contiguous array of fixed
// parts followed by the NUL-terminated string data they point to.
type Encoder struct {
	Layout   Layout
	Encoding Encoding
	Order    binary.ByteOrder
}

// NewEncoder returns a little-endian encoder for the given pointer width.
func NewEncoder(ptrSize int, enc Encoding) (*Encoder, error) {
	l, err := LayoutFor(ptrSize)
	if err != nil {
		return nil, err
	}
	return &Encoder{Layout: l, Encoding: enc, Order: binary.LittleEndian}, nil
}

// Encode writes records into a new Image at base. Every string, including an
// empty remark, gets a non-null pointer.
func (e *Encoder) Encode(records []ShareRecord, base uint64) (*Image, error) {
	fixed := len(records) * e.Layout.Size
	data := make([]byte, fixed)
	for i, r := range records {
		at := i * e.Layout.Size
		e.Order.PutUint32(data[at+e.Layout.TypeOffset:], uint32(r.Type))

		var err error
		if data, err = e.appendString(data, base, at+e.Layout.NameOffset, r.Name); err != nil {
			return nil, fmt.Errorf("record %d name: %w", i, err)
		}
		if data, err = e.appendString(data, base, at+e.Layout.RemarkOffset, r.Remark); err != nil {
			return nil, fmt.Errorf("record %d remark: %w", i, err)
		}
	}
	return &Image{Base: base, Data: data}, nil
}

func (e *Encoder) appendString(data []byte, base uint64, ptrAt int, s string) ([]byte, error) {
	b, err := e.Encoding.Encode(s, e.Order)
	if err != nil {
		return nil, err
	}
	for len(data)%e.Encoding.UnitSize() != 0 {
		data = append(data, 0)
	}
	addr := base + uint64(len(data))
	if e.Layout.PtrSize == 4 {
		if addr > math.MaxUint32 {
			return nil, fmt.Errorf("%w: 0x%x does not fit a 32-bit pointer", ErrInvalidAddress, addr)
		}
		e.Order.PutUint32(data[ptrAt:], uint32(addr))
	} else {
		e.Order.PutUint64(data[ptrAt:], addr)
	}
	return append(data, b...), nil
}
