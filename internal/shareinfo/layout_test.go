package shareinfo

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutFor(t *testing.T) {
	l32, err := LayoutFor(4)
	require.NoError(t, err)
	assert.Equal(t, Layout{PtrSize: 4, NameOffset: 0, TypeOffset: 4, RemarkOffset: 8, Size: 12}, l32)

	l64, err := LayoutFor(8)
	require.NoError(t, err)
	assert.Equal(t, Layout{PtrSize: 8, NameOffset: 0, TypeOffset: 8, RemarkOffset: 16, Size: 24}, l64)

	_, err = LayoutFor(2)
	assert.ErrorIs(t, err, ErrUnsupportedPointerSize)
}

func TestNativeLayoutMatchesOffsetTable(t *testing.T) {
	want, err := LayoutFor(int(unsafe.Sizeof(uintptr(0))))
	require.NoError(t, err)
	assert.Equal(t, want, NativeLayout())
}

// A 32-bit block written out by hand, independent of Encoder:
//
//	0x4000 name ptr -> 0x400c
//	0x4004 type      = IPC|SPECIAL
//	0x4008 remark ptr -> 0x4018
//	0x400c "IPC$\0"        (UTF-16LE)
//	0x4018 "Remote IPC\0"  (UTF-16LE)
func TestDecodeHandBuiltBlock(t *testing.T) {
	data := make([]byte, 0x18+22)
	binary.LittleEndian.PutUint32(data[0:], 0x400c)
	binary.LittleEndian.PutUint32(data[4:], uint32(TypeIPC|FlagSpecial))
	binary.LittleEndian.PutUint32(data[8:], 0x4018)
	for i, c := range "IPC$" {
		binary.LittleEndian.PutUint16(data[0x0c+i*2:], uint16(c))
	}
	for i, c := range "Remote IPC" {
		binary.LittleEndian.PutUint16(data[0x18+i*2:], uint16(c))
	}
	mem := &Image{Base: 0x4000, Data: data}

	d, err := NewDecoder(4, EncodingUTF16)
	require.NoError(t, err)
	got, err := d.Decode(mem, 0x4000)
	require.NoError(t, err)
	assert.Equal(t, New("IPC$", TypeIPC|FlagSpecial, "Remote IPC"), got)
}

func TestDecodeNullRemark(t *testing.T) {
	data := make([]byte, 24+4)
	binary.LittleEndian.PutUint64(data[0:], 0x1000+24)
	binary.LittleEndian.PutUint32(data[8:], uint32(TypeDiskTree))
	copy(data[24:], []byte{'D', 0, 0, 0})
	mem := &Image{Base: 0x1000, Data: data}

	d, err := NewDecoder(8, EncodingUTF16)
	require.NoError(t, err)
	got, err := d.Decode(mem, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, New("D", TypeDiskTree, ""), got)
}

func TestDecodeInvalidAddress(t *testing.T) {
	d, err := NewDecoder(8, EncodingUTF16)
	require.NoError(t, err)
	mem := &Image{Base: 0x1000, Data: make([]byte, 24)}

	_, err = d.Decode(mem, 0x0800)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = d.Decode(mem, 0x1008)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	// name pointer outside the snapshot
	binary.LittleEndian.PutUint64(mem.Data[0:], 0xdead0000)
	_, err = d.Decode(mem, 0x1000)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestDecodeRunsOffImage(t *testing.T) {
	data := make([]byte, 12+4)
	binary.LittleEndian.PutUint32(data[0:], 0x100+12)
	copy(data[12:], []byte{'a', 0, 'b', 0})
	d, err := NewDecoder(4, EncodingUTF16)
	require.NoError(t, err)

	_, err = d.Decode(&Image{Base: 0x100, Data: data}, 0x100)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []ShareRecord{
		New("ADMIN$", TypeDiskTree|FlagSpecial, "Remote Admin"),
		New("IPC$", TypeIPC|FlagSpecial, "Remote IPC"),
		New("Printer", TypePrintQueue, "Café floor 2"),
		New("scratch", TypeDiskTree|FlagTemporary, ""),
	}
	for _, ptr := range []int{4, 8} {
		for _, enc := range []Encoding{EncodingUTF16, EncodingANSI} {
			t.Run(fmt.Sprintf("ptr%d/%s", ptr, enc), func(t *testing.T) {
				e, err := NewEncoder(ptr, enc)
				require.NoError(t, err)
				img, err := e.Encode(records, 0x7ff0_0000)
				require.NoError(t, err)

				d, err := NewDecoder(ptr, enc)
				require.NoError(t, err)
				got, err := d.DecodeArray(img, img.Base, len(records))
				require.NoError(t, err)
				if diff := cmp.Diff(records, got); diff != "" {
					t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestEncodeFieldOffsets(t *testing.T) {
	e, err := NewEncoder(8, EncodingUTF16)
	require.NoError(t, err)
	img, err := e.Encode([]ShareRecord{New("x", 0x80000003, "y")}, 0)
	require.NoError(t, err)

	assert.Equal(t, uint64(24), binary.LittleEndian.Uint64(img.Data[0:]))
	assert.Equal(t, uint32(0x80000003), binary.LittleEndian.Uint32(img.Data[8:]))
	assert.Equal(t, uint64(28), binary.LittleEndian.Uint64(img.Data[16:]))
	assert.Equal(t, []byte{'x', 0, 0, 0, 'y', 0, 0, 0}, img.Data[24:])
}

func TestEncodeRejectsEmbeddedNUL(t *testing.T) {
	e, err := NewEncoder(8, EncodingUTF16)
	require.NoError(t, err)
	_, err = e.Encode([]ShareRecord{New("a\x00b", 0, "")}, 0)
	assert.ErrorIs(t, err, ErrEmbeddedNUL)
}

func TestDecodeArrayRejectsBadCounts(t *testing.T) {
	e, err := NewEncoder(8, EncodingUTF16)
	require.NoError(t, err)
	img, err := e.Encode([]ShareRecord{New("IPC$", TypeIPC|FlagSpecial, "Remote IPC")}, 0x1000)
	require.NoError(t, err)
	d, err := NewDecoder(8, EncodingUTF16)
	require.NoError(t, err)

	_, err = d.DecodeArray(img, img.Base, -1)
	assert.ErrorIs(t, err, ErrInvalidCount)

	for _, count := range []int{2, 1 << 27, math.MaxInt} {
		_, err = d.DecodeArray(img, img.Base, count)
		assert.ErrorIs(t, err, ErrInvalidAddress, "count %d", count)
	}

	got, err := d.DecodeArray(img, img.Base, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = d.DecodeArray(img, img.Base, 1)
	require.NoError(t, err)
	assert.Equal(t, []ShareRecord{New("IPC$", TypeIPC|FlagSpecial, "Remote IPC")}, got)
}

// pagedMemory is a Memory that is not an *Image, so DecodeArray cannot size
// its result up front.
type pagedMemory struct{ img *Image }

func (m pagedMemory) ReadAt(addr uint64, n int) ([]byte, error) { return m.img.ReadAt(addr, n) }

func TestDecodeArrayHugeCountOnOpaqueMemory(t *testing.T) {
	e, err := NewEncoder(4, EncodingANSI)
	require.NoError(t, err)
	img, err := e.Encode([]ShareRecord{New("Public", TypeDiskTree, "")}, 0x1000)
	require.NoError(t, err)
	d, err := NewDecoder(4, EncodingANSI)
	require.NoError(t, err)

	_, err = d.DecodeArray(pagedMemory{img}, img.Base, math.MaxInt)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestEncodeRejectsPointerOverflow(t *testing.T) {
	e, err := NewEncoder(4, EncodingUTF16)
	require.NoError(t, err)
	records := []ShareRecord{New("IPC$", TypeIPC, "Remote IPC")}

	_, err = e.Encode(records, 1<<32)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	// name fits below 4 GiB, remark would wrap
	_, err = e.Encode(records, 0xFFFF_FFF0)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	e64, err := NewEncoder(8, EncodingUTF16)
	require.NoError(t, err)
	_, err = e64.Encode(records, 1<<32)
	assert.NoError(t, err)
}
