package shareinfo

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNDRRoundTrip(t *testing.T) {
	records := []ShareRecord{
		New("ADMIN$", TypeDiskTree|FlagSpecial, "Remote Admin"),
		New("IPC$", TypeIPC|FlagSpecial, "Remote IPC"),
		New("Données", TypeDiskTree, ""),
		New("𝄞music", TypeDiskTree, "surrogate pair"),
	}
	got, err := UnmarshalNDR(MarshalNDR(records))
	require.NoError(t, err)
	if diff := cmp.Diff(records, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNDREmpty(t *testing.T) {
	b := MarshalNDR(nil)
	// level, switch, container ref, entries, null buffer, total, resume, status
	assert.Len(t, b, 8*4)
	got, err := UnmarshalNDR(b)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNDRFixedPartFieldOrder(t *testing.T) {
	b := MarshalNDR([]ShareRecord{New("a", TypeIPC|FlagSpecial, "b")})
	// 5 header words, then the conformant max count, then the fixed part.
	fixed := b[6*4:]
	assert.NotZero(t, binary.LittleEndian.Uint32(fixed[0:]), "name referent")
	assert.Equal(t, uint32(TypeIPC|FlagSpecial), binary.LittleEndian.Uint32(fixed[4:]))
	assert.NotZero(t, binary.LittleEndian.Uint32(fixed[8:]), "remark referent")
}

func TestNDRNullReferents(t *testing.T) {
	var b []byte
	for _, v := range []uint32{1, 1, 0x20000, 1, 0x20004, 1, 0, uint32(TypeDiskTree), 0, 1, 0, 0} {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	got, err := UnmarshalNDR(b)
	require.NoError(t, err)
	assert.Equal(t, []ShareRecord{{Type: TypeDiskTree}}, got)
}

func TestNDRTruncated(t *testing.T) {
	b := MarshalNDR([]ShareRecord{New("share", TypeDiskTree, "remark")})
	for _, n := range []int{0, 3, 20, len(b) / 2, len(b) - 1} {
		_, err := UnmarshalNDR(b[:n])
		assert.ErrorIs(t, err, ErrShortBuffer, "length %d", n)
	}
}

func TestNDRServerStatus(t *testing.T) {
	b := MarshalNDR(nil)
	binary.LittleEndian.PutUint32(b[len(b)-4:], 5)
	_, err := UnmarshalNDR(b)
	assert.Error(t, err)
}
