package shareinfo

import (
	"fmt"
	"strings"
)

// ShareType is the shi1_type code of a share. The low two bits carry the base
// type; the high bits carry the special and temporary flags from lmshare.h.
type ShareType uint32

// Base share types.
const (
	TypeDiskTree   ShareType = 0x0 // Disk drive
	TypePrintQueue ShareType = 0x1 // Print queue
	TypeDevice     ShareType = 0x2 // Communication device
	TypeIPC        ShareType = 0x3 // Interprocess communication
)

// Share type flags.
const (
	FlagTemporary ShareType = 0x40000000 // Temporary share
	FlagSpecial   ShareType = 0x80000000 // Administrative share (IPC$, ADMIN$, C$, ...)
)

const baseTypeMask ShareType = 0x3

var baseTypeNames = map[ShareType]string{
	TypeDiskTree:   "DISKTREE",
	TypePrintQueue: "PRINTQ",
	TypeDevice:     "DEVICE",
	TypeIPC:        "IPC",
}

// Base returns the base share type with all flag bits cleared.
func (t ShareType) Base() ShareType {
	return t & baseTypeMask
}

// IsSpecial reports whether the share is an administrative share.
func (t ShareType) IsSpecial() bool {
	return t&FlagSpecial == FlagSpecial
}

// IsTemporary reports whether the share is temporary.
func (t ShareType) IsTemporary() bool {
	return t&FlagTemporary == FlagTemporary
}

// Flags returns the STYPE_* names of every bit set in t, base type first.
func (t ShareType) Flags() []string {
	flags := []string{"STYPE_" + baseTypeNames[t.Base()]}
	if t.IsSpecial() {
		flags = append(flags, "STYPE_SPECIAL")
	}
	if t.IsTemporary() {
		flags = append(flags, "STYPE_TEMPORARY")
	}
	return flags
}

// String renders the type as e.g. "DISKTREE|SPECIAL". Bits outside the known
// set are appended in hex.
func (t ShareType) String() string {
	parts := []string{baseTypeNames[t.Base()]}
	if t.IsSpecial() {
		parts = append(parts, "SPECIAL")
	}
	if t.IsTemporary() {
		parts = append(parts, "TEMPORARY")
	}
	if rest := t &^ (baseTypeMask | FlagSpecial | FlagTemporary); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseBaseType maps a user-facing name ("disk", "print", "device", "ipc",
// or the STYPE_ spellings) to its base type.
func ParseBaseType(s string) (ShareType, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "STYPE_")) {
	case "disk", "disktree":
		return TypeDiskTree, nil
	case "print", "printq":
		return TypePrintQueue, nil
	case "device":
		return TypeDevice, nil
	case "ipc":
		return TypeIPC, nil
	}
	return 0, fmt.Errorf("unknown share type %q", s)
}
