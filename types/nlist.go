package types

import "fmt"

// NType holds the n_type byte of an nlist entry: a stab value, or the
// union of N_PEXT/N_EXT with N_TYPE and (for non-stabs) N_STAB.
type NType uint8

const (
	N_STAB NType = 0xe0 // if any of these bits set, a symbolic debugging entry
	N_PEXT NType = 0x10 // private external symbol bit
	N_TYPE NType = 0x0e // mask for the type bits
	N_EXT  NType = 0x01 // external symbol bit, set for external symbols
)

const (
	N_UNDF NType = 0x0 // undefined, n_sect == NO_SECT
	N_ABS  NType = 0x2 // absolute, n_sect == NO_SECT
	N_SECT NType = 0xe // defined in section number n_sect
	N_PBUD NType = 0xc // prebound undefined (defined in a dylib)
	N_INDR NType = 0xa // indirect
)

// IsStab reports whether the entry is a symbolic debugging entry.
func (t NType) IsStab() bool { return t&N_STAB != 0 }

// IsExternal reports whether the N_EXT bit is set.
func (t NType) IsExternal() bool { return t&N_EXT != 0 }

// IsPrivateExternal reports whether the N_PEXT bit is set.
func (t NType) IsPrivateExternal() bool { return t&N_PEXT != 0 }

// Type masks out the N_TYPE field.
func (t NType) Type() NType { return t & N_TYPE }

// IsUndefinedSymbol reports whether the symbol is undefined (N_UNDF and not external-defined).
func (t NType) IsUndefinedSymbol() bool { return !t.IsStab() && t.Type() == N_UNDF }

func (t NType) String(sec string) string {
	if t.IsStab() {
		return fmt.Sprintf("stab(%#02x)", uint8(t))
	}
	switch t.Type() {
	case N_UNDF:
		return "undefined"
	case N_ABS:
		return "absolute"
	case N_SECT:
		if sec != "" {
			return sec
		}
		return "section"
	case N_PBUD:
		return "prebound"
	case N_INDR:
		return "indirect"
	default:
		return fmt.Sprintf("type(%#02x)", uint8(t.Type()))
	}
}

// NDescType holds the n_desc field of an nlist entry: reference and
// library-ordinal information plus assorted per-symbol flags.
type NDescType uint16

const (
	N_WEAK_REF    NDescType = 0x0040
	N_WEAK_DEF    NDescType = 0x0080
	N_SYMBOL_RESOLVER NDescType = 0x0100
	N_ARM_THUMB_DEF   NDescType = 0x0008
)

func (d NDescType) IsWeakReferenced() bool { return d&N_WEAK_REF != 0 }
func (d NDescType) IsWeakDefined() bool    { return d&N_WEAK_DEF != 0 }

func (d NDescType) String() string {
	return fmt.Sprintf("(weak_ref=%t,weak_def=%t)", d.IsWeakReferenced(), d.IsWeakDefined())
}

// An Nlist32 is a Mach-O 32-bit symbol table entry.
type Nlist32 struct {
	Name  uint32
	Type  NType
	Sect  uint8
	Desc  NDescType
	Value uint32
}

// An Nlist64 is a Mach-O 64-bit symbol table entry.
type Nlist64 struct {
	Name  uint32
	Type  NType
	Sect  uint8
	Desc  NDescType
	Value uint64
}
