package permissions

import (
	"errors"
	"strconv"
)

// ErrImmutable is returned by any mutating operation on a frozen
// Bitfield. A frozen bitfield is handed out wherever callers receive
// "the current permissions of X", so a caller can never corrupt cached
// state through a shared reference.
var ErrImmutable = errors.New("permissions: bitfield is frozen")

// Bitfield is a named capability set backed by a single uint64.
type Bitfield struct {
	bits   uint64
	frozen bool
}

// New returns a mutable Bitfield holding the given bits.
func New(bits uint64) *Bitfield {
	return &Bitfield{bits: bits}
}

// Bits returns the raw bit pattern.
func (b *Bitfield) Bits() uint64 { return b.bits }

// Has reports whether every bit in p is set.
func (b *Bitfield) Has(p uint64) bool { return b.bits&p == p }

// Any reports whether at least one bit in p is set.
func (b *Bitfield) Any(p uint64) bool { return b.bits&p != 0 }

// Set turns on the bits in p.
func (b *Bitfield) Set(p uint64) error {
	if b.frozen {
		return ErrImmutable
	}
	b.bits |= p
	return nil
}

// Unset turns off the bits in p.
func (b *Bitfield) Unset(p uint64) error {
	if b.frozen {
		return ErrImmutable
	}
	b.bits &^= p
	return nil
}

// Toggle flips the bits in p.
func (b *Bitfield) Toggle(p uint64) error {
	if b.frozen {
		return ErrImmutable
	}
	b.bits ^= p
	return nil
}

// Frozen reports whether the bitfield rejects mutation.
func (b *Bitfield) Frozen() bool { return b.frozen }

// Freeze returns a read-only copy of the bitfield. The receiver is left
// untouched; freezing an already-frozen bitfield returns the receiver.
func (b *Bitfield) Freeze() *Bitfield {
	if b.frozen {
		return b
	}
	return &Bitfield{bits: b.bits, frozen: true}
}

// String renders the bit pattern as a decimal string, the wire form
// used for permission values.
func (b *Bitfield) String() string {
	return strconv.FormatUint(b.bits, 10)
}
