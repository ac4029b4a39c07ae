package layout

import (
	"fmt"

	"fortio.org/safecast"

	"cbgen/internal/types"
)

// RegisterSize is the constant-buffer register width in bytes. Fields may not
// straddle a register boundary and arrays start on one.
const RegisterSize = 16

// AlignedStride rounds s up to the next register boundary.
func AlignedStride(s uint64) uint64 {
	return roundUp(s, RegisterSize)
}

// ArraySize is the constant-buffer size of n elements of s bytes: every
// element but the last is padded to a register.
func ArraySize(s, n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return (n-1)*AlignedStride(s) + s
}

func roundUp(v, a uint64) uint64 {
	if a <= 1 {
		return v
	}
	if r := v % a; r != 0 {
		return v + (a - r)
	}
	return v
}

// Measure returns the constant-buffer size and alignment of a field of type ft
// declared with arrayLen elements (0 for a plain field). refSize is the
// resolved total size of the referenced struct and is ignored otherwise.
func Measure(ft types.FieldType, arrayLen, refSize uint32) (size, align uint32, err error) {
	var total uint64
	switch ft.Kind {
	case types.KindBuiltin:
		row := uint64(ft.RowSize())
		switch {
		case ft.Shape == types.ShapeMatrix:
			rows := uint64(ft.Rows)
			if arrayLen > 0 {
				rows *= uint64(arrayLen)
			}
			total, align = ArraySize(row, rows), RegisterSize
		case arrayLen > 0:
			total, align = ArraySize(row, uint64(arrayLen)), RegisterSize
		default:
			total, align = row, elementAlign(ft.Scalar.Width())
		}
	case types.KindHandle:
		if arrayLen > 0 {
			total, align = ArraySize(uint64(ft.Size), uint64(arrayLen)), RegisterSize
		} else {
			total, align = uint64(ft.Size), 4
		}
	case types.KindStruct:
		align = RegisterSize
		if arrayLen > 0 {
			total = ArraySize(uint64(refSize), uint64(arrayLen))
		} else {
			total = uint64(refSize)
		}
	default:
		return 0, 0, fmt.Errorf("cannot measure %s type", ft.Kind)
	}
	size, err = safecast.Conv[uint32](total)
	if err != nil {
		return 0, 0, fmt.Errorf("field size %d overflows: %w", total, err)
	}
	return size, align, nil
}

// elementAlign maps a scalar width to the alignment Place honours. Only
// 8-byte and 2-byte elements carry their own alignment; everything else is
// placed by the straddle rule alone, so a float2 may follow a float at 4.
func elementAlign(width uint32) uint32 {
	switch width {
	case 8, 2:
		return width
	}
	return 4
}

// Place applies the placement rule for a field of the given size and
// alignment at cursor. It returns the field offset and the padding inserted
// before it, if any.
func Place(cursor, size, align uint32) (uint32, *types.Padding) {
	at := uint64(cursor)
	switch {
	case align >= RegisterSize:
		at = roundUp(at, RegisterSize)
	case align == 8:
		at = roundUp(at, 8)
	case align == 2:
		if at%2 != 0 {
			panic(fmt.Sprintf("layout: 2-byte field at odd offset %d", at))
		}
	}
	if align < RegisterSize && at%RegisterSize+uint64(size) > RegisterSize {
		at = roundUp(at, RegisterSize)
	}
	offset, err := safecast.Conv[uint32](at)
	if err != nil {
		panic(fmt.Sprintf("layout: offset %d overflows: %v", at, err))
	}
	if offset == cursor {
		return offset, nil
	}
	return offset, &types.Padding{Offset: cursor, Size: offset - cursor}
}
