package hwio

// GetBit8 reports whether bit n of v is set.
func GetBit8(v uint8, n uint) bool { return v&(1<<n) != 0 }

// SetBit8 sets bit n of *v.
func SetBit8(v *uint8, n uint) { *v |= 1 << n }

// ClearBits8 clears the bits of *v that are set in mask.
func ClearBits8(v *uint8, mask uint8) { *v &^= mask }
