package input

// bitmap is a kernel capability bitmask as returned by EVIOCGBIT
type bitmap []byte

func newBitmap(maxBit uint16) bitmap {
	return make(bitmap, int(maxBit)/8+1)
}

func (b bitmap) has(bit uint16) bool {
	i := int(bit) / 8
	if i >= len(b) {
		return false
	}
	return b[i]&(1<<(bit%8)) != 0
}

func (b bitmap) set(bit uint16) {
	i := int(bit) / 8
	if i < len(b) {
		b[i] |= 1 << (bit % 8)
	}
}
