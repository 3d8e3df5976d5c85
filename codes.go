package binvec

// Codes is a contiguous buffer of n codes, each CodeSize bytes long.
// Code i occupies bytes [i*CodeSize, (i+1)*CodeSize).
type Codes struct {
	Data     []byte
	CodeSize int
}

// NewCodes allocates a zeroed buffer for n codes.
func NewCodes(n, codeSize int) Codes {
	return Codes{Data: make([]byte, n*codeSize), CodeSize: codeSize}
}

// Len returns the number of codes in the buffer.
func (c Codes) Len() int {
	if c.CodeSize <= 0 {
		return 0
	}
	return len(c.Data) / c.CodeSize
}

// Code returns code i. The slice aliases the buffer.
func (c Codes) Code(i int) []byte {
	return c.Data[i*c.CodeSize : (i+1)*c.CodeSize : (i+1)*c.CodeSize]
}

// Append adds one code to the buffer.
func (c *Codes) Append(code []byte) {
	c.Data = append(c.Data, code[:c.CodeSize]...)
}

// checkBuffer validates that x holds at least n codes of codeSize bytes and
// returns exactly those bytes.
func checkBuffer(op string, n int, x []byte, codeSize int) ([]byte, error) {
	if n < 0 {
		return nil, newError(op, KindInvalidArgument, "negative count %d", n)
	}
	if n > 0 && x == nil {
		return nil, newError(op, KindInvalidArgument, "nil buffer for %d codes", n)
	}
	if len(x) < n*codeSize {
		return nil, newError(op, KindInvalidArgument, "buffer holds %d bytes, want %d codes of %d bytes", len(x), n, codeSize)
	}
	return x[:n*codeSize], nil
}
