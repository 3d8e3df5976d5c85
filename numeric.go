package binvec

import "fmt"

// NumericType identifies the element representation of an input buffer.
type NumericType int

// Supported element representations. Only UInt8 is accepted by binary
// indexes; the others exist so callers can name what they hold.
const (
	UInt8 NumericType = iota
	Int8
	UInt16
	Int16
	Float16 // IEEE half precision, carried as uint16 bits
	Int32
	Float32
	Float64
)

func (t NumericType) String() string {
	switch t {
	case UInt8:
		return "uint8"
	case Int8:
		return "int8"
	case UInt16:
		return "uint16"
	case Int16:
		return "int16"
	case Float16:
		return "float16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("NumericType(%d)", int(t))
	}
}

// Numeric is the closed set of element types accepted by the typed entry
// points.
type Numeric interface {
	uint8 | int8 | uint16 | int16 | int32 | float32 | float64
}

// NumericTypeOf returns the tag of T. Half-precision buffers are uint16 and
// report UInt16; use CodesOf with Float16 to tag them explicitly.
func NumericTypeOf[T Numeric]() NumericType {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return UInt8
	case int8:
		return Int8
	case uint16:
		return UInt16
	case int16:
		return Int16
	case int32:
		return Int32
	case float32:
		return Float32
	default:
		return Float64
	}
}

// codesOf forwards byte buffers unchanged and rejects every other element type.
func codesOf[T Numeric](op string, x []T) ([]byte, error) {
	if b, ok := any(x).([]uint8); ok {
		return b, nil
	}
	return nil, newError(op, KindUnsupportedType, "binary indexes take uint8 codes, got %s", NumericTypeOf[T]())
}

// CodesOf returns buf as codes when tag denotes one-byte components.
// Any other tag fails with ErrUnsupportedType; a tag that does not describe
// buf fails with ErrInvalidArgument.
func CodesOf(buf any, tag NumericType) ([]byte, error) {
	const op = "codes_of"

	if tag != UInt8 {
		return nil, newError(op, KindUnsupportedType, "binary indexes take uint8 codes, got %s", tag)
	}
	b, ok := buf.([]byte)
	if !ok {
		return nil, newError(op, KindInvalidArgument, "buffer of type %T is not tagged %s", buf, tag)
	}
	return b, nil
}

// TrainTyped is Train over a typed buffer.
func TrainTyped[T Numeric](ix *Index, n int, x []T) error {
	b, err := codesOf("train", x)
	if err != nil {
		return err
	}
	return ix.Train(n, b)
}

// AddTyped is Add over a typed buffer.
func AddTyped[T Numeric](ix *Index, n int, x []T) error {
	b, err := codesOf("add", x)
	if err != nil {
		return err
	}
	return ix.Add(n, b)
}

// AddWithIDsTyped is AddWithIDs over a typed buffer.
func AddWithIDsTyped[T Numeric](ix *Index, n int, x []T, ids []int64) error {
	b, err := codesOf("add_with_ids", x)
	if err != nil {
		return err
	}
	return ix.AddWithIDs(n, b, ids)
}

// SearchTyped is Search over a typed buffer.
func SearchTyped[T Numeric](ix *Index, n int, x []T, k int, optFns ...func(*SearchOptions)) (*SearchResult, error) {
	b, err := codesOf("search", x)
	if err != nil {
		return nil, err
	}
	return ix.Search(n, b, k, optFns...)
}
