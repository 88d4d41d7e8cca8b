package matfile

import (
	"errors"
	"fmt"
	"strings"
)

// Class is the MATLAB array class stored in the array flags.
type Class uint8

// Array classes.
const (
	ClassCell   Class = 1
	ClassStruct Class = 2
	ClassObject Class = 3
	ClassChar   Class = 4
	ClassSparse Class = 5
	ClassDouble Class = 6
	ClassSingle Class = 7
	ClassInt8   Class = 8
	ClassUint8  Class = 9
	ClassInt16  Class = 10
	ClassUint16 Class = 11
	ClassInt32  Class = 12
	ClassUint32 Class = 13
	ClassInt64  Class = 14
	ClassUint64 Class = 15
)

var (
	// ErrWrongClass is returned when an accessor does not match the array class.
	ErrWrongClass = errors.New("wrong array class")
	// ErrNoField is returned when a struct has no field with the requested name.
	ErrNoField = errors.New("no such field")
	// ErrEmpty is returned when a scalar is read from an empty array.
	ErrEmpty = errors.New("empty array")
)

// IsNumeric reports whether c holds numbers (including logical arrays).
func (c Class) IsNumeric() bool {
	return c >= ClassDouble && c <= ClassUint64
}

// String returns the MATLAB class name.
func (c Class) String() string {
	switch c {
	case ClassCell:
		return "cell"
	case ClassStruct:
		return "struct"
	case ClassObject:
		return "object"
	case ClassChar:
		return "char"
	case ClassSparse:
		return "sparse"
	case ClassDouble:
		return "double"
	case ClassSingle:
		return "single"
	case ClassInt8:
		return "int8"
	case ClassUint8:
		return "uint8"
	case ClassInt16:
		return "int16"
	case ClassUint16:
		return "uint16"
	case ClassInt32:
		return "int32"
	case ClassUint32:
		return "uint32"
	case ClassInt64:
		return "int64"
	case ClassUint64:
		return "uint64"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Array is one decoded variable, struct field or cell.
// Data is stored column-major, as in the file.
type Array struct {
	// Name is the variable name; empty for fields and cells.
	Name string
	// Class is the MATLAB class.
	Class Class
	// Dims are the dimensions, at least two for anything read from a file.
	Dims []int
	// Logical is set for logical arrays (stored with an integer class).
	Logical bool

	real   []float64
	chars  []rune
	fields []string
	// elems holds one value per field for every struct element.
	elems [][]*Array
	cells []*Array
}

// Len returns the number of elements (the product of Dims).
func (a *Array) Len() int {
	if a == nil || len(a.Dims) == 0 {
		return 0
	}

	n := 1
	for _, d := range a.Dims {
		n *= d
	}

	return n
}

// IsEmpty reports whether the array has no elements.
func (a *Array) IsEmpty() bool {
	return a.Len() == 0
}

// Rows returns the first dimension.
func (a *Array) Rows() int {
	if a == nil || len(a.Dims) == 0 {
		return 0
	}

	return a.Dims[0]
}

// Cols returns the product of every dimension after the first.
func (a *Array) Cols() int {
	if a.Rows() == 0 {
		return 0
	}

	return a.Len() / a.Rows()
}

// Float64s returns a copy of the real part, flattened column-major.
// Row and column vectors therefore come back in their natural order.
func (a *Array) Float64s() ([]float64, error) {
	if a == nil {
		return nil, ErrEmpty
	}

	if !a.Class.IsNumeric() {
		return nil, fmt.Errorf("%w: want numeric, have %s", ErrWrongClass, a.Class)
	}

	out := make([]float64, len(a.real))
	copy(out, a.real)

	return out, nil
}

// Scalar returns the first element of a numeric array.
func (a *Array) Scalar() (float64, error) {
	values, err := a.Float64s()
	if err != nil {
		return 0, err
	}

	if len(values) == 0 {
		return 0, ErrEmpty
	}

	return values[0], nil
}

// At returns element (row, col) of a numeric matrix.
func (a *Array) At(row, col int) float64 {
	return a.real[col*a.Rows()+row]
}

// Strings returns the rows of a char matrix with trailing blanks removed.
func (a *Array) Strings() ([]string, error) {
	if a == nil {
		return nil, ErrEmpty
	}

	if a.Class != ClassChar {
		return nil, fmt.Errorf("%w: want char, have %s", ErrWrongClass, a.Class)
	}

	rows := a.Rows()
	if rows == 0 || len(a.chars) == 0 {
		return nil, nil
	}

	cols := len(a.chars) / rows
	out := make([]string, rows)

	for r := range rows {
		line := make([]rune, cols)
		for c := range cols {
			line[c] = a.chars[c*rows+r]
		}

		out[r] = strings.TrimRight(string(line), " \x00")
	}

	return out, nil
}

// String returns the text of a char array; multi-row arrays are joined by newlines.
func (a *Array) String() (string, error) {
	rows, err := a.Strings()
	if err != nil {
		return "", err
	}

	return strings.Join(rows, "\n"), nil
}

// FieldNames returns the struct field names in file order.
func (a *Array) FieldNames() []string {
	if a == nil {
		return nil
	}

	return append([]string(nil), a.fields...)
}

// Field returns field name of the first struct element.
func (a *Array) Field(name string) (*Array, error) {
	return a.FieldAt(0, name)
}

// FieldAt returns field name of struct element i.
func (a *Array) FieldAt(i int, name string) (*Array, error) {
	if a == nil {
		return nil, ErrEmpty
	}

	if a.Class != ClassStruct {
		return nil, fmt.Errorf("%w: want struct, have %s", ErrWrongClass, a.Class)
	}

	if i < 0 || i >= len(a.elems) {
		return nil, fmt.Errorf("struct element %d: %w", i, ErrEmpty)
	}

	for j, f := range a.fields {
		if f == name {
			return a.elems[i][j], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoField, name)
}

// Cells returns the cells of a cell array, column-major.
func (a *Array) Cells() ([]*Array, error) {
	if a == nil {
		return nil, ErrEmpty
	}

	if a.Class != ClassCell {
		return nil, fmt.Errorf("%w: want cell, have %s", ErrWrongClass, a.Class)
	}

	return append([]*Array(nil), a.cells...), nil
}

// File is a decoded MAT file.
type File struct {
	// Header is the descriptive text at the start of the file.
	Header string
	// Vars holds the top-level variables in file order.
	Vars []*Array
}

// Var returns the top-level variable called name, or nil.
func (f *File) Var(name string) *Array {
	for _, v := range f.Vars {
		if v.Name == name {
			return v
		}
	}

	return nil
}
