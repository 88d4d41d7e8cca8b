package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf16"
)

// EncodeOptions controls how Encode lays out the file.
type EncodeOptions struct {
	// Compress wraps every variable in a zlib-compressed element.
	Compress bool
	// BigEndian writes the file in big-endian byte order.
	BigEndian bool
	// Description replaces the default header text.
	Description string
}

const defaultDescription = "MATLAB 5.0 MAT-file, written by longterm-cali"

// NewDouble returns a 1xN double row vector.
func NewDouble(name string, values ...float64) *Array {
	return &Array{
		Name:  name,
		Class: ClassDouble,
		Dims:  []int{1, len(values)},
		real:  append([]float64(nil), values...),
	}
}

// NewMatrix returns a rows x cols double matrix from column-major values.
func NewMatrix(name string, rows, cols int, colMajor []float64) *Array {
	if rows*cols != len(colMajor) {
		panic(fmt.Sprintf("matfile: %d values for a %dx%d matrix", len(colMajor), rows, cols))
	}

	return &Array{
		Name:  name,
		Class: ClassDouble,
		Dims:  []int{rows, cols},
		real:  append([]float64(nil), colMajor...),
	}
}

// NewChar returns a 1xN char array.
func NewChar(name, text string) *Array {
	chars := []rune(text)

	dims := []int{1, len(chars)}
	if len(chars) == 0 {
		dims = []int{0, 0}
	}

	return &Array{
		Name:  name,
		Class: ClassChar,
		Dims:  dims,
		chars: chars,
	}
}

// NewStruct returns a 1x1 struct whose fields are the given arrays, keyed by their names.
func NewStruct(name string, fields ...*Array) *Array {
	a := &Array{
		Name:  name,
		Class: ClassStruct,
		Dims:  []int{1, 1},
		elems: [][]*Array{make([]*Array, len(fields))},
	}

	for i, f := range fields {
		a.fields = append(a.fields, f.Name)
		a.elems[0][i] = f
	}

	return a
}

// NewCell returns a 1xN cell array.
func NewCell(name string, items ...*Array) *Array {
	dims := []int{1, len(items)}
	if len(items) == 0 {
		dims = []int{0, 0}
	}

	return &Array{
		Name:  name,
		Class: ClassCell,
		Dims:  dims,
		cells: append([]*Array(nil), items...),
	}
}

// Encode writes vars as a level-5 MAT file.
func Encode(w io.Writer, opts EncodeOptions, vars ...*Array) error {
	e := encoder{order: binary.ByteOrder(binary.LittleEndian)}
	if opts.BigEndian {
		e.order = binary.BigEndian
	}

	desc := opts.Description
	if desc == "" {
		desc = defaultDescription
	}

	header := bytes.Repeat([]byte{' '}, headerSize)
	copy(header[:headerTextSize], desc)

	for i := headerTextSize; i < headerTextSize+8; i++ {
		header[i] = 0
	}

	e.order.PutUint16(header[124:126], version5)

	if opts.BigEndian {
		copy(header[126:], "MI")
	} else {
		copy(header[126:], "IM")
	}

	var out bytes.Buffer

	out.Write(header)

	for _, v := range vars {
		body, err := e.matrix(v, v.Name)
		if err != nil {
			return err
		}

		if !opts.Compress {
			out.Write(body)

			continue
		}

		var z bytes.Buffer

		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(body); err != nil {
			return fmt.Errorf("compress %s: %w", v.Name, err)
		}

		if err := zw.Close(); err != nil {
			return fmt.Errorf("compress %s: %w", v.Name, err)
		}

		out.Write(e.tag(miCOMPRESSED, z.Len()))
		out.Write(z.Bytes())
	}

	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}

type encoder struct {
	order binary.ByteOrder
}

func (e encoder) tag(typ uint32, size int) []byte {
	b := make([]byte, tagSize)
	e.order.PutUint32(b[:4], typ)
	e.order.PutUint32(b[4:], uint32(size)) //nolint:gosec // Element sizes fit in 32 bits.

	return b
}

// element returns a padded data element; payloads up to 4 bytes use the small format.
func (e encoder) element(typ uint32, payload []byte) []byte {
	if len(payload) > 0 && len(payload) <= 4 {
		b := make([]byte, tagSize)
		e.order.PutUint32(b[:4], uint32(len(payload))<<16|typ) //nolint:gosec // At most 4.
		copy(b[4:], payload)

		return b
	}

	b := e.tag(typ, len(payload))
	b = append(b, payload...)

	return append(b, make([]byte, pad8(len(payload))-len(payload))...)
}

func (e encoder) matrix(a *Array, name string) ([]byte, error) {
	var body bytes.Buffer

	flags := uint32(a.Class)
	if a.Logical {
		flags |= flagLogical << 8
	}

	fb := make([]byte, 8)
	e.order.PutUint32(fb[:4], flags)
	body.Write(e.tag(miUINT32, 8))
	body.Write(fb)

	dims := make([]byte, 4*len(a.Dims))
	for i, d := range a.Dims {
		e.order.PutUint32(dims[4*i:], uint32(int32(d))) //nolint:gosec // Dimensions are small.
	}

	body.Write(e.element(miINT32, dims))
	body.Write(e.element(miINT8, []byte(name)))

	switch {
	case a.Class.IsNumeric():
		data := make([]byte, 8*len(a.real))
		for i, v := range a.real {
			e.order.PutUint64(data[8*i:], math.Float64bits(v))
		}

		body.Write(e.element(miDOUBLE, data))
	case a.Class == ClassChar:
		units := utf16.Encode(a.chars)

		data := make([]byte, 2*len(units))
		for i, u := range units {
			e.order.PutUint16(data[2*i:], u)
		}

		body.Write(e.element(miUINT16, data))
	case a.Class == ClassStruct:
		if err := e.structure(&body, a); err != nil {
			return nil, err
		}
	case a.Class == ClassCell:
		for _, c := range a.cells {
			sub, err := e.matrix(c, "")
			if err != nil {
				return nil, err
			}

			body.Write(sub)
		}
	default:
		return nil, fmt.Errorf("%w: cannot encode %s", ErrUnsupported, a.Class)
	}

	return append(e.tag(miMATRIX, body.Len()), body.Bytes()...), nil
}

func (e encoder) structure(body *bytes.Buffer, a *Array) error {
	width := 1
	for _, f := range a.fields {
		width = max(width, len(f)+1)
	}

	wb := make([]byte, 4)
	e.order.PutUint32(wb, uint32(width)) //nolint:gosec // Field names are short.
	body.Write(e.element(miINT32, wb))

	names := make([]byte, width*len(a.fields))
	for i, f := range a.fields {
		copy(names[i*width:], f)
	}

	body.Write(e.element(miINT8, names))

	for _, elem := range a.elems {
		for _, v := range elem {
			sub, err := e.matrix(v, "")
			if err != nil {
				return err
			}

			body.Write(sub)
		}
	}

	return nil
}
