package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"
)

// Data element types.
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16
	miUTF16      = 17
	miUTF32      = 18
)

const (
	headerSize     = 128
	headerTextSize = 116
	tagSize        = 8
	version5       = 0x0100

	flagComplex = 0x08
	flagLogical = 0x02
)

var (
	// ErrNotMAT is returned when the input does not start with a level-5 header.
	ErrNotMAT = errors.New("not a level-5 MAT file")
	// ErrTruncated is returned when an element runs past the end of its container.
	ErrTruncated = errors.New("truncated data element")
	// ErrUnsupported is returned for valid MAT content this package does not read.
	ErrUnsupported = errors.New("unsupported MAT content")
)

// Open decodes the MAT file at path.
func Open(path string) (*File, error) {
	fh, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return Decode(fh)
}

// Decode reads a whole MAT file from r.
func Decode(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	if len(data) < headerSize {
		return nil, ErrNotMAT
	}

	text := string(data[:headerTextSize])
	if strings.HasPrefix(text, "MATLAB 7.3") {
		return nil, fmt.Errorf("%w: HDF5-based v7.3 file", ErrUnsupported)
	}

	var order binary.ByteOrder

	switch string(data[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, ErrNotMAT
	}

	if v := order.Uint16(data[124:126]); v != version5 {
		return nil, fmt.Errorf("%w: version 0x%04x", ErrNotMAT, v)
	}

	d := decoder{order: order}

	vars, err := d.elements(data[headerSize:])
	if err != nil {
		return nil, err
	}

	return &File{
		Header: strings.TrimRight(text, " \x00"),
		Vars:   vars,
	}, nil
}

type decoder struct {
	order binary.ByteOrder
}

// element is one tagged data element.
type element struct {
	typ     uint32
	payload []byte
}

// next splits the leading element off buf.
func (d decoder) next(buf []byte) (element, []byte, error) {
	if len(buf) < tagSize {
		return element{}, nil, ErrTruncated
	}

	first := d.order.Uint32(buf[:4])

	// Small data element: size and type share the first word.
	if size := first >> 16; size != 0 {
		if size > 4 {
			return element{}, nil, fmt.Errorf("%w: small element of %d bytes", ErrTruncated, size)
		}

		return element{typ: first & 0xffff, payload: buf[4 : 4+size]}, buf[tagSize:], nil
	}

	size := d.order.Uint32(buf[4:8])
	if uint64(size) > uint64(len(buf)-tagSize) {
		return element{}, nil, fmt.Errorf("%w: type %d wants %d bytes, %d left", ErrTruncated, first, size, len(buf)-tagSize)
	}

	end := tagSize + int(size)
	el := element{typ: first, payload: buf[tagSize:end]}

	// Compressed elements are not padded.
	if first != miCOMPRESSED {
		end = tagSize + pad8(int(size))
	}

	if end > len(buf) {
		end = len(buf)
	}

	return el, buf[end:], nil
}

// elements decodes every top-level variable in buf.
func (d decoder) elements(buf []byte) ([]*Array, error) {
	var vars []*Array

	for len(buf) >= tagSize {
		el, rest, err := d.next(buf)
		if err != nil {
			return nil, err
		}

		buf = rest

		switch el.typ {
		case miCOMPRESSED:
			inflated, err := inflate(el.payload)
			if err != nil {
				return nil, err
			}

			inner, err := d.elements(inflated)
			if err != nil {
				return nil, err
			}

			vars = append(vars, inner...)
		case miMATRIX:
			a, err := d.matrix(el.payload)
			if err != nil {
				return nil, err
			}

			vars = append(vars, a)
		}
	}

	return vars, nil
}

func inflate(payload []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}

	return out, nil
}

// matrix decodes the body of a miMATRIX element.
func (d decoder) matrix(buf []byte) (*Array, error) {
	// An empty miMATRIX stands for an empty array, typically an unset struct field.
	if len(buf) == 0 {
		return &Array{Class: ClassDouble, Dims: []int{0, 0}}, nil
	}

	flagsEl, buf, err := d.next(buf)
	if err != nil {
		return nil, fmt.Errorf("array flags: %w", err)
	}

	if flagsEl.typ != miUINT32 || len(flagsEl.payload) < 4 {
		return nil, fmt.Errorf("%w: bad array flags", ErrNotMAT)
	}

	word := d.order.Uint32(flagsEl.payload[:4])
	a := &Array{
		Class:   Class(word & 0xff),
		Logical: (word>>8)&flagLogical != 0,
	}

	dimsEl, buf, err := d.next(buf)
	if err != nil {
		return nil, fmt.Errorf("dimensions: %w", err)
	}

	dims, err := d.numbers(dimsEl)
	if err != nil {
		return nil, fmt.Errorf("dimensions: %w", err)
	}

	a.Dims = make([]int, len(dims))
	for i, v := range dims {
		a.Dims[i] = int(v)
	}

	nameEl, buf, err := d.next(buf)
	if err != nil {
		return nil, fmt.Errorf("array name: %w", err)
	}

	a.Name = string(nameEl.payload)

	switch {
	case a.Class.IsNumeric():
		err = d.numeric(a, buf)
	case a.Class == ClassChar:
		err = d.char(a, buf)
	case a.Class == ClassStruct:
		err = d.structure(a, buf)
	case a.Class == ClassCell:
		err = d.cell(a, buf)
	default:
		err = fmt.Errorf("%w: %s array", ErrUnsupported, a.Class)
	}

	if err != nil {
		if a.Name != "" {
			return nil, fmt.Errorf("%s: %w", a.Name, err)
		}

		return nil, err
	}

	return a, nil
}

func (d decoder) numeric(a *Array, buf []byte) error {
	if a.Len() == 0 && len(buf) < tagSize {
		return nil
	}

	realEl, _, err := d.next(buf)
	if err != nil {
		return fmt.Errorf("real part: %w", err)
	}

	values, err := d.numbers(realEl)
	if err != nil {
		return err
	}

	if len(values) != a.Len() {
		return fmt.Errorf("%w: %d values for dims %v", ErrTruncated, len(values), a.Dims)
	}

	// The imaginary part of complex arrays is dropped.
	a.real = values

	return nil
}

func (d decoder) char(a *Array, buf []byte) error {
	if len(buf) < tagSize {
		return nil
	}

	el, _, err := d.next(buf)
	if err != nil {
		return fmt.Errorf("char data: %w", err)
	}

	switch el.typ {
	case miUTF8:
		a.chars = []rune(string(el.payload))
	case miUINT16, miUTF16:
		units := make([]uint16, len(el.payload)/2)
		for i := range units {
			units[i] = d.order.Uint16(el.payload[2*i:])
		}

		a.chars = utf16.Decode(units)
	case miUINT8, miINT8:
		a.chars = make([]rune, len(el.payload))
		for i, b := range el.payload {
			a.chars[i] = rune(b)
		}
	case miUTF32:
		a.chars = make([]rune, len(el.payload)/4)
		for i := range a.chars {
			a.chars[i] = rune(d.order.Uint32(el.payload[4*i:]))
		}
	default:
		return fmt.Errorf("%w: char data of type %d", ErrUnsupported, el.typ)
	}

	return nil
}

func (d decoder) structure(a *Array, buf []byte) error {
	lenEl, buf, err := d.next(buf)
	if err != nil {
		return fmt.Errorf("field name length: %w", err)
	}

	lens, err := d.numbers(lenEl)
	if err != nil || len(lens) != 1 || lens[0] <= 0 {
		return fmt.Errorf("%w: bad field name length", ErrNotMAT)
	}

	width := int(lens[0])

	namesEl, buf, err := d.next(buf)
	if err != nil {
		return fmt.Errorf("field names: %w", err)
	}

	for i := 0; i+width <= len(namesEl.payload); i += width {
		raw := namesEl.payload[i : i+width]
		if n := bytes.IndexByte(raw, 0); n >= 0 {
			raw = raw[:n]
		}

		a.fields = append(a.fields, string(raw))
	}

	a.elems = make([][]*Array, a.Len())

	for i := range a.elems {
		a.elems[i] = make([]*Array, len(a.fields))

		for j, name := range a.fields {
			var el element

			el, buf, err = d.next(buf)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}

			if el.typ != miMATRIX {
				return fmt.Errorf("%w: field %s has element type %d", ErrNotMAT, name, el.typ)
			}

			v, err := d.matrix(el.payload)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}

			v.Name = name
			a.elems[i][j] = v
		}
	}

	return nil
}

func (d decoder) cell(a *Array, buf []byte) error {
	a.cells = make([]*Array, a.Len())

	for i := range a.cells {
		var (
			el  element
			err error
		)

		el, buf, err = d.next(buf)
		if err != nil {
			return fmt.Errorf("cell %d: %w", i, err)
		}

		if el.typ != miMATRIX {
			return fmt.Errorf("%w: cell %d has element type %d", ErrNotMAT, i, el.typ)
		}

		v, err := d.matrix(el.payload)
		if err != nil {
			return fmt.Errorf("cell %d: %w", i, err)
		}

		a.cells[i] = v
	}

	return nil
}

// numbers converts a numeric data element into float64 values.
//
//nolint:cyclop // One case per storage type.
func (d decoder) numbers(el element) ([]float64, error) {
	p := el.payload

	width := map[uint32]int{
		miINT8: 1, miUINT8: 1, miINT16: 2, miUINT16: 2,
		miINT32: 4, miUINT32: 4, miSINGLE: 4,
		miDOUBLE: 8, miINT64: 8, miUINT64: 8,
	}[el.typ]

	if width == 0 {
		return nil, fmt.Errorf("%w: numeric data of type %d", ErrUnsupported, el.typ)
	}

	if len(p)%width != 0 {
		return nil, fmt.Errorf("%w: %d bytes of %d-byte values", ErrTruncated, len(p), width)
	}

	out := make([]float64, len(p)/width)

	for i := range out {
		chunk := p[i*width:]

		switch el.typ {
		case miINT8:
			out[i] = float64(int8(chunk[0]))
		case miUINT8:
			out[i] = float64(chunk[0])
		case miINT16:
			out[i] = float64(int16(d.order.Uint16(chunk)))
		case miUINT16:
			out[i] = float64(d.order.Uint16(chunk))
		case miINT32:
			out[i] = float64(int32(d.order.Uint32(chunk)))
		case miUINT32:
			out[i] = float64(d.order.Uint32(chunk))
		case miSINGLE:
			out[i] = float64(math.Float32frombits(d.order.Uint32(chunk)))
		case miDOUBLE:
			out[i] = math.Float64frombits(d.order.Uint64(chunk))
		case miINT64:
			out[i] = float64(int64(d.order.Uint64(chunk)))
		case miUINT64:
			out[i] = float64(d.order.Uint64(chunk))
		}
	}

	return out, nil
}

func pad8(n int) int {
	return (n + 7) &^ 7
}
