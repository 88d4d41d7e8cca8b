package matfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func bundleVars() []*Array {
	return []*Array{
		NewDouble("figDPI", 150),
		NewDouble("LCTime", 737000.5, 737001.25, 737002),
		NewMatrix("flag_CH_NDChange", 2, 3, []float64{1, 0, 0, 1, 0, 0}),
		NewDouble("empty"),
		NewStruct("campaignInfo",
			NewChar("name", "PollyXT_DWD"),
			NewChar("location", "Hohenpeißenberg"),
			NewDouble("startTime", 736999.75),
		),
		NewCell("else_label", NewChar("", "laser service"), NewChar("", "")),
	}
}

// TestEncodeDecodeLayouts checks every byte-order and compression combination.
func TestEncodeDecodeLayouts(t *testing.T) {
	t.Parallel()

	for _, opts := range []EncodeOptions{
		{},
		{Compress: true},
		{BigEndian: true},
		{BigEndian: true, Compress: true},
	} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, opts, bundleVars()...))

		f, err := Decode(&buf)
		require.NoError(t, err, "%+v", opts)
		require.Len(t, f.Vars, 6)
		require.Contains(t, f.Header, "MATLAB 5.0 MAT-file")

		dpi, err := f.Var("figDPI").Scalar()
		require.NoError(t, err)
		require.InDelta(t, 150, dpi, 0)

		times, err := f.Var("LCTime").Float64s()
		require.NoError(t, err)
		require.Equal(t, []float64{737000.5, 737001.25, 737002}, times)

		nd := f.Var("flag_CH_NDChange")
		require.Equal(t, 2, nd.Rows())
		require.Equal(t, 3, nd.Cols())
		require.InDelta(t, 1, nd.At(0, 0), 0)
		require.InDelta(t, 1, nd.At(1, 1), 0)
		require.InDelta(t, 0, nd.At(0, 1), 0)

		require.True(t, f.Var("empty").IsEmpty())
		_, err = f.Var("empty").Scalar()
		require.ErrorIs(t, err, ErrEmpty)

		info := f.Var("campaignInfo")
		require.Equal(t, []string{"name", "location", "startTime"}, info.FieldNames())

		name, err := info.Field("name")
		require.NoError(t, err)
		s, err := name.String()
		require.NoError(t, err)
		require.Equal(t, "PollyXT_DWD", s)

		loc, err := info.Field("location")
		require.NoError(t, err)
		s, err = loc.String()
		require.NoError(t, err)
		require.Equal(t, "Hohenpeißenberg", s)

		_, err = info.Field("dataTime")
		require.ErrorIs(t, err, ErrNoField)

		cells, err := f.Var("else_label").Cells()
		require.NoError(t, err)
		require.Len(t, cells, 2)
		s, err = cells[0].String()
		require.NoError(t, err)
		require.Equal(t, "laser service", s)
		s, err = cells[1].String()
		require.NoError(t, err)
		require.Empty(t, s)

		require.Nil(t, f.Var("missing"))
	}
}

// TestAccessorsRejectWrongClass keeps numeric and text accessors apart.
func TestAccessorsRejectWrongClass(t *testing.T) {
	t.Parallel()

	_, err := NewChar("x", "abc").Float64s()
	require.ErrorIs(t, err, ErrWrongClass)

	_, err = NewDouble("x", 1).String()
	require.ErrorIs(t, err, ErrWrongClass)

	_, err = NewDouble("x", 1).Field("a")
	require.ErrorIs(t, err, ErrWrongClass)

	_, err = NewDouble("x", 1).Cells()
	require.ErrorIs(t, err, ErrWrongClass)

	var missing *Array
	require.Equal(t, 0, missing.Len())
	_, err = missing.Float64s()
	require.ErrorIs(t, err, ErrEmpty)
}

// rawMatrix builds a little-endian miMATRIX element by hand.
func rawMatrix(class Class, dims []int32, name string, data []byte, dataType uint32) []byte {
	le := binary.LittleEndian

	var body bytes.Buffer

	write := func(typ uint32, payload []byte) {
		tag := make([]byte, 8)
		le.PutUint32(tag, typ)
		le.PutUint32(tag[4:], uint32(len(payload)))
		body.Write(tag)
		body.Write(payload)
		body.Write(make([]byte, pad8(len(payload))-len(payload)))
	}

	flags := make([]byte, 8)
	le.PutUint32(flags, uint32(class))
	write(miUINT32, flags)

	db := make([]byte, 4*len(dims))
	for i, d := range dims {
		le.PutUint32(db[4*i:], uint32(d))
	}

	write(miINT32, db)
	write(miINT8, []byte(name))

	if data != nil {
		write(dataType, data)
	}

	tag := make([]byte, 8)
	le.PutUint32(tag, miMATRIX)
	le.PutUint32(tag[4:], uint32(body.Len()))

	return append(tag, body.Bytes()...)
}

func rawFile(elements ...[]byte) []byte {
	header := bytes.Repeat([]byte{' '}, headerSize)
	copy(header, "MATLAB 5.0 MAT-file, hand made")
	binary.LittleEndian.PutUint16(header[124:], version5)
	copy(header[126:], "IM")

	for _, el := range elements {
		header = append(header, el...)
	}

	return header
}

// TestDecodeNarrowStorageTypes covers doubles stored as smaller integer types.
func TestDecodeNarrowStorageTypes(t *testing.T) {
	t.Parallel()

	int16s := make([]byte, 6)
	binary.LittleEndian.PutUint16(int16s, uint16(0xFFFF)) // -1
	binary.LittleEndian.PutUint16(int16s[2:], 2)
	binary.LittleEndian.PutUint16(int16s[4:], 300)

	data := rawFile(
		rawMatrix(ClassDouble, []int32{1, 3}, "LC355Status", []byte{2, 0, 1}, miUINT8),
		rawMatrix(ClassDouble, []int32{3, 1}, "signed", int16s, miINT16),
	)

	f, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	status, err := f.Var("LC355Status").Float64s()
	require.NoError(t, err)
	require.Equal(t, []float64{2, 0, 1}, status)

	signed, err := f.Var("signed").Float64s()
	require.NoError(t, err)
	require.Equal(t, []float64{-1, 2, 300}, signed)
}

// TestDecodeRejectsBadInput covers header and framing failures.
func TestDecodeRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := Decode(bytes.NewReader([]byte("short")))
	require.ErrorIs(t, err, ErrNotMAT)

	bad := rawFile()
	copy(bad[126:], "XX")
	_, err = Decode(bytes.NewReader(bad))
	require.ErrorIs(t, err, ErrNotMAT)

	hdf := rawFile()
	copy(hdf, "MATLAB 7.3 MAT-file")
	_, err = Decode(bytes.NewReader(hdf))
	require.ErrorIs(t, err, ErrUnsupported)

	full := rawFile(rawMatrix(ClassDouble, []int32{1, 2}, "x", make([]byte, 16), miDOUBLE))
	_, err = Decode(bytes.NewReader(full[:len(full)-4]))
	require.ErrorIs(t, err, ErrTruncated)

	miscount := rawFile(rawMatrix(ClassDouble, []int32{1, 3}, "x", make([]byte, 16), miDOUBLE))
	_, err = Decode(bytes.NewReader(miscount))
	require.ErrorIs(t, err, ErrTruncated)

	sparse := rawFile(rawMatrix(ClassSparse, []int32{2, 2}, "s", nil, 0))
	_, err = Decode(bytes.NewReader(sparse))
	require.ErrorIs(t, err, ErrUnsupported)
}

// TestOpen reads from disk and reports missing files.
func TestOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bundle.mat")

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, EncodeOptions{Compress: true}, NewDouble("figDPI", 80)))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	f, err := Open(path)
	require.NoError(t, err)
	require.NotNil(t, f.Var("figDPI"))

	_, err = Open(filepath.Join(t.TempDir(), "nope.mat"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
