// Package sac reads and writes SAC binary time series.
//
// Only evenly sampled time series are supported. Files are written little
// endian; Read accepts either byte order and detects it from the header
// version.
package sac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
)

var (
	// ErrFormat indicates input that is not a SAC time series.
	ErrFormat = errors.New("sac: not an evenly sampled SAC v6 file")
	// ErrShort indicates fewer samples than the header declares.
	ErrShort = errors.New("sac: truncated data section")
)

const (
	nFloats    = 70
	nInts      = 40
	stringSize = 192
	headerSize = 4*nFloats + 4*nInts + stringSize

	version = 6
	iftime  = 1

	// Undefined is the SAC marker for unset numeric header fields.
	Undefined = -12345.0
	undefStr  = "-12345"
)

// float header indices
const (
	fDelta  = 0
	fDepMin = 1
	fDepMax = 2
	fB      = 5
	fE      = 6
	fO      = 7
	fStla   = 31
	fStlo   = 32
	fStel   = 33
	fEvla   = 35
	fEvlo   = 36
	fEvdp   = 38
	fMag    = 39
	fUser0  = 40
	fDist   = 50
	fAz     = 51
	fBaz    = 52
	fGcarc  = 53
	fDepMen = 56
)

// int header indices
const (
	iNzYear = 0
	iNzJDay = 1
	iNzHour = 2
	iNzMin  = 3
	iNzSec  = 4
	iNzMsec = 5
	iNvHdr  = 6
	iNpts   = 9
	iIfType = 15
	iLeven  = 35
)

// string header offsets within the string block
const (
	sKstnm  = 0
	sKevnm  = 8
	sKcmpnm = 160
	sKnetwk = 168
)

// File is a SAC time series with the header fields used for receiver
// functions. Numeric fields hold Undefined when unset.
type File struct {
	Delta float64
	B     float64 // time of the first sample relative to Origin
	O     float64 // origin offset

	Origin time.Time // reference time; zero when undefined

	Station   string
	Network   string
	Component string
	Event     string // kevnm, at most 16 characters

	Stla, Stlo, Stel float64
	Evla, Evlo, Evdp float64
	Mag              float64
	Dist, Az, Baz    float64
	Gcarc            float64
	User             [10]float64

	Data []float64
}

// New returns a file with every optional numeric field undefined.
func New(delta, b float64, data []float64) *File {
	f := &File{Delta: delta, B: b, O: Undefined, Data: data}
	for _, p := range []*float64{&f.Stla, &f.Stlo, &f.Stel, &f.Evla, &f.Evlo, &f.Evdp, &f.Mag, &f.Dist, &f.Az, &f.Baz, &f.Gcarc} {
		*p = Undefined
	}
	for i := range f.User {
		f.User[i] = Undefined
	}
	return f
}

// E returns the time of the last sample.
func (f *File) E() float64 {
	if len(f.Data) == 0 {
		return f.B
	}
	return f.B + float64(len(f.Data)-1)*f.Delta
}

// Write encodes f little endian.
func Write(w io.Writer, f *File) error {
	fl := make([]float32, nFloats)
	for i := range fl {
		fl[i] = Undefined
	}
	in := make([]int32, nInts)
	for i := range in {
		in[i] = Undefined
	}

	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, v := range f.Data {
		lo, hi, sum = min(lo, v), max(hi, v), sum+v
	}
	if len(f.Data) > 0 {
		fl[fDepMin], fl[fDepMax], fl[fDepMen] = float32(lo), float32(hi), float32(sum/float64(len(f.Data)))
	}

	fl[fDelta] = float32(f.Delta)
	fl[fB] = float32(f.B)
	fl[fE] = float32(f.E())
	fl[fO] = float32(f.O)
	fl[fStla], fl[fStlo], fl[fStel] = float32(f.Stla), float32(f.Stlo), float32(f.Stel)
	fl[fEvla], fl[fEvlo], fl[fEvdp] = float32(f.Evla), float32(f.Evlo), float32(f.Evdp)
	fl[fMag] = float32(f.Mag)
	fl[fDist], fl[fAz], fl[fBaz], fl[fGcarc] = float32(f.Dist), float32(f.Az), float32(f.Baz), float32(f.Gcarc)
	for i, u := range f.User {
		fl[fUser0+i] = float32(u)
	}

	if !f.Origin.IsZero() {
		t := f.Origin.UTC()
		in[iNzYear] = int32(t.Year())
		in[iNzJDay] = int32(t.YearDay())
		in[iNzHour] = int32(t.Hour())
		in[iNzMin] = int32(t.Minute())
		in[iNzSec] = int32(t.Second())
		in[iNzMsec] = int32(t.Nanosecond() / int(time.Millisecond))
	}
	in[iNvHdr] = version
	in[iNpts] = int32(len(f.Data))
	in[iIfType] = iftime
	in[iLeven] = 1

	str := bytes.Repeat([]byte(" "), stringSize)
	for off := 0; off < stringSize; off += 8 {
		if off == sKevnm+8 {
			continue
		}
		copy(str[off:], undefStr)
	}
	putString(str, sKstnm, 8, f.Station)
	putString(str, sKevnm, 16, f.Event)
	putString(str, sKcmpnm, 8, f.Component)
	putString(str, sKnetwk, 8, f.Network)

	data := make([]float32, len(f.Data))
	for i, v := range f.Data {
		data[i] = float32(v)
	}

	for _, part := range []any{fl, in, str, data} {
		if err := binary.Write(w, binary.LittleEndian, part); err != nil {
			return fmt.Errorf("sac: write: %w", err)
		}
	}
	return nil
}

func putString(b []byte, off, size int, s string) {
	if s == "" {
		return
	}
	field := b[off : off+size]
	for i := range field {
		field[i] = ' '
	}
	copy(field, s)
}

func getString(b []byte, off, size int) string {
	s := strings.TrimRight(string(b[off:off+size]), " \x00")
	if s == undefStr {
		return ""
	}
	return s
}

// Read decodes a SAC file in either byte order.
func Read(r io.Reader) (*File, error) {
	head := make([]byte, headerSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}

	var order binary.ByteOrder = binary.LittleEndian
	ints := head[4*nFloats:]
	if int32(order.Uint32(ints[4*iNvHdr:])) != version {
		order = binary.BigEndian
		if int32(order.Uint32(ints[4*iNvHdr:])) != version {
			return nil, fmt.Errorf("%w: unknown header version", ErrFormat)
		}
	}

	fl := func(i int) float64 {
		return float64(math.Float32frombits(order.Uint32(head[4*i:])))
	}
	in := func(i int) int {
		return int(int32(order.Uint32(ints[4*i:])))
	}

	if in(iLeven) != 1 || in(iIfType) != iftime {
		return nil, fmt.Errorf("%w: leven %d iftype %d", ErrFormat, in(iLeven), in(iIfType))
	}
	npts := in(iNpts)
	if npts < 0 {
		return nil, fmt.Errorf("%w: npts %d", ErrFormat, npts)
	}

	f := &File{
		Delta: fl(fDelta),
		B:     fl(fB),
		O:     fl(fO),
		Stla:  fl(fStla),
		Stlo:  fl(fStlo),
		Stel:  fl(fStel),
		Evla:  fl(fEvla),
		Evlo:  fl(fEvlo),
		Evdp:  fl(fEvdp),
		Mag:   fl(fMag),
		Dist:  fl(fDist),
		Az:    fl(fAz),
		Baz:   fl(fBaz),
		Gcarc: fl(fGcarc),
	}
	for i := range f.User {
		f.User[i] = fl(fUser0 + i)
	}
	if y := in(iNzYear); y != Undefined {
		f.Origin = time.Date(y, 1, 1, in(iNzHour), in(iNzMin), in(iNzSec), in(iNzMsec)*int(time.Millisecond), time.UTC).
			AddDate(0, 0, in(iNzJDay)-1)
	}

	str := head[4*(nFloats+nInts):]
	f.Station = getString(str, sKstnm, 8)
	f.Event = getString(str, sKevnm, 16)
	f.Component = getString(str, sKcmpnm, 8)
	f.Network = getString(str, sKnetwk, 8)

	raw := make([]float32, npts)
	if err := binary.Read(r, order, raw); err != nil {
		return nil, fmt.Errorf("%w: %d samples: %v", ErrShort, npts, err)
	}
	f.Data = make([]float64, npts)
	for i, v := range raw {
		f.Data[i] = float64(v)
	}
	return f, nil
}

// ReadFile reads the named SAC file.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sac: %w", err)
	}
	defer fh.Close()
	f, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// WriteFile writes f to the named path.
func WriteFile(path string, f *File) error {
	var buf bytes.Buffer
	if err := Write(&buf, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("sac: %w", err)
	}
	return nil
}
