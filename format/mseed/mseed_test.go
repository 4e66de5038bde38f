package mseed

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/GeoNet/kit/seis/ms"
)

// encode builds a 512-byte big-endian float64 record.
func encode(t *testing.T, ch string, start time.Time, rate int16, samples []float64) []byte {
	t.Helper()
	const size = 512
	const dataOffset = 64
	if dataOffset+8*len(samples) > size {
		t.Fatalf("%d samples do not fit", len(samples))
	}

	var h ms.RecordHeader
	h.SetSeqNumber(1)
	h.DataQualityIndicator = 'D'
	h.ReservedByte = ' '
	h.SetStation("TEST")
	h.SetLocation("")
	h.SetChannel(ch)
	h.SetNetwork("XX")
	h.SetStartTime(start)
	h.NumberOfSamples = uint16(len(samples))
	h.SampleRateFactor = rate
	h.SampleRateMultiplier = 1
	h.NumberOfBlockettesThatFollow = 1
	h.BeginningOfData = dataOffset
	h.FirstBlockette = ms.RecordHeaderSize

	buf := make([]byte, size)
	copy(buf, ms.EncodeRecordHeader(h))
	copy(buf[ms.RecordHeaderSize:], ms.EncodeBlocketteHeader(ms.BlocketteHeader{BlocketteType: 1000}))
	copy(buf[ms.RecordHeaderSize+ms.BlocketteHeaderSize:], ms.EncodeBlockette1000(ms.Blockette1000{
		Encoding:     uint8(ms.EncodingIEEEDouble),
		WordOrder:    uint8(ms.BigEndian),
		RecordLength: 9,
	}))
	for i, v := range samples {
		binary.BigEndian.PutUint64(buf[dataOffset+8*i:], math.Float64bits(v))
	}
	return buf
}

func ramp(from, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(from + i)
	}
	return out
}

func TestReadMergesRecords(t *testing.T) {
	origin := time.Date(2019, 5, 3, 4, 5, 6, 0, time.UTC)
	start := origin.Add(30 * time.Second)

	var buf bytes.Buffer
	// Out of order on purpose.
	buf.Write(encode(t, "BHZ", start.Add(2*time.Second), 20, ramp(40, 40)))
	buf.Write(encode(t, "BHZ", start, 20, ramp(0, 40)))
	buf.Write(encode(t, "BHE", start, 20, ramp(100, 10)))

	traces, err := Read(&buf, origin)
	if err != nil {
		t.Fatal(err)
	}
	z, ok := traces["BHZ"]
	if !ok || len(traces) != 2 {
		t.Fatalf("channels %v", traces)
	}
	if z.Delta != 0.05 || z.Begin != 30 || z.Len() != 80 {
		t.Fatalf("BHZ delta %g begin %g len %d", z.Delta, z.Begin, z.Len())
	}
	for i, v := range z.Data {
		if v != float64(i) {
			t.Fatalf("sample %d = %g", i, v)
		}
	}
	if e := traces["BHE"]; e.Len() != 10 || e.Data[0] != 100 {
		t.Fatalf("BHE %+v", e)
	}
}

func TestReadGap(t *testing.T) {
	origin := time.Date(2019, 5, 3, 4, 5, 6, 0, time.UTC)
	var buf bytes.Buffer
	buf.Write(encode(t, "BHN", origin, 20, ramp(0, 40)))
	buf.Write(encode(t, "BHN", origin.Add(3*time.Second), 20, ramp(40, 40)))
	if _, err := Read(&buf, origin); !errors.Is(err, ErrGap) {
		t.Fatalf("got %v", err)
	}
}

func TestReadRateChange(t *testing.T) {
	origin := time.Date(2019, 5, 3, 4, 5, 6, 0, time.UTC)
	var buf bytes.Buffer
	buf.Write(encode(t, "BHN", origin, 20, ramp(0, 40)))
	buf.Write(encode(t, "BHN", origin.Add(2*time.Second), 40, ramp(40, 40)))
	if _, err := Read(&buf, origin); !errors.Is(err, ErrRateChange) {
		t.Fatalf("got %v", err)
	}
}

func TestReadEmpty(t *testing.T) {
	if _, err := Read(bytes.NewReader(nil), time.Time{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("got %v", err)
	}
	if _, err := Read(bytes.NewReader([]byte("not a miniseed record at all")), time.Time{}); err == nil {
		t.Fatal("garbage accepted")
	}
}
