// Package mseed reads miniSEED waveform data into seis traces.
//
// Records are decoded with the GeoNet seis/ms decoder and merged per
// channel in start-time order. Records that do not continue the previous
// one within half a sample are reported as a gap.
package mseed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/GeoNet/kit/seis/ms"

	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

var (
	// ErrGap indicates records of one channel that are not contiguous.
	ErrGap = errors.New("mseed: gap or overlap between records")
	// ErrRateChange indicates records of one channel with different rates.
	ErrRateChange = errors.New("mseed: sample rate changes within channel")
	// ErrNoData indicates input without any waveform records.
	ErrNoData = errors.New("mseed: no waveform records")
)

// minRecordSize is the smallest record length accepted when blockette 1000
// is missing.
const minRecordSize = 512

type block struct {
	start time.Time
	rate  float64
	data  []float64
}

// Read decodes every record in r and returns one trace per channel code
// (e.g. "BHZ"). Trace Begin is the first sample time in seconds after ref.
func Read(r io.Reader, ref time.Time) (map[string]seis.Trace, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("mseed: read: %w", err)
	}

	blocks := make(map[string][]block)
	for off := 0; off < len(buf); {
		rec, err := ms.NewRecord(buf[off:])
		if err != nil {
			return nil, fmt.Errorf("mseed: record at byte %d: %w", off, err)
		}
		size := rec.BlockSize()
		if size <= 0 {
			size = minRecordSize
		}
		if off+size > len(buf) {
			return nil, fmt.Errorf("mseed: record at byte %d: %d bytes declared, %d left", off, size, len(buf)-off)
		}
		// Decode again on the exact record so the sample decoder cannot read
		// into the following record.
		if rec, err = ms.NewRecord(buf[off : off+size]); err != nil {
			return nil, fmt.Errorf("mseed: record at byte %d: %w", off, err)
		}
		off += size

		if rec.SampleCount() == 0 || rec.SampleRate() <= 0 {
			continue
		}
		samples, err := rec.Float64s()
		if err != nil {
			return nil, fmt.Errorf("mseed: %s: %w", rec.SrcName(false), err)
		}
		ch := rec.Channel()
		blocks[ch] = append(blocks[ch], block{start: rec.StartTime(), rate: rec.SampleRate(), data: samples})
	}
	if len(blocks) == 0 {
		return nil, ErrNoData
	}

	out := make(map[string]seis.Trace, len(blocks))
	for ch, bs := range blocks {
		tr, err := merge(ch, bs, ref)
		if err != nil {
			return nil, err
		}
		out[ch] = tr
	}
	return out, nil
}

// ReadFile is Read on the named file.
func ReadFile(path string, ref time.Time) (map[string]seis.Trace, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mseed: %w", err)
	}
	return Read(bytes.NewReader(b), ref)
}

func merge(ch string, bs []block, ref time.Time) (seis.Trace, error) {
	sort.SliceStable(bs, func(i, j int) bool { return bs[i].start.Before(bs[j].start) })

	rate := bs[0].rate
	delta := 1 / rate
	tr := seis.Trace{
		Channel: ch,
		Delta:   delta,
		Begin:   bs[0].start.Sub(ref).Seconds(),
	}
	for _, b := range bs {
		if b.rate != rate {
			return seis.Trace{}, fmt.Errorf("%w: %s %g vs %g Hz", ErrRateChange, ch, rate, b.rate)
		}
		want := tr.TimeAt(len(tr.Data))
		got := b.start.Sub(ref).Seconds()
		if math.Abs(got-want) > delta/2 {
			return seis.Trace{}, fmt.Errorf("%w: %s expected %.4fs, record starts %.4fs", ErrGap, ch, want, got)
		}
		tr.Data = append(tr.Data, b.data...)
	}
	return tr, nil
}
