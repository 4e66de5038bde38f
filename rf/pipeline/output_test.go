package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AlbertSeismo/RFs-Seispy/format/sac"
	"github.com/AlbertSeismo/RFs-Seispy/internal/testutil"
	"github.com/AlbertSeismo/RFs-Seispy/rf/decon"
	"github.com/AlbertSeismo/RFs-Seispy/seis"
)

func rfTrace(ch string, n int, scale float64) seis.Trace {
	return seis.Trace{
		Channel: ch,
		Delta:   0.125,
		Begin:   -10,
		Data:    testutil.Sine(0.5, 0.125, scale, n),
	}
}

func result(origin time.Time, baz float64, channels ...string) Result {
	rec := seis.Record{
		Event:   seis.Event{Origin: origin, Latitude: 10, Longitude: 20, Depth: 30, Magnitude: 6.5},
		Station: seis.Station{Network: "XX", Name: "SYN", Latitude: 40, Longitude: 100},
		Gcarc:   70,
		Baz:     baz,
		RayP:    6.5,
	}
	res := Result{Record: rec}
	for i, ch := range channels {
		res.RFs = append(res.RFs, decon.ReceiverFunction{
			Trace:    rfTrace(ch, 401, float64(i+1)),
			Phase:    "P",
			Method:   decon.MethodIterative,
			Gauss:    2,
			Shift:    10,
			Accepted: true,
		})
	}
	return res
}

func TestResultSACHeaders(t *testing.T) {
	origin := time.Date(2020, 2, 1, 3, 4, 5, 0, time.UTC)
	files := result(origin, 42.5, "R", "T").SAC()
	require.Len(t, files, 2)
	require.Equal(t, "2020.032.03.04.05_P_R.sac", files[0].Name)
	require.Equal(t, "2020.032.03.04.05_P_T.sac", files[1].Name)

	f := files[0].File
	require.Equal(t, -10.0, f.B)
	require.Equal(t, 0.125, f.Delta)
	require.Equal(t, "SYN", f.Station)
	require.Equal(t, "XX", f.Network)
	require.Equal(t, "R", f.Component)
	require.Equal(t, "2020.032.030405", f.Event)
	require.Equal(t, 42.5, f.Baz)
	require.Equal(t, 70.0, f.Gcarc)
	require.Equal(t, 6.5, f.User[0])
	require.Equal(t, 2.0, f.User[1])
	require.Equal(t, 3.0, f.User[2])

	_, az, _ := seis.Distaz(40, 100, 10, 20)
	require.InDelta(t, az, f.Az, 1e-12)

	only := result(origin, 42.5, "R").SAC()
	require.Len(t, only, 1)
	require.Equal(t, 1.0, only[0].File.User[2])
}

func TestWriteSACReadSamples(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rf")
	base := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	results := []Result{
		result(base, 42.5, "R", "T"),
		result(base.Add(time.Hour), 130, "R", "T"),
		result(base.Add(2*time.Hour), 250, "R"), // no transverse
	}

	n, err := WriteSAC(dir, results)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	f, err := sac.ReadFile(filepath.Join(dir, "2021.152.01.00.00_P_T.sac"))
	require.NoError(t, err)
	require.Equal(t, "T", f.Component)
	require.Equal(t, 130.0, f.Baz)
	require.Equal(t, "2021.152.010000", f.Event)

	samples, delta, shift, err := ReadSamples(dir)
	require.NoError(t, err)
	require.Equal(t, 0.125, delta)
	require.Equal(t, 10.0, shift)
	require.Len(t, samples, 2)
	require.Equal(t, 42.5, samples[0].Baz)
	require.Equal(t, 130.0, samples[1].Baz)
	testutil.RequireSliceNearlyEqual(t, samples[0].R, results[0].RFs[0].Trace.Data, 1e-6)
	testutil.RequireSliceNearlyEqual(t, samples[0].T, results[0].RFs[1].Trace.Data, 1e-6)

	mem, d, s, err := Samples(results)
	require.NoError(t, err)
	require.Len(t, mem, 2)
	require.Equal(t, 0.125, d)
	require.Equal(t, 10.0, s)
}

func TestNoPairs(t *testing.T) {
	_, _, _, err := Samples([]Result{result(time.Now(), 10, "R")})
	require.ErrorIs(t, err, ErrNoPairs)

	_, _, _, err = ReadSamples(t.TempDir())
	require.ErrorIs(t, err, ErrNoPairs)
}
