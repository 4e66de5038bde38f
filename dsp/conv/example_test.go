package conv_test

import (
	"fmt"

	"github.com/AlbertSeismo/RFs-Seispy/dsp/conv"
	stime "github.com/AlbertSeismo/RFs-Seispy/stats/time"
)

func ExampleSame() {
	// A spike train convolved with a short wavelet keeps its timing.
	spikes := []float64{0, 1, 0, 0, -0.5, 0, 0}
	wavelet := []float64{1, 0.5, 0.25}

	out, _ := conv.Same(spikes, wavelet)
	fmt.Println(out)

	// Output:
	// [0 1 0.5 0.25 -0.5 -0.25 -0.125]
}

func ExampleFFT_Correlate() {
	ref := make([]float64, 32)
	ref[2] = 1

	late := make([]float64, 32)
	late[9] = 1

	f, _ := conv.NewFFT(32)
	corr, _ := f.Correlate(late, ref)

	fmt.Println("lag:", stime.ArgPeak(corr))

	// Output:
	// lag: 7
}
