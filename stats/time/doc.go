// Package time provides time-domain statistics for seismic traces:
// means and trends, energies, peak picking and signal-to-noise ratios.
//
// All functions treat an empty slice as a zero signal and never panic on it.
package time
