// Package resample converts uniformly sampled traces to a new sampling
// interval.
//
// Decimation first applies a zero-phase Butterworth anti-alias lowpass below
// the new Nyquist frequency; the output samples are then read off the
// (filtered) input with 4-point cubic Hermite interpolation. The first output
// sample always coincides with the first input sample, so the trace start
// time is unchanged.
//
// Common workflows:
//   - ToInterval(x, dt, newDt)
//   - OutputLen(n, dt, newDt) to size buffers up front
package resample
