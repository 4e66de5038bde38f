// Package conv provides convolution, correlation and spectral helpers used by
// the receiver-function deconvolution.
//
// Two families of routines are offered:
//
//   - Direct linear convolution: a simple O(N*M) time-domain kernel, used to
//     build synthetic seismograms and to check predictions in tests.
//   - FFT-based circular operations: a reusable FFT value wraps a
//     power-of-two plan and exposes forward/inverse real transforms and
//     circular cross-correlation. Iterative deconvolution correlates the
//     residual against the reference component many times with the same
//     length, so the plan is built once per trace pair.
//
// # Usage
//
//	f, err := conv.NewFFT(conv.NextPowerOf2(len(x)))
//	spec, err := f.Forward(x)
//	back, err := f.InverseReal(spec)
//
// Circular cross-correlation follows the ifft(X * conj(Y)) convention, so
// lag k > 0 is found at index k and negative lags wrap to the end.
//
// Shift rotates a slice in place like a circular roll; positive shifts move
// samples towards higher indices.
package conv
