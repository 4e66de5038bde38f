// Package filter provides IIR filtering for seismic traces.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Sections are cascaded via
// [Chain] for higher-order designs. Butterworth low-pass, high-pass and
// band-pass cascades are designed with the bilinear transform.
//
// Seismic preprocessing wants filters that do not move phase arrivals, so
// [ZeroPhase] runs a cascade forward and then backward over the data,
// squaring the magnitude response and cancelling the phase.
package filter
