// Package decon removes the source signature from horizontal (or ray
// perpendicular) components by deconvolving the vertical (or ray parallel)
// component, producing receiver functions.
//
// Two methods are provided:
//
//   - Iterative time-domain deconvolution (matching pursuit). Each iteration
//     cross-correlates the residual with the Gaussian-filtered reference,
//     places one spike at the lag of the absolute correlation maximum and
//     subtracts its prediction. Iteration stops after ItMax spikes or when
//     the misfit improvement drops below MinDeltaErr percent. The
//     normalized residual energy after every iteration is kept as the
//     convergence history, which never increases.
//   - Water-level frequency-domain deconvolution. The reference power
//     spectrum is floored at WaterLevel times its maximum before the
//     spectral division.
//
// Both methods low-pass the result with the zero-phase Gaussian
//
//	G(f) = exp(-(pi*f/f0)^2)
//
// and rotate it by Shift seconds so that zero lag sits at sample
// round(Shift/dt). A unit spike therefore becomes a Gaussian of peak
// height roughly f0/sqrt(pi).
package decon
