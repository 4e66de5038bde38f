// Package ani estimates single-layer anisotropy from receiver functions.
//
// Radial and transverse receiver functions of one station are averaged in
// back-azimuth bins (Stack). For every (fast axis, delay time) pair of a
// Grid, an Estimator measures three energies over a window after zero lag:
//
//   - radial move-out: the peak of the stacked radial traces after shifting
//     each bin by delay/2 * cos(2(fast-baz));
//   - radial coherence: (Σx)² - Σx² over the bins of radial traces that are
//     split into fast and slow components, aligned and rotated back;
//   - transverse energy of the same corrected traces.
//
// Each surface is normalized to its own maximum. JointStack combines them as
// exp(wR ln Er + wCC ln Ecc - wTC ln Etc), so transverse energy counts
// against a candidate. The best-fit pairs are all grid points at the joint
// maximum.
package ani
