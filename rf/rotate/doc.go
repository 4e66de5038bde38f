// Package rotate converts three-component records between the geographic
// ENZ frame and the ray frames RTZ and LQT.
//
// Angles follow the usual seismological conventions: the back azimuth is
// measured clockwise from north at the station towards the event, and the
// incidence angle is measured from the vertical. Radial points away from
// the event (R = -E sin(baz) - N cos(baz)), so an upgoing P wave arriving
// from the north shows a negative N and a positive R first motion.
//
// For LQT the incidence angle may be searched: candidate angles are tried on
// a fixed step around an initial guess and the one that minimises energy
// on the component that should be empty for the phase (Q for P, L for S)
// in a window around the arrival wins.
package rotate
