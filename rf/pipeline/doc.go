// Package pipeline runs the receiver-function stages over a batch of
// records.
//
// Stages run in this order:
//
//	preprocess  channel fixes, detrend, taper, band-pass
//	snr         mean signal-to-noise ratio of the three components
//	baz         fixed offset or ensemble back-azimuth search (barrier)
//	rotate      ENZ to RTZ or LQT
//	trim        resample to the target interval and cut around the arrival
//	decon       iterative or water-level deconvolution
//	qc          quality gate on the first receiver function
//
// Every stage except baz is a data-parallel map with a bounded number of
// workers. A record that fails a stage is dropped with an Outcome naming the
// stage and the cause; the batch carries on. A stage that leaves no records
// ends the run with ErrNoSurvivors and emits no receiver functions.
//
// Accepted results feed the anisotropy estimator through Samples and
// Anisotropy, or go to disk through WriteSAC.
package pipeline
