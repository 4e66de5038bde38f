// Package seis holds the data model shared by every processing stage:
// single-component traces, three-component event-station records and the
// event/station geometry attached to them.
//
// Records are values. Every stage consumes a Record and returns a new one
// (see Record.Clone and Record.MapTraces); no stage mutates the samples of
// its input, which lets the pipeline process records on parallel workers
// without locking.
//
// Times on a Record are seconds relative to the event origin time: a
// trace's Begin is the time of its first sample and Arrival is the
// predicted phase travel time.
package seis
