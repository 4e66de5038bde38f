// Package baz corrects event back azimuths.
//
// A fixed offset is added to every record with ApplyOffset. Without an
// offset, Search scans candidate shifts for each record on band-passed
// horizontals and reports the shift that minimises transverse energy in a
// window around the arrival. Correct then applies the mean of all defined
// per-record shifts to the whole ensemble, so one mis-oriented sensor is
// corrected by a single angle:
//
//	shifts := make([]baz.Shift, len(recs))
//	for i, r := range recs {
//		shifts[i], err = baz.Search(r, baz.DefaultSearch())
//	}
//	recs, mean, err := baz.Correct(recs, shifts)
package baz
