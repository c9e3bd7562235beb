// Package spe reads and writes 1D spectra in the legacy spectroscopy file
// formats.
//
// The binary .spe container (also used for .err error spectra) is a pair of
// little-endian Fortran unformatted records: a 24-byte header record holding
// an 8-character name and the channel count, then one record of float32
// channel values. Text spectra hold one value per line. The Pasternak
// exports write a peak fragment in the two-row integer layout read by
// A.A. Pasternak's fitting programs.
package spe
