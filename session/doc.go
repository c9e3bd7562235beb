// Package session is a headless controller for an interactive gating
// workflow.
//
// A [Session] owns the loaded matrix, the ROI set and the last good gated
// and error spectra. Callers edit regions, trigger [Session.Refresh] (or
// let [Session.Run] do it periodically) and persist the result with
// [Session.Save]. Peak searches and fits run on the current spectra.
//
// All methods are safe for concurrent use.
package session
