// Package services defines the error taxonomy shared by every external
// collaborator (catalog clients, the text generator, the speech
// synthesizer) and the context plumbing used to correlate their calls.
//
// Errors are tagged with sentinel markers so orchestrators can distinguish
// caller mistakes from timeouts from definite upstream failures without
// parsing strings. Every wrapped error carries a component and operation so
// the surfaced message names the exact failing call.
package services
