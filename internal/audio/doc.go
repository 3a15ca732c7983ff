// Package audio orchestrates speech synthesis for summaries: upstream
// text-to-speech voices under a deadline, with a deterministic synthetic
// waveform as the always-available fallback.
package audio
