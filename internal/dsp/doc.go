// Package dsp provides the per-sample signal primitives the voice engine is
// built from: band-limited oscillators, an ADSR envelope, a Moog-style ladder
// lowpass, a modulated-delay chorus and a feedback-delay-network reverb.
//
// Every Process method is allocation free and runs in constant time, so the
// primitives are safe to call from an audio callback. None of them are safe
// for concurrent use.
package dsp
