// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts decoded clips between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	r := resample.New(22050, 44100, 1)
//	converted := r.Convert(samples)
package resample
