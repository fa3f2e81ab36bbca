// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and sample conversion helpers shared by decoders and engines
// Package audio provides the PCM types shared by the decoders and playback engines.
//
// Memory clips are decoded to interleaved 16-bit little-endian PCM. Format
// carries the sample rate and channel count needed to turn byte offsets into
// playback positions:
//
//	format := audio.Format{Codec: "mp3", SampleRate: 44100, Channels: 2, BitDepth: 16}
//	pos := format.BytesToMillis(offset)
//	offset = format.MillisToBytes(15000)
package audio
