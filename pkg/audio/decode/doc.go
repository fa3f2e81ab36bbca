// ABOUTME: Audio decoding package for memory clips
// ABOUTME: Provides Decoder interface and MP3, Opus, FLAC and WAV implementations
// Package decode turns recorded memory clips into 16-bit PCM.
//
// Clips are short, so every decoder renders the whole file into memory and
// returns a Clip, which is an io.ReadSeeker over interleaved little-endian
// samples. Engines that need a fixed output format call Clip.Convert.
//
// Supported formats:
//   - MP3: via github.com/hajimehoshi/go-mp3
//   - Opus (Ogg): via gopkg.in/hraban/opus.v2
//   - FLAC: via github.com/mewkiz/flac
//   - WAV: 8, 16 and 24-bit PCM
//
// Example:
//
//	clip, err := decode.Open("/recordings/grandpa-fishing.mp3")
//	clip = clip.Convert(44100, 2)
//	fmt.Println(clip.DurationMillis())
package decode
