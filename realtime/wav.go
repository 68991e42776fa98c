package realtime

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/blue-context/oaikit/types"
)

// ReadPCM16WAV reads a 16-bit mono WAV file and returns its samples as
// little-endian PCM, the layout of the pcm16 audio format, together with
// the sample rate. The service expects 24 kHz input for pcm16; other rates
// are returned as they are.
func ReadPCM16WAV(r io.ReadSeeker) ([]byte, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, invalidArgument("not a WAV file")
	}
	if dec.BitDepth != 16 || dec.NumChans != 1 {
		return nil, 0, invalidArgument("WAV must be 16-bit mono, got %d-bit with %d channels", dec.BitDepth, dec.NumChans)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, invalidArgument("decode WAV: %v", err)
	}
	pcm := make([]byte, 2*len(buf.Data))
	for i, s := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(s)))
	}
	return pcm, int(dec.SampleRate), nil
}

// WritePCM16WAV writes little-endian 16-bit mono PCM, such as the decoded
// deltas of a pcm16 session, as a WAV file. A zero sample rate uses the
// pcm16 rate of 24 kHz.
func WritePCM16WAV(w io.WriteSeeker, pcm []byte, sampleRate int) error {
	if len(pcm)%2 != 0 {
		return invalidArgument("pcm16 audio has an odd length of %d bytes", len(pcm))
	}
	if sampleRate == 0 {
		sampleRate = types.RealtimeAudioPCM16.SampleRate()
	}
	if sampleRate < 0 {
		return invalidArgument("sample rate must be positive")
	}

	data := make([]int, len(pcm)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
		Data:           data,
	})
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write WAV: %w", err)
	}
	return nil
}
