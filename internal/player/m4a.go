package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

const (
	alacFrameSize = 4096
	int16Scale    = 32768.0
	int24Scale    = 8388608.0
)

var errUnknownCodec = errors.New("unsupported codec in MP4 container")

// m4aStream decodes the samples of an MP4 container one packet at a time
// with faad2 (AAC) or alac (Apple Lossless).
type m4aStream struct {
	container *m4a.Reader
	closer    io.Closer
	codec     m4a.CodecType
	aac       *faad2.Decoder
	alac      *alac.Alac

	channels   int
	sampleSize int
	length     int
	next       int // index of the next container sample
	err        error

	pending [][2]float64
	offset  int
}

// decodeM4A opens an MP4 audio file. Files whose sample table go-m4a cannot
// read are handed to faad2's own MP4 reader, which covers AAC only.
func decodeM4A(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	container, err := m4a.Open(rc)
	if err != nil {
		if _, serr := rc.Seek(0, io.SeekStart); serr != nil {
			return nil, beep.Format{}, err
		}
		s, format, aerr := decodeAACReader(rc)
		if aerr != nil {
			return nil, beep.Format{}, fmt.Errorf("%w (aac fallback: %w)", err, aerr)
		}
		return s, format, nil
	}

	sampleRate := container.SampleRate()
	s := &m4aStream{
		container:  container,
		closer:     rc,
		codec:      container.Codec(),
		channels:   int(container.Channels()),
		sampleSize: int(container.SampleSize()),
		length:     int(container.Duration().Seconds() * float64(sampleRate)),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}

	switch s.codec {
	case m4a.CodecAAC:
		dec, err := faad2.NewDecoder(context.Background())
		if err != nil {
			return nil, beep.Format{}, err
		}
		if err := dec.Init(context.Background(), container.CodecConfig()); err != nil {
			dec.Close(context.Background())
			return nil, beep.Format{}, err
		}
		s.aac = dec
	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  int(sampleRate),
			SampleSize:  s.sampleSize,
			NumChannels: s.channels,
			FrameSize:   alacFrameSize,
		})
		if err != nil {
			return nil, beep.Format{}, err
		}
		s.alac = dec
		if s.sampleSize == 24 {
			format.Precision = 3
		}
	default:
		return nil, beep.Format{}, errUnknownCodec
	}

	return s, format, nil
}

func (s *m4aStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	for n < len(samples) {
		if s.offset < len(s.pending) {
			c := copy(samples[n:], s.pending[s.offset:])
			s.offset += c
			n += c
			continue
		}
		if s.next >= s.container.SampleCount() {
			return n, n > 0
		}
		if err := s.decodeNext(); err != nil {
			s.err = err
			return n, n > 0
		}
	}
	return n, true
}

// decodeNext decodes one container sample into pending.
func (s *m4aStream) decodeNext() error {
	data, err := s.container.ReadSample(s.next)
	if err != nil {
		return err
	}
	s.next++

	switch s.codec {
	case m4a.CodecAAC:
		pcm, err := s.aac.Decode(context.Background(), data)
		if err != nil {
			return err
		}
		s.pending = int16Frames(pcm, s.channels)
	case m4a.CodecALAC:
		raw := s.alac.Decode(data)
		if s.sampleSize == 24 {
			s.pending = pcm24Frames(raw, s.channels)
		} else {
			s.pending = pcm16Frames(raw, s.channels)
		}
	default:
		return errUnknownCodec
	}
	s.offset = 0
	return nil
}

func (s *m4aStream) Err() error { return s.err }

func (s *m4aStream) Len() int { return s.length }

func (s *m4aStream) Position() int {
	pos := s.container.SampleTime(s.next)
	n := int(pos.Seconds()*float64(s.container.SampleRate())) - (len(s.pending) - s.offset)
	return max(n, 0)
}

func (s *m4aStream) Seek(p int) error {
	p = min(max(p, 0), s.length)
	pos := time.Duration(float64(p) / float64(s.container.SampleRate()) * float64(time.Second))

	s.next = s.container.SeekToTime(pos)
	s.pending = nil
	s.offset = 0
	s.err = nil
	return nil
}

func (s *m4aStream) Close() error {
	if s.aac != nil {
		s.aac.Close(context.Background())
	}
	return s.closer.Close()
}

// aacStream plays AAC through faad2's own MP4 reader.
type aacStream struct {
	reader   *faad2.M4AReader
	closer   io.Closer
	channels int
	length   int
	buf      []int16
	err      error
}

func decodeAACReader(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	reader, err := faad2.OpenM4A(context.Background(), rc)
	if err != nil {
		return nil, beep.Format{}, err
	}

	sampleRate := reader.SampleRate()
	s := &aacStream{
		reader:   reader,
		closer:   rc,
		channels: int(reader.Channels()),
		length:   int(reader.Duration().Seconds() * float64(sampleRate)),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	return s, format, nil
}

func (s *aacStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil || s.channels <= 0 {
		return 0, false
	}

	want := len(samples) * s.channels
	if cap(s.buf) < want {
		s.buf = make([]int16, want)
	}
	read, err := s.reader.Read(context.Background(), s.buf[:want])
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
		return 0, false
	}
	if read == 0 {
		return 0, false
	}

	frames := int16Frames(s.buf[:read], s.channels)
	return copy(samples, frames), true
}

func (s *aacStream) Err() error { return s.err }

func (s *aacStream) Len() int { return s.length }

func (s *aacStream) Position() int {
	return int(s.reader.Position().Seconds() * float64(s.reader.SampleRate()))
}

func (s *aacStream) Seek(p int) error {
	p = min(max(p, 0), s.length)
	pos := time.Duration(float64(p) / float64(s.reader.SampleRate()) * float64(time.Second))
	if err := s.reader.Seek(pos); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *aacStream) Close() error {
	if err := s.reader.Close(context.Background()); err != nil {
		_ = s.closer.Close()
		return err
	}
	return s.closer.Close()
}

// int16Frames converts interleaved 16-bit PCM to stereo frames. Mono is
// copied to both channels; channels past the second are dropped.
func int16Frames(pcm []int16, channels int) [][2]float64 {
	if channels <= 0 {
		return nil
	}
	frames := make([][2]float64, len(pcm)/channels)
	for i := range frames {
		left := float64(pcm[i*channels]) / int16Scale
		right := left
		if channels > 1 {
			right = float64(pcm[i*channels+1]) / int16Scale
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}

// pcm16Frames converts little-endian 16-bit PCM bytes to stereo frames.
func pcm16Frames(data []byte, channels int) [][2]float64 {
	if channels <= 0 {
		return nil
	}
	stride := 2 * channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		b := data[i*stride:]
		left := float64(int16(uint16(b[0])|uint16(b[1])<<8)) / int16Scale //nolint:gosec // pcm sample
		right := left
		if channels > 1 {
			right = float64(int16(uint16(b[2])|uint16(b[3])<<8)) / int16Scale //nolint:gosec // pcm sample
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}

// pcm24Frames converts little-endian 24-bit PCM bytes to stereo frames.
func pcm24Frames(data []byte, channels int) [][2]float64 {
	if channels <= 0 {
		return nil
	}
	stride := 3 * channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		b := data[i*stride:]
		left := float64(int24(b)) / int24Scale
		right := left
		if channels > 1 {
			right = float64(int24(b[3:])) / int24Scale
		}
		frames[i] = [2]float64{left, right}
	}
	return frames
}

func int24(b []byte) int32 {
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&0x800000 != 0 {
		v |= ^0xFFFFFF
	}
	return v
}
