// Package bridge carries playback commands and events as newline-delimited
// JSON between the playback module and an external scripting layer.
package bridge

import (
	"math"
	"time"

	"github.com/llehouerou/starlight/internal/playback"
	"github.com/llehouerou/starlight/internal/player"
)

// Command names accepted from the scripting layer.
const (
	CmdLoad   = "load"
	CmdPlay   = "play"
	CmdPause  = "pause"
	CmdStop   = "stop"
	CmdSeek   = "seek"
	CmdVolume = "volume"
	CmdRate   = "rate"
	CmdStatus = "status"
)

// Message types written to the scripting layer.
const (
	TypeReply = "reply"
	TypeEvent = "event"
)

// ProtocolError is the wire kind for commands that could not be understood.
const ProtocolError = "ProtocolError"

// Command is one inbound request. Positions are in seconds.
type Command struct {
	ID       string   `json:"id,omitempty"`
	Command  string   `json:"command"`
	Source   string   `json:"source,omitempty"`
	Position *float64 `json:"position,omitempty"`
	Level    *float64 `json:"level,omitempty"`
	Rate     *float64 `json:"rate,omitempty"`
}

// WireError describes a failed command.
type WireError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Reply answers exactly one Command.
type Reply struct {
	Type   string     `json:"type"`
	ID     string     `json:"id,omitempty"`
	OK     bool       `json:"ok"`
	Error  *WireError `json:"error,omitempty"`
	Result any        `json:"result,omitempty"`
}

// SeekResult is the result of a seek command.
type SeekResult struct {
	Position float64 `json:"position"`
}

// VolumeResult is the result of a volume command.
type VolumeResult struct {
	Level float64 `json:"level"`
	Muted bool    `json:"muted"`
}

// RateResult is the result of a rate command.
type RateResult struct {
	Rate float64 `json:"rate"`
}

// StatusResult is the result of a status command.
type StatusResult struct {
	State    string    `json:"state"`
	Session  string    `json:"session,omitempty"`
	Source   string    `json:"source,omitempty"`
	Loading  bool      `json:"loading"`
	Position float64   `json:"position"`
	Duration float64   `json:"duration"`
	Volume   float64   `json:"volume"`
	Muted    bool      `json:"muted"`
	Rate     float64   `json:"rate"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Metadata is the track information attached to loaded events.
type Metadata struct {
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Year       int    `json:"year,omitempty"`
	Track      int    `json:"track,omitempty"`
	Format     string `json:"format,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`
}

// EventMessage is one outbound event. Only the fields of the named event are
// set.
type EventMessage struct {
	Type     string    `json:"type"`
	Event    string    `json:"event"`
	Session  string    `json:"session,omitempty"`
	Position *float64  `json:"position,omitempty"`
	Duration *float64  `json:"duration,omitempty"`
	Kind     string    `json:"kind,omitempty"`
	Message  string    `json:"message,omitempty"`
	Previous string    `json:"previous,omitempty"`
	Current  string    `json:"current,omitempty"`
	Source   string    `json:"source,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Level    *float64  `json:"level,omitempty"`
	Muted    *bool     `json:"muted,omitempty"`
	Rate     *float64  `json:"rate,omitempty"`
}

// EncodeEvent converts a module event to its wire form.
func EncodeEvent(e playback.Event) EventMessage {
	msg := EventMessage{Type: TypeEvent, Event: e.Name()}
	switch ev := e.(type) {
	case playback.Progress:
		msg.Session = ev.Session
		msg.Position = ptr(seconds(ev.Position))
		msg.Duration = ptr(seconds(ev.Duration))
	case playback.Finished:
		msg.Session = ev.Session
	case playback.ErrorEvent:
		msg.Session = ev.Session
		msg.Kind = ev.Kind.String()
		msg.Message = ev.Message
	case playback.StateChange:
		msg.Session = ev.Session
		msg.Previous = ev.Previous.String()
		msg.Current = ev.Current.String()
	case playback.Loaded:
		msg.Session = ev.Session
		msg.Source = ev.Source
		msg.Duration = ptr(seconds(ev.Duration))
		msg.Metadata = metadataOf(ev.Info)
	case playback.Seeked:
		msg.Session = ev.Session
		msg.Position = ptr(seconds(ev.Position))
	case playback.VolumeChange:
		msg.Level = ptr(ev.Level)
		msg.Muted = ptr(ev.Muted)
	case playback.RateChange:
		msg.Rate = ptr(ev.Rate)
	}
	return msg
}

func encodeStatus(st playback.Status) StatusResult {
	return StatusResult{
		State:    st.State.String(),
		Session:  st.Session,
		Source:   st.Source,
		Loading:  st.Loading,
		Position: seconds(st.Position),
		Duration: seconds(st.Duration),
		Volume:   st.Volume,
		Muted:    st.Muted,
		Rate:     st.Rate,
		Metadata: metadataOf(st.Info),
	}
}

func metadataOf(info *player.TrackInfo) *Metadata {
	if info == nil {
		return nil
	}
	return &Metadata{
		Title:      info.Title,
		Artist:     info.Artist,
		Album:      info.Album,
		Genre:      info.Genre,
		Year:       info.Year,
		Track:      info.Track,
		Format:     info.Format,
		SampleRate: info.SampleRate,
	}
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

// duration converts wire seconds, saturating instead of overflowing.
func duration(sec float64) time.Duration {
	switch {
	case math.IsNaN(sec):
		return 0
	case sec >= math.MaxInt64/float64(time.Second):
		return math.MaxInt64
	case sec <= math.MinInt64/float64(time.Second):
		return math.MinInt64
	}
	return time.Duration(sec * float64(time.Second))
}

func ptr[T any](v T) *T { return &v }
