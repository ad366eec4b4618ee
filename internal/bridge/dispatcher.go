package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/llehouerou/starlight/internal/errmsg"
	"github.com/llehouerou/starlight/internal/playback"
)

// Controller is the command surface of the playback module.
type Controller interface {
	Load(ctx context.Context, locator string) error
	Play() error
	Pause() error
	Stop() error
	Seek(pos time.Duration) time.Duration
	SetVolume(level float64) float64
	SetRate(rate float64) float64
	Status() playback.Status
}

// Hub is a Controller that also publishes events.
type Hub interface {
	Controller
	Subscribe() *playback.Subscription
	Unsubscribe(sub *playback.Subscription)
}

var (
	errUnknownCommand = errors.New("unknown command")
	errMissingField   = errors.New("missing field")
)

// Dispatcher runs decoded commands against a Controller.
type Dispatcher struct {
	ctl Controller
	log *slog.Logger
}

// NewDispatcher creates a dispatcher. A nil logger discards output.
func NewDispatcher(ctl Controller, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{ctl: ctl, log: log}
}

// HandleLine decodes one JSON command and runs it. Malformed input yields a
// failed reply, never an error.
func (d *Dispatcher) HandleLine(ctx context.Context, line []byte) Reply {
	var cmd Command
	if err := json.Unmarshal(line, &cmd); err != nil {
		d.log.Debug("malformed command", "error", err)
		return protocolFailure("", errmsg.Format(errmsg.OpDecodeCommand, err))
	}
	return d.Dispatch(ctx, cmd)
}

// Dispatch runs cmd and builds its reply.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) Reply {
	d.log.Debug("command", "id", cmd.ID, "command", cmd.Command)

	switch cmd.Command {
	case CmdLoad:
		if cmd.Source == "" {
			return d.missing(cmd, "source")
		}
		return d.reply(cmd, d.ctl.Load(ctx, cmd.Source), nil)
	case CmdPlay:
		return d.reply(cmd, d.ctl.Play(), nil)
	case CmdPause:
		return d.reply(cmd, d.ctl.Pause(), nil)
	case CmdStop:
		return d.reply(cmd, d.ctl.Stop(), nil)
	case CmdSeek:
		if cmd.Position == nil {
			return d.missing(cmd, "position")
		}
		applied := d.ctl.Seek(duration(*cmd.Position))
		return d.reply(cmd, nil, SeekResult{Position: seconds(applied)})
	case CmdVolume:
		if cmd.Level == nil {
			return d.missing(cmd, "level")
		}
		level := d.ctl.SetVolume(*cmd.Level)
		return d.reply(cmd, nil, VolumeResult{Level: level, Muted: level == 0})
	case CmdRate:
		if cmd.Rate == nil {
			return d.missing(cmd, "rate")
		}
		return d.reply(cmd, nil, RateResult{Rate: d.ctl.SetRate(*cmd.Rate)})
	case CmdStatus:
		return d.reply(cmd, nil, encodeStatus(d.ctl.Status()))
	default:
		err := fmt.Errorf("%w %q", errUnknownCommand, cmd.Command)
		return protocolFailure(cmd.ID, errmsg.Format(errmsg.OpDispatch, err))
	}
}

func (d *Dispatcher) reply(cmd Command, err error, result any) Reply {
	if err != nil {
		return Reply{
			Type: TypeReply,
			ID:   cmd.ID,
			Error: &WireError{
				Kind:    playback.KindOf(err).String(),
				Message: err.Error(),
			},
		}
	}
	return Reply{Type: TypeReply, ID: cmd.ID, OK: true, Result: result}
}

func (d *Dispatcher) missing(cmd Command, field string) Reply {
	err := fmt.Errorf("%w %q for %s", errMissingField, field, cmd.Command)
	return protocolFailure(cmd.ID, errmsg.Format(errmsg.OpDispatch, err))
}

func protocolFailure(id, msg string) Reply {
	return Reply{
		Type:  TypeReply,
		ID:    id,
		Error: &WireError{Kind: ProtocolError, Message: msg},
	}
}
