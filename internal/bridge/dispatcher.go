package bridge

import (
	"context"
	"errors"

	"github.com/nerrad567/enigma2-bridge/internal/openwebif"
)

// standbyCommands are the remote-control identifiers that toggle standby.
// Dispatching one forces an uncached event resolution and fast cycle.
var standbyCommands = map[int]struct{}{
	105: {},
	106: {},
	116: {},
}

// volumeCommands are the remote-control identifiers that change volume.
// Dispatching one forces an uncached fast cycle.
var volumeCommands = map[int]struct{}{
	114: {},
	115: {},
}

// Dispatch executes an outbound command intent against the receiver and
// forces resynchronization of the bindings the command affects.
//
// Intents whose caller tag equals SourceBridge originate from the engine's
// own resolution pass and are ignored. Remote-control commands and zaps
// follow act-then-resync: the device acknowledgement is logged (negative
// or unparseable acks do not raise), then the affected attributes are
// re-read with the cache bypassed so the new device state lands in the
// items immediately instead of at the next scheduled tick.
//
// Parameters:
//   - ctx: Context for the device calls
//   - cmd: Command binding (remote command or service reference)
//   - caller: Origin tag of the intent (e.g. "api", "mqtt")
//
// Returns:
//   - error: Transport failure of the command call, or ErrInvalidCommand
func (b *Bridge) Dispatch(ctx context.Context, cmd CommandBinding, caller string) error {
	if caller == SourceBridge {
		return nil
	}

	switch {
	case cmd.Command > 0:
		return b.dispatchRemote(ctx, cmd.Command, caller)
	case cmd.SRef != "":
		return b.dispatchZap(ctx, cmd.SRef, caller)
	default:
		return ErrInvalidCommand
	}
}

// dispatchRemote issues a remote-control key press and resyncs by command
// class.
func (b *Bridge) dispatchRemote(ctx context.Context, command int, caller string) error {
	ack, err := b.device.client.RemoteControl(ctx, command)
	switch {
	case errors.Is(err, openwebif.ErrMalformedResponse):
		// The key press was delivered; only the acknowledgement is
		// unreadable. Log like a negative ack and carry on.
		b.logger.Warn("remote control acknowledgement unreadable",
			"device", b.device.id,
			"command", command,
			"error", err,
		)
		err = nil
	case err != nil:
		b.logger.Error("remote control command failed",
			"device", b.device.id,
			"command", command,
			"caller", caller,
			"error", err,
		)
	case !ack.OK:
		b.logger.Warn("remote control command rejected",
			"device", b.device.id,
			"command", command,
			"result", ack.Text,
		)
	default:
		b.logger.Debug("remote control command sent",
			"device", b.device.id,
			"command", command,
			"result", ack.Text,
		)
	}

	if _, ok := standbyCommands[command]; ok {
		b.forceResync(ctx, true)
	} else if _, ok := volumeCommands[command]; ok {
		b.forceResync(ctx, false)
	}
	return err
}

// dispatchZap switches the receiver to another service and always resyncs
// the current event.
func (b *Bridge) dispatchZap(ctx context.Context, sRef, caller string) error {
	ack, err := b.device.client.Zap(ctx, sRef, "")
	switch {
	case errors.Is(err, openwebif.ErrMalformedResponse):
		b.logger.Warn("zap acknowledgement unreadable",
			"device", b.device.id,
			"sref", sRef,
			"error", err,
		)
		err = nil
	case err != nil:
		b.logger.Error("zap failed",
			"device", b.device.id,
			"sref", sRef,
			"caller", caller,
			"error", err,
		)
	case !ack.OK:
		b.logger.Warn("zap rejected",
			"device", b.device.id,
			"sref", sRef,
			"result", ack.Text,
		)
	default:
		b.logger.Debug("zapped to service",
			"device", b.device.id,
			"sref", sRef,
			"result", ack.Text,
		)
	}

	b.forceResync(ctx, true)
	return err
}

// forceResync clears the response cache and re-reads the fast bindings
// with caching bypassed. When withEvent is true the current event is
// resolved first, so event items reflect the new service or power state
// even if the fast registry carries no event bindings of its own.
func (b *Bridge) forceResync(ctx context.Context, withEvent bool) {
	b.cache.clear()

	if withEvent {
		if err := b.resolveEvent(ctx, true); err != nil {
			b.logger.Warn("forced event resolution failed",
				"device", b.device.id,
				"error", err,
			)
		}
	}
	b.FastCycle(ctx, false)
}

// SendMessage displays an on-screen message on the receiver.
func (b *Bridge) SendMessage(ctx context.Context, text string, messageType openwebif.MessageType, timeout int) (openwebif.Ack, error) {
	return b.device.client.SendMessage(ctx, text, messageType, timeout)
}

// MessageAnswer polls for the answer to a previously sent yes/no message.
func (b *Bridge) MessageAnswer(ctx context.Context) (string, bool, error) {
	return b.device.client.MessageAnswer(ctx)
}

// AudioTracks enumerates the audio tracks of the current service.
func (b *Bridge) AudioTracks(ctx context.Context) ([]openwebif.AudioTrack, error) {
	return b.device.client.AudioTracks(ctx)
}
