package log

import (
	"encoding/hex"

	"go.uber.org/zap"
)

// ZapAdapter renders capture events onto an operational zap logger at
// debug level. Useful during development to watch protocol traffic
// without opening a capture file.
type ZapAdapter struct {
	logger *zap.Logger
}

var _ Logger = (*ZapAdapter)(nil)

// NewZapAdapter creates an adapter that writes events to logger.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{logger: logger}
}

// Log renders the event as a structured debug entry.
func (a *ZapAdapter) Log(event Event) {
	fields := []zap.Field{
		zap.String("direction", event.Direction.String()),
		zap.String("layer", event.Layer.String()),
	}

	if event.RemoteAddr != "" {
		fields = append(fields, zap.String("remote", event.RemoteAddr))
	}

	if event.Command != nil {
		fields = append(fields,
			zap.Uint16("seq", event.Command.Seq),
			zap.String("cmd", event.Command.Name),
			zap.Int("payload_size", event.Command.PayloadSize),
		)
	}

	if event.Frame != nil {
		fields = append(fields, zap.Int("size", event.Frame.Size))
		if len(event.Frame.Data) > 0 {
			fields = append(fields, zap.String("data", hex.EncodeToString(event.Frame.Data)))
		}
	}

	if event.StateChange != nil {
		fields = append(fields,
			zap.String("from", event.StateChange.From),
			zap.String("to", event.StateChange.To),
		)
	}

	if event.Error != nil {
		fields = append(fields, zap.String("error", event.Error.Message))
	}

	a.logger.Debug("protocol event", fields...)
}
