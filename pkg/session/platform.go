package session

import (
	"io"

	"github.com/kestrelnet/cdpsession/pkg/channel"
)

// Platform is the external capability the session core consumes for
// learning this endpoint's address; it does not define transport
// discovery, socket I/O, or logging (the session logs through its own
// pion/logging.LeveledLogger, built from Config.LoggerFactory).
type Platform interface {
	LocalIP() string
}

// Socket is the per-frame outbound writer a session replies on.
type Socket interface {
	io.Writer
}

// AppRegistry resolves a StartChannelRequest's (AppId, AppName) pair
// to the handler that should receive the new channel's messages.
type AppRegistry interface {
	Lookup(appID, appName string) (channel.Handler, error)
}
