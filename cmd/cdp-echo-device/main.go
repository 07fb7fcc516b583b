// Command cdp-echo-device wires a session.Registry to a TCP
// net.Listener: every accepted connection is treated as a CDP
// transport carrying frames for a session.Registry, with one app
// ("echo") that logs whatever session-plane payloads it receives.
package main

import (
	"flag"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/kestrelnet/cdpsession/pkg/channel"
	"github.com/kestrelnet/cdpsession/pkg/session"
	"github.com/kestrelnet/cdpsession/pkg/transport"
	"github.com/kestrelnet/cdpsession/pkg/wire"
	"github.com/pion/logging"
)

// localPlatform reports the address this process is reachable on, for
// the Host field of an UpgradeResponse's offered endpoints.
type localPlatform struct{ ip string }

func (p *localPlatform) LocalIP() string { return p.ip }

// echoApps resolves every (AppId, AppName) to one handler that logs
// whatever payload arrives on its channel.
type echoApps struct {
	log logging.LeveledLogger
}

func (a *echoApps) Lookup(appID, appName string) (channel.Handler, error) {
	return channel.HandlerFunc(func(payload []byte) error {
		a.log.Infof("echo channel message from app %s/%s: %d bytes", appID, appName, len(payload))
		return nil
	}), nil
}

func main() {
	addr := flag.String("listen", ":5040", "address to listen on")
	advertiseIP := flag.String("advertise-ip", "127.0.0.1", "IP advertised in UpgradeResponse endpoints")
	flag.Parse()

	loggerFactory := logging.NewDefaultLoggerFactory()
	log := loggerFactory.NewLogger("cdp-echo-device")

	registry := session.NewRegistry()
	cfg := session.Config{
		Platform:      &localPlatform{ip: *advertiseIP},
		Apps:          &echoApps{log: loggerFactory.NewLogger("echo-app")},
		LoggerFactory: loggerFactory,
	}

	handleFrame := func(conn net.Conn, headerBytes []byte, header *wire.CommonHeader, body io.Reader) error {
		sess, err := registry.GetOrCreate(header, cfg)
		if err != nil {
			return err
		}
		return sess.HandleFrame(conn, headerBytes, header, body)
	}

	tr, err := transport.NewTCP(transport.TCPConfig{
		ListenAddr:    *addr,
		FrameHandler:  handleFrame,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		log.Errorf("create transport: %v", err)
		os.Exit(1)
	}
	if err := tr.Start(); err != nil {
		log.Errorf("start transport: %v", err)
		os.Exit(1)
	}
	log.Infof("listening on %s", tr.LocalAddr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	if err := tr.Stop(); err != nil {
		log.Errorf("stop transport: %v", err)
	}
}
