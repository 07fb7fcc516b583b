// Package session implements the frame-handling state machine that
// sits behind the registry: the Connect/Control/Session dispatch
// tables, the ECDH handshake, authentication, transport upgrade, and
// channel multiplexing (spec §4.F/§4.G).
package session

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/kestrelnet/cdpsession/pkg/channel"
	cdpcrypto "github.com/kestrelnet/cdpsession/pkg/crypto"
	"github.com/kestrelnet/cdpsession/pkg/reassembly"
	"github.com/kestrelnet/cdpsession/pkg/wire"
	"github.com/google/uuid"
	"github.com/pion/logging"
)

// defaultHmacSize is the truncated HMAC-SHA256 tag length this
// implementation advertises in ConnectResponse. No reference wire
// trace for the negotiated default was available; this is this
// implementation's own documented choice (see DESIGN.md).
const defaultHmacSize uint8 = 16

// defaultMessageFragmentSize is the maximum session-plane fragment
// size this implementation advertises in ConnectResponse.
const defaultMessageFragmentSize uint32 = 1200

// tcpUpgradePort is the port offered in UpgradeResponse (spec §8
// scenario 5).
const tcpUpgradePort uint16 = 5040

// Session holds one peer connection's handshake state, cryptor, and
// channel registry, and dispatches every frame addressed to it.
// HandleFrame serializes Connect and Control processing; session-plane
// dispatch to channel handlers runs concurrently once a message is
// fully reassembled.
type Session struct {
	localID  uint32
	remoteID uint32
	hostRole bool

	// TraceID is a stable opaque id assigned at creation, included on
	// every log line this session emits so its handshake and traffic
	// can be correlated across a busy registry.
	TraceID uuid.UUID
	log     logging.LeveledLogger

	mu    sync.Mutex
	state State

	local  *cdpcrypto.KeyMaterial
	remote *cdpcrypto.KeyMaterial

	cryptorMu sync.RWMutex
	cryptor   *cdpcrypto.Cryptor

	hmacSize            uint8
	messageFragmentSize uint32

	seq uint32

	reassembly *reassembly.Table
	channels   *channel.Registry

	platform Platform
	apps     AppRegistry

	removeSelf func()
}

// newSession constructs a session in its initial state. The host
// role is fixed true: this implementation only ever plays the
// responder/device side of a connection.
func newSession(localID, remoteID uint32, cfg Config) *Session {
	hmacSize := cfg.HmacSize
	if hmacSize == 0 {
		hmacSize = defaultHmacSize
	}
	fragSize := cfg.MessageFragmentSize
	if fragSize == 0 {
		fragSize = defaultMessageFragmentSize
	}

	var log logging.LeveledLogger
	if cfg.LoggerFactory != nil {
		log = cfg.LoggerFactory.NewLogger("session")
	}

	s := &Session{
		localID:             localID,
		remoteID:            remoteID,
		hostRole:            true,
		TraceID:             uuid.New(),
		log:                 log,
		state:               StateAwaitingConnectRequest,
		hmacSize:            hmacSize,
		messageFragmentSize: fragSize,
		reassembly:          reassembly.NewTable(),
		channels:            channel.NewRegistry(),
		platform:            cfg.Platform,
		apps:                cfg.Apps,
	}
	s.logf("session created, remote local id %d", remoteID)
	return s
}

// LocalSessionID returns the id this session was registered under.
func (s *Session) LocalSessionID() uint32 { return s.localID }

// RemoteSessionID returns the peer's local session id, as learned
// from the first frame that created this session.
func (s *Session) RemoteSessionID() uint32 { return s.remoteID }

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispose marks the session terminal, tears down its channels, and
// removes it from the owning registry. Idempotent.
func (s *Session) Dispose() {
	s.mu.Lock()
	already := s.state == StateDisposed
	if !already {
		s.state = StateDisposed
	}
	remove := s.removeSelf
	s.mu.Unlock()

	if already {
		return
	}
	s.channels.DisposeAll()
	if remove != nil {
		remove()
	}
}

func (s *Session) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.Debugf("[%s] "+format, append([]any{s.TraceID}, args...)...)
}

func (s *Session) warnf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.Warnf("[%s] "+format, append([]any{s.TraceID}, args...)...)
}

func (s *Session) errorf(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.Errorf("[%s] "+format, append([]any{s.TraceID}, args...)...)
}

// HandleFrame processes one inbound frame. headerBytes is the exact
// encoded header, reused as AAD for HMAC verification; body must
// yield exactly header.PayloadSize bytes.
func (s *Session) HandleFrame(out Socket, headerBytes []byte, header *wire.CommonHeader, body io.Reader) error {
	if s.State() == StateDisposed {
		return ErrSessionDisposed
	}

	if header.MessageType == wire.MessageTypeSession {
		return s.handleSessionFrame(headerBytes, header, body)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisposed {
		return ErrSessionDisposed
	}

	plaintext, err := s.decodePayloadLocked(headerBytes, header, body)
	if err != nil {
		if errors.Is(err, cdpcrypto.ErrCryptoIntegrity) {
			s.errorf("crypto integrity failure, disposing session: %v", err)
			s.disposeLocked()
		}
		return err
	}

	switch header.MessageType {
	case wire.MessageTypeConnect:
		return s.handleConnect(out, header, plaintext)
	case wire.MessageTypeControl:
		return s.handleControl(out, header, plaintext)
	case wire.MessageTypeReliabilityResponse:
		return nil
	default:
		s.warnf("dropping frame of unknown type %d", header.MessageType)
		return nil
	}
}

// decodePayloadLocked reads and, if a cryptor is live, decrypts the
// frame body. Sub-message TLV decoding needs a materialized []byte,
// so the whole payload is buffered here rather than streamed further.
func (s *Session) decodePayloadLocked(headerBytes []byte, header *wire.CommonHeader, body io.Reader) ([]byte, error) {
	s.cryptorMu.RLock()
	cryptor := s.cryptor
	s.cryptorMu.RUnlock()

	if cryptor == nil {
		buf := make([]byte, header.PayloadSize)
		if _, err := io.ReadFull(body, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	r, err := cryptor.Read(body, headerBytes, header.SequenceNumber, int(header.PayloadSize), int(s.hmacSize))
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func (s *Session) disposeLocked() {
	if s.state == StateDisposed {
		return
	}
	s.state = StateDisposed
	remove := s.removeSelf
	go func() {
		s.channels.DisposeAll()
		if remove != nil {
			remove()
		}
	}()
}

// handleSessionFrame processes session-plane fragments outside the
// handshake mutex: fragment assembly is serialized per sequence
// number by the reassembly table itself, and completed messages fan
// out to channel handlers concurrently (spec §4.F).
func (s *Session) handleSessionFrame(headerBytes []byte, header *wire.CommonHeader, body io.Reader) error {
	if s.State() != StateEstablished {
		return ErrUnexpectedMessage
	}

	s.cryptorMu.RLock()
	cryptor := s.cryptor
	s.cryptorMu.RUnlock()
	if cryptor == nil {
		return ErrUnexpectedMessage
	}

	r, err := cryptor.Read(body, headerBytes, header.SequenceNumber, int(header.PayloadSize), int(s.hmacSize))
	if err != nil {
		if errors.Is(err, cdpcrypto.ErrCryptoIntegrity) {
			s.errorf("crypto integrity failure, disposing session: %v", err)
			s.Dispose()
		}
		return err
	}
	fragment, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	payload, complete, err := s.reassembly.AddFragment(header.SequenceNumber, header.FragmentIndex, header.FragmentCount, fragment)
	if err != nil {
		return err
	}
	if !complete {
		return nil
	}

	handler, err := s.channels.Lookup(header.ChannelID)
	if err != nil {
		return err
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.warnf("channel %d handler panicked: %v", header.ChannelID, r)
			}
		}()
		if err := handler.HandleMessage(payload); err != nil {
			s.warnf("channel %d handler error: %v", header.ChannelID, err)
		}
	}()
	return nil
}

// handleConnect dispatches a Connect-plane frame to its sub-handler
// (spec §4.F dispatch table).
func (s *Session) handleConnect(out Socket, header *wire.CommonHeader, payload []byte) error {
	ch, n, err := wire.DecodeConnectionHeader(payload)
	if err != nil {
		return err
	}
	body := payload[n:]

	switch ch.MessageType {
	case wire.ConnectionMessageConnectRequest:
		return s.handleConnectRequest(out, header, body)
	case wire.ConnectionMessageDeviceAuthRequest:
		return s.handleDeviceAuthRequest(out, header, body, wire.ConnectionMessageDeviceAuthResponse)
	case wire.ConnectionMessageUserDeviceAuthRequest:
		return s.handleDeviceAuthRequest(out, header, body, wire.ConnectionMessageUserDeviceAuthResponse)
	case wire.ConnectionMessageUpgradeRequest:
		return s.handleUpgradeRequest(out, header, body)
	case wire.ConnectionMessageUpgradeFinalization:
		return s.handleUpgradeFinalization(out, header, body)
	case wire.ConnectionMessageUpgradeFailure:
		return s.handleUpgradeFailure(body)
	case wire.ConnectionMessageTransportRequest:
		return s.handleTransportRequest(out, header, body)
	case wire.ConnectionMessageAuthDoneRequest:
		return s.handleAuthDoneRequest(out, header, body)
	case wire.ConnectionMessageDeviceInfoMessage:
		return s.handleDeviceInfoMessage(out, header, body)
	default:
		return ErrUnexpectedMessage
	}
}

func (s *Session) handleConnectRequest(out Socket, header *wire.CommonHeader, body []byte) error {
	if s.state != StateAwaitingConnectRequest {
		return ErrUnexpectedMessage
	}

	req, err := wire.DecodeConnectRequest(body)
	if err != nil {
		return err
	}
	remote, err := req.KeyMaterial()
	if err != nil {
		return err
	}

	local, err := cdpcrypto.CreateKeyMaterial()
	if err != nil {
		return err
	}
	secret, err := local.GenerateSharedSecret(remote)
	if err != nil {
		return err
	}
	cryptor, err := cdpcrypto.NewCryptor(secret)
	if err != nil {
		return err
	}

	s.local = local
	s.remote = remote
	s.cryptorMu.Lock()
	s.cryptor = cryptor
	s.cryptorMu.Unlock()

	resp := &wire.ConnectResponse{
		Result:              wire.ConnectResultPending,
		HmacSize:            s.hmacSize,
		MessageFragmentSize: s.messageFragmentSize,
	}
	copy(resp.Nonce[:], s.local.Nonce())
	x, y := s.local.PublicKeyXY()
	copy(resp.PublicKeyX[:], x)
	copy(resp.PublicKeyY[:], y)

	respBody, err := resp.Encode()
	if err != nil {
		return err
	}

	s.state = StateAwaitingAuth
	// The handshake's ConnectResponse is sent unencrypted even though
	// the cryptor already exists, per spec §8 scenario 1.
	return s.sendConnect(out, false, wire.ConnectionMessageConnectResponse, header, respBody)
}

func (s *Session) handleDeviceAuthRequest(out Socket, header *wire.CommonHeader, body []byte, responseType wire.ConnectionMessageType) error {
	// Precondition is "state >= AwaitingAuth; cryptor live": the
	// remote key is only set once ConnectRequest has run, so its
	// presence stands in for both halves of that check.
	if s.remote == nil {
		return ErrUnexpectedMessage
	}

	req, err := wire.DecodeDeviceAuthRequest(body)
	if err != nil {
		return err
	}
	if !cdpcrypto.VerifyThumbprint(req.Thumbprint, s.local.Nonce(), s.remote.Nonce()) {
		s.errorf("device auth thumbprint mismatch, disposing session")
		s.disposeLocked()
		return ErrInvalidThumbprint
	}
	s.remote.SetCertificate(req.AuthPayload)

	resp := &wire.DeviceAuthResponse{AuthPayload: s.local.Certificate()}
	respBody, err := resp.Encode()
	if err != nil {
		return err
	}

	if s.state == StateAwaitingAuth {
		s.state = StateAwaitingUpgradeOrAuthDone
	}
	return s.sendConnect(out, true, responseType, header, respBody)
}

func (s *Session) handleUpgradeRequest(out Socket, header *wire.CommonHeader, body []byte) error {
	if s.state != StateEstablished {
		return ErrUnexpectedMessage
	}
	if _, err := wire.DecodeUpgradeRequest(body); err != nil {
		return err
	}

	host := ""
	if s.platform != nil {
		host = s.platform.LocalIP()
	}
	resp := &wire.UpgradeResponse{Endpoints: []wire.Endpoint{
		{Transport: "tcp", Host: host, Port: tcpUpgradePort},
	}}
	respBody, err := resp.Encode()
	if err != nil {
		return err
	}
	return s.sendConnect(out, true, wire.ConnectionMessageUpgradeResponse, header, respBody)
}

func (s *Session) handleUpgradeFinalization(out Socket, header *wire.CommonHeader, body []byte) error {
	if s.state != StateEstablished {
		return ErrUnexpectedMessage
	}
	if _, err := wire.DecodeUpgradeFinalization(body); err != nil {
		return err
	}
	respBody, err := wire.UpgradeFinalizationResponse{}.Encode()
	if err != nil {
		return err
	}
	return s.sendConnect(out, true, wire.ConnectionMessageUpgradeFinalizationResponse, header, respBody)
}

func (s *Session) handleUpgradeFailure(body []byte) error {
	if !s.authenticated() {
		return ErrUnexpectedMessage
	}
	fail, err := wire.DecodeUpgradeFailure(body)
	if err != nil {
		return err
	}
	s.logf("transport upgrade failed: hresult=%d", fail.HResult)
	return nil
}

func (s *Session) handleTransportRequest(out Socket, header *wire.CommonHeader, body []byte) error {
	if s.state != StateEstablished {
		return ErrUnexpectedMessage
	}
	req, err := wire.DecodeTransportRequest(body)
	if err != nil {
		return err
	}
	confirmation := &wire.TransportConfirmation{Body: req.Body}
	respBody, err := confirmation.Encode()
	if err != nil {
		return err
	}
	return s.sendConnect(out, true, wire.ConnectionMessageTransportConfirmation, header, respBody)
}

func (s *Session) handleAuthDoneRequest(out Socket, header *wire.CommonHeader, body []byte) error {
	if !s.authenticated() {
		return ErrUnexpectedMessage
	}
	if _, err := wire.DecodeAuthDoneRequest(body); err != nil {
		return err
	}

	resp := &wire.AuthDoneResponse{HResult: 0}
	respBody, err := resp.Encode()
	if err != nil {
		return err
	}

	s.state = StateEstablished
	return s.sendConnect(out, true, wire.ConnectionMessageAuthDoneResponse, header, respBody)
}

func (s *Session) handleDeviceInfoMessage(out Socket, header *wire.CommonHeader, body []byte) error {
	if s.state != StateEstablished {
		return ErrUnexpectedMessage
	}
	if _, err := wire.DecodeDeviceInfoMessage(body); err != nil {
		return err
	}
	respBody, err := wire.DeviceInfoResponseMessage{}.Encode()
	if err != nil {
		return err
	}
	return s.sendConnect(out, true, wire.ConnectionMessageDeviceInfoResponseMessage, header, respBody)
}

// authenticated reports whether DeviceAuthRequest has already
// succeeded: AwaitingUpgradeOrAuthDone or later, short of disposed.
// Used by UpgradeFailure ("any post-auth") and AuthDoneRequest, whose
// documented precondition of "state = AwaitingAuth" is read as
// shorthand for "authenticated, not yet established" since nothing
// else in the dispatch table ever drives the state machine through
// AwaitingUpgradeOrAuthDone otherwise (see DESIGN.md).
func (s *Session) authenticated() bool {
	return s.state == StateAwaitingUpgradeOrAuthDone || s.state == StateEstablished
}

// handleControl dispatches a Control-plane frame to its sub-handler.
func (s *Session) handleControl(out Socket, header *wire.CommonHeader, payload []byte) error {
	ch, n, err := wire.DecodeControlHeader(payload)
	if err != nil {
		return err
	}
	body := payload[n:]

	switch ch.MessageType {
	case wire.ControlMessageStartChannelRequest:
		return s.handleStartChannelRequest(out, header, body)
	default:
		return ErrUnexpectedMessage
	}
}

func (s *Session) handleStartChannelRequest(out Socket, header *wire.CommonHeader, body []byte) error {
	if s.state != StateEstablished {
		return ErrUnexpectedMessage
	}
	req, err := wire.DecodeStartChannelRequest(body)
	if err != nil {
		return err
	}
	if s.apps == nil {
		return ErrUnexpectedMessage
	}
	handler, err := s.apps.Lookup(req.AppID, req.AppName)
	if err != nil {
		return err
	}
	channelID := s.channels.StartChannel(req.AppID, req.AppName, handler)

	respBody := wire.StartChannelResponse{Status: 0, ChannelID: channelID}.Encode()
	cHeader := wire.ControlHeader{MessageType: wire.ControlMessageStartChannelResponse}
	payload := make([]byte, cHeader.Size(), cHeader.Size()+len(respBody))
	cHeader.EncodeTo(payload)
	payload = append(payload, respBody...)

	return s.reply(out, wire.MessageTypeControl, header, payload, true, []wire.AdditionalHeader{wire.FixedChannelResponseHeader()})
}

// sendConnect prefixes body with a ConnectionHeader selecting msgType
// and sends it as a reply to reqHeader.
func (s *Session) sendConnect(out Socket, encrypted bool, msgType wire.ConnectionMessageType, reqHeader *wire.CommonHeader, body []byte) error {
	ch := wire.ConnectionHeader{MessageType: msgType}
	payload := make([]byte, ch.Size(), ch.Size()+len(body))
	ch.EncodeTo(payload)
	payload = append(payload, body...)
	return s.reply(out, wire.MessageTypeConnect, reqHeader, payload, encrypted, nil)
}

// reply composes and sends a frame addressed back at reqHeader's
// originator. The outgoing session id always encodes this session's
// own (localID, hostRole, remoteID), composed directly rather than by
// flipping the inbound id's host bit (see DESIGN.md).
func (s *Session) reply(out Socket, msgType wire.MessageType, reqHeader *wire.CommonHeader, payload []byte, encrypted bool, additional []wire.AdditionalHeader) error {
	seq := atomic.AddUint32(&s.seq, 1)
	h := &wire.CommonHeader{
		MessageType:       msgType,
		SessionID:         wire.ComposeSessionID(s.localID, s.hostRole, s.remoteID),
		SequenceNumber:    seq,
		ReplyToId:         reqHeader.RequestID,
		ChannelID:         reqHeader.ChannelID,
		AdditionalHeaders: additional,
	}

	if encrypted {
		s.cryptorMu.RLock()
		cryptor := s.cryptor
		s.cryptorMu.RUnlock()
		if cryptor == nil {
			return ErrUnexpectedMessage
		}
		h.PayloadSize = uint32(cdpcrypto.SealedSize(len(payload), int(s.hmacSize)))
		headerBytes := h.Encode()
		return cryptor.EncryptMessage(out, headerBytes, seq, payload, int(s.hmacSize))
	}

	h.PayloadSize = uint32(len(payload))
	headerBytes := h.Encode()
	if _, err := out.Write(headerBytes); err != nil {
		return err
	}
	_, err := out.Write(payload)
	return err
}
