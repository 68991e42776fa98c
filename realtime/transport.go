package realtime

import "context"

// Transport carries encoded events between a Session and the service.
// Each Send and Recv moves exactly one JSON event.
//
// Recv returns io.EOF once the peer has closed the channel cleanly.
// Implementations must allow one concurrent sender and one concurrent
// receiver.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	Recv(ctx context.Context) ([]byte, error)
	Close() error
}

// PeerToPeer is implemented by transports that carry audio as media
// alongside the events. Only they accept output_audio_buffer.clear.
type PeerToPeer interface {
	PeerToPeer() bool
}

func isPeerToPeer(t Transport) bool {
	p, ok := t.(PeerToPeer)
	return ok && p.PeerToPeer()
}
