package connection

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	controlv1 "github.com/dfxyz/portal/api/proto/v1"
)

// fakeServer answers every datagram with replies sent from a separate
// ephemeral socket.
func fakeServer(t *testing.T, replies ...[]byte) string {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, controlv1.MaxMessageSize)
		for {
			_, from, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			out, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
			if err != nil {
				return
			}
			for _, r := range replies {
				out.WriteToUDP(r, from)
			}
			out.Close()
		}
	}()
	return conn.LocalAddr().String()
}

func shutdown() *controlv1.ControlRequest {
	return &controlv1.ControlRequest{Content: controlv1.ShutdownRequest{}}
}

func TestUDPClient_ReceivesAckFromOtherPort(t *testing.T) {
	ack, _ := (&controlv1.ControlResponse{Content: controlv1.ShutdownAck{}}).Marshal()
	addr := fakeServer(t, ack)

	resp, err := NewUDPClient(addr, 2*time.Second).Do(context.Background(), shutdown())
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if _, ok := resp.Content.(controlv1.ShutdownAck); !ok {
		t.Errorf("content = %T, want ShutdownAck", resp.Content)
	}
}

func TestUDPClient_SkipsMalformedReply(t *testing.T) {
	ack, _ := (&controlv1.ControlResponse{Content: controlv1.ShutdownAck{}}).Marshal()
	addr := fakeServer(t, []byte{0xff, 0xff}, ack)

	resp, err := NewUDPClient(addr, 2*time.Second).Do(context.Background(), shutdown())
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.Content == nil {
		t.Error("expected acknowledgement after malformed datagram")
	}
}

func TestUDPClient_Timeout(t *testing.T) {
	addr := fakeServer(t)

	start := time.Now()
	_, err := NewUDPClient(addr, 100*time.Millisecond).Do(context.Background(), shutdown())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Do() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestUDPClient_ContextCancel(t *testing.T) {
	addr := fakeServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := NewUDPClient(addr, 5*time.Second).Do(ctx, shutdown())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestUDPClient_BadAddress(t *testing.T) {
	if _, err := NewUDPClient("no-port", time.Second).Do(context.Background(), shutdown()); err == nil {
		t.Error("Do() should fail on an unparsable address")
	}
}
