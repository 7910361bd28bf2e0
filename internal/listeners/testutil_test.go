package listeners

import (
	"net"
	"testing"
)

// freeUDPAddr reserves an ephemeral UDP port and returns its address,
// closing the reservation so the caller can rebind it. There is a small
// window for another process to steal the port, acceptable for tests.
func freeUDPAddr(t *testing.T) string {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving udp port: %v", err)
	}
	addr := conn.LocalAddr().String()
	_ = conn.Close()
	return addr
}

// freeTCPAddr reserves an ephemeral TCP port and returns its address.
func freeTCPAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving tcp port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}
