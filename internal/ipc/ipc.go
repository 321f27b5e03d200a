// Package ipc locates and serves the local socket the viewer uses to reach
// a backend running on the same machine. The channel is plain gRPC over a
// Unix domain socket (a named pipe on Windows), unauthenticated since the OS
// restricts access to its owner.
package ipc

import (
	"context"
	"net"
	"os"
	"time"
)

// SocketPath returns the IPC endpoint: $CLIPVIEW_SOCKET when set, otherwise
// the platform default.
func SocketPath() string {
	if s := os.Getenv("CLIPVIEW_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// Target is the gRPC target name for connections made with Dial.
const Target = "passthrough:///clipview-ipc"

// IsRunning reports whether a backend appears to be listening on the IPC
// endpoint. It dials and closes; no data is exchanged.
func IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	c, err := Dial(ctx, "")
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Dial connects to the IPC endpoint. The address argument is ignored, which
// lets Dial serve as a grpc.WithContextDialer function.
func Dial(ctx context.Context, _ string) (net.Conn, error) {
	return dialIPC(ctx, SocketPath())
}

// Listen returns a listener on the IPC endpoint, replacing a stale socket
// left by a crashed run.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}
