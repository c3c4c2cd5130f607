package broadcast

import (
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientWriterDeliversMessages(t *testing.T) {
	server, client := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock())
	t.Cleanup(cw.stop)

	cw.sendChannel <- []byte("first")
	cw.sendChannel <- []byte("second")

	for _, want := range []string{"first", "second"} {
		require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := client.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, want, string(msg))
	}
}

func TestClientWriterStopClosesConnection(t *testing.T) {
	server, client := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock())

	cw.stop()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

func TestClientWriterStopGracefulSendsCloseFrame(t *testing.T) {
	server, client := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock())

	cw.stopGraceful("server shutting down")

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ReadMessage()
	require.Error(t, err)

	var closeErr *ws.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, ws.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, "server shutting down", closeErr.Text)
}

func TestClientWriterStopIdempotent(t *testing.T) {
	server, _ := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock())

	cw.stop()
	cw.stop()
}
