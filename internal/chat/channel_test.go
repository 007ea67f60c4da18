package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheGoumble/secure-streaming/pkg/wire"
)

// echoRoom is a minimal chat endpoint that pushes canned payloads and echoes
// nothing back; inbound payloads are recorded.
func echoRoom(t *testing.T, outbound <-chan string, inbound chan<- string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "alice", req.URL.Query().Get("roomId"))
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for payload := range outbound {
				conn.WriteMessage(websocket.TextMessage, []byte(payload))
			}
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			inbound <- string(data)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestOpen_DeliversLocalSystemMessageFirst(t *testing.T) {
	outbound := make(chan string, 1)
	inbound := make(chan string, 1)
	server := echoRoom(t, outbound, inbound)

	// Queue a relay-originated message before the client even connects; the
	// local System message must still be observed first.
	outbound <- `{"sender":"bob","text":"hi alice","timestamp":"2025-11-02T15:04:05Z"}`

	ch, err := Open(context.Background(), server.URL, "alice", "alice")
	require.NoError(t, err)
	defer ch.Close()

	first := <-ch.Messages()
	assert.Equal(t, wire.SystemSender, first.Sender)
	assert.Equal(t, "Connected to chat room: alice", first.Text)

	second := <-ch.Messages()
	assert.Equal(t, "bob", second.Sender)
	assert.Equal(t, "hi alice", second.Text)
}

func TestChannel_SendCarriesIdentityAndTimestamp(t *testing.T) {
	outbound := make(chan string)
	inbound := make(chan string, 1)
	server := echoRoom(t, outbound, inbound)

	ch, err := Open(context.Background(), server.URL, "alice", "bob")
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, ch.Send("hello from bob"))

	select {
	case payload := <-inbound:
		msg, err := wire.ParseChatMessage([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, "bob", msg.Sender)
		assert.Equal(t, "hello from bob", msg.Text)
		assert.WithinDuration(t, time.Now(), msg.Timestamp, 5*time.Second)
	case <-time.After(2 * time.Second):
		t.Fatal("relay never received the chat message")
	}
}

func TestChannel_MalformedPayloadIsDropped(t *testing.T) {
	outbound := make(chan string, 2)
	inbound := make(chan string, 1)
	server := echoRoom(t, outbound, inbound)

	ch, err := Open(context.Background(), server.URL, "alice", "alice")
	require.NoError(t, err)
	defer ch.Close()

	<-ch.Messages() // system message

	outbound <- `{broken json`
	outbound <- `{"sender":"bob","text":"still alive","timestamp":"2025-11-02T15:04:05Z"}`

	// The malformed payload is skipped and the channel keeps delivering.
	msg := <-ch.Messages()
	assert.Equal(t, "still alive", msg.Text)
}

func TestChannel_SendAfterCloseIsRejected(t *testing.T) {
	outbound := make(chan string)
	inbound := make(chan string, 1)
	server := echoRoom(t, outbound, inbound)

	ch, err := Open(context.Background(), server.URL, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close()) // idempotent

	assert.ErrorIs(t, ch.Send("too late"), ErrNotOpen)
}

func TestChannel_SendRejectsEmptyText(t *testing.T) {
	outbound := make(chan string)
	inbound := make(chan string, 1)
	server := echoRoom(t, outbound, inbound)

	ch, err := Open(context.Background(), server.URL, "alice", "bob")
	require.NoError(t, err)
	defer ch.Close()

	assert.Error(t, ch.Send("   "))
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open(context.Background(), "http://relay", "", "bob")
	assert.Error(t, err)

	_, err = Open(context.Background(), "http://relay", "alice", "")
	assert.Error(t, err)
}
