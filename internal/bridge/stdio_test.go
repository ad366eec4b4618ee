package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/starlight/internal/playback"
	"github.com/llehouerou/starlight/internal/player"
	"github.com/llehouerou/starlight/internal/source"
)

func newTestHub(t *testing.T) (*playback.Module, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o600))

	m := playback.New(
		player.NewMock(time.Minute),
		source.NewResolver(source.Options{}),
		playback.DefaultOptions(),
	)
	t.Cleanup(func() { _ = m.Close() })
	return m, path
}

type wireMessage struct {
	Type  string     `json:"type"`
	ID    string     `json:"id"`
	OK    bool       `json:"ok"`
	Event string     `json:"event"`
	Error *WireError `json:"error"`
}

func parseLines(t *testing.T, out string) (map[string]wireMessage, []string) {
	t.Helper()
	replies := map[string]wireMessage{}
	var events []string
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var msg wireMessage
		require.NoError(t, json.Unmarshal(sc.Bytes(), &msg), sc.Text())
		switch msg.Type {
		case TypeReply:
			replies[msg.ID] = msg
		case TypeEvent:
			events = append(events, msg.Event)
		default:
			t.Fatalf("unexpected message type %q", msg.Type)
		}
	}
	return replies, events
}

func TestServeStdio(t *testing.T) {
	hub, path := newTestHub(t)
	in := strings.Join([]string{
		`{"id":"1","command":"load","source":"` + path + `"}`,
		``,
		`{"id":"2","command":"seek","position":3}`,
		`{"id":"3","command":"pause"}`,
		`not json`,
		`{"id":"4","command":"status"}`,
	}, "\n")
	var out bytes.Buffer

	err := ServeStdio(context.Background(), hub, strings.NewReader(in), &out, nil)
	require.NoError(t, err)

	replies, events := parseLines(t, out.String())
	assert.Len(t, replies, 5)
	assert.True(t, replies["1"].OK)
	assert.True(t, replies["2"].OK)
	require.NotNil(t, replies["3"].Error)
	assert.Equal(t, "InvalidStateError", replies["3"].Error.Kind)
	require.NotNil(t, replies[""].Error)
	assert.Equal(t, ProtocolError, replies[""].Error.Kind)
	assert.True(t, replies["4"].OK)

	assert.Equal(t, []string{"loaded", "state", "seeked", "error"}, events)
}

func TestServeStdio_ReplyOrder(t *testing.T) {
	hub, _ := newTestHub(t)
	in := `{"id":"a","command":"stop"}` + "\n" + `{"id":"b","command":"rate","rate":1.5}` + "\n"
	var out bytes.Buffer

	require.NoError(t, ServeStdio(context.Background(), hub, strings.NewReader(in), &out, nil))

	var ids []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var msg wireMessage
		require.NoError(t, json.Unmarshal([]byte(line), &msg))
		if msg.Type == TypeReply {
			ids = append(ids, msg.ID)
		}
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}
