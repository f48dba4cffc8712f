package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/diagramhub/internal/core"
	"github.com/vovakirdan/diagramhub/internal/proto"
)

func TestListRooms(t *testing.T) {
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	conn := dial(ctx, t, ts.wsURL("listed"))
	readType(ctx, t, conn, proto.OutboundTypeInit, nil)

	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rooms []core.RoomStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "listed", rooms[0].Name)
	assert.Equal(t, 1, rooms[0].UsersCount)
	assert.Equal(t, len(core.DefaultDocument), rooms[0].DocumentBytes)
}

func TestGetDocument(t *testing.T) {
	ts := startTestServer(t, nil)

	_, err := ts.registry.GetOrCreate("doc")
	require.NoError(t, err)

	resp, err := ts.Client().Get(ts.URL + "/api/rooms/doc/document")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultDocument, string(body))
}

func TestGetDocumentDoesNotCreateRoom(t *testing.T) {
	ts := startTestServer(t, nil)

	resp, err := ts.Client().Get(ts.URL + "/api/rooms/ghost/document")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, ts.registry.Len())

	resp, err = ts.Client().Get(ts.URL + "/api/rooms/bad-name/document")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
