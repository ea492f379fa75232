package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarefas/internal/model"
)

func receive(t *testing.T, conn *Connection) *Message {
	t.Helper()
	select {
	case data := <-conn.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

func TestHub_TaskDone(t *testing.T) {
	hub := NewHub()
	conn := &Connection{BatchID: "batch_1", Send: make(chan []byte, 8), Hub: hub}
	hub.Register(conn)

	hub.TaskDone("batch_1", model.TaskOutcome{Success: true, TaskID: "42"})

	msg := receive(t, conn)
	assert.Equal(t, MsgTaskDone, msg.Type)

	var event ProgressEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &event))
	assert.Equal(t, "batch_1", event.BatchID)
	require.NotNil(t, event.Outcome)
	assert.Equal(t, model.FlexID("42"), event.Outcome.TaskID)
}

func TestHub_FiltersByBatch(t *testing.T) {
	hub := NewHub()
	scoped := &Connection{BatchID: "batch_1", Send: make(chan []byte, 8), Hub: hub}
	all := &Connection{Send: make(chan []byte, 8), Hub: hub}
	hub.Register(scoped)
	hub.Register(all)

	hub.BatchDone("batch_2", []model.TaskOutcome{{TaskID: "1"}})

	// The unscoped subscriber hears about every batch
	msg := receive(t, all)
	assert.Equal(t, MsgBatchDone, msg.Type)

	// The scoped one stays silent
	select {
	case <-scoped.Send:
		t.Fatal("subscriber received an event for another batch")
	case <-time.After(50 * time.Millisecond):
	}
}
