package wsmsg_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rapidmidiex/rmxchords/chord"
	"github.com/rapidmidiex/rmxchords/pitch"
	"github.com/rapidmidiex/rmxchords/wsmsg"
	"github.com/stretchr/testify/require"
)

func TestMsgTypeMarshaling(t *testing.T) {
	t.Run("unmarshals type from JSON", func(t *testing.T) {
		message := []byte(`{
    "id": "7b0f33ba-8a50-446d-aaa4-4de4aa96fc6c",
    "type": "answer",
    "payload": {
        "key": {"root": "A", "quality": "minor", "inversion": 1}
    },
    "sessionId": "1e3cf9a2-6e04-4bd1-9d43-3b3c0c6b0f5c"
}`)

		var got wsmsg.Envelope
		err := json.Unmarshal(message, &got)
		require.NoError(t, err)
		require.Equal(t, wsmsg.ANSWER, got.Typ)

		var answer wsmsg.AnswerMsg
		require.NoError(t, got.Unwrap(&answer))
		require.Equal(t, chord.Key{Root: pitch.A, Quality: chord.Minor, Inversion: 1}, answer.Key)
	})

	t.Run("marshals type to JSON", func(t *testing.T) {
		message := wsmsg.Envelope{
			Typ: wsmsg.FEEDBACK,
		}

		got, err := json.Marshal(message)
		require.NoError(t, err)
		want := `"type":"feedback"`
		require.Containsf(t, string(got), want, "JSON does not contain [ %s ]\n%s", want, string(got))
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		var got wsmsg.Envelope
		err := json.Unmarshal([]byte(`{"type": "midi"}`), &got)
		require.Error(t, err)

		_, err = json.Marshal(wsmsg.Envelope{Typ: wsmsg.MsgType(99)})
		require.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	sessionID := uuid.New()
	e, err := wsmsg.New(wsmsg.ERROR, sessionID, wsmsg.ErrorMsg{Code: "not_answered", Message: "question not answered yet"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, e.ID)
	require.Equal(t, sessionID, e.SessionID)
	require.JSONEq(t, `{"code":"not_answered","message":"question not answered yet"}`, string(e.Payload))

	next, err := wsmsg.New(wsmsg.NEXT, sessionID, nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(next.Payload))
}
