package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_decodeUserId(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected string
		wantErr  bool
	}{
		{"bare string", `"u1"`, "u1", false},
		{"wrapped object", `{"userId":"u1"}`, "u1", false},
		{"object without key", `{"other":"x"}`, "", false},
		{"invalid json", `{`, "", true},
		{"array", `[1,2]`, "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := decodeUserId(json.RawMessage(tc.data))
			if tc.wantErr {
				assert.Error(t, err, "expected a decode error")
				return
			}
			assert.NoError(t, err, "expected no decode error")
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestGroupMessagePayloadBody(t *testing.T) {
	assert.Equal(t, "a", GroupMessagePayload{Content: "a"}.Body(), "expected content to be used")
	assert.Equal(t, "b", GroupMessagePayload{NewMessage: "b"}.Body(), "expected newMessage as fallback")
	assert.Equal(t, "a", GroupMessagePayload{Content: "a", NewMessage: "b"}.Body(), "expected content to win")
	assert.Empty(t, GroupMessagePayload{}.Body(), "expected empty body when both keys are missing")
}

func TestEventEnvelope(t *testing.T) {
	bytes, err := json.Marshal(NewEvent(EventJoinConfirmed, JoinPayload{Email: "user@example.com"}))
	assert.NoError(t, err, "expected no error during serialization")
	assert.JSONEq(t, `{"event":"join-confirmed","data":{"email":"user@example.com"}}`, string(bytes))

	// payload-free events omit the data key entirely
	bytes, err = json.Marshal(NewEvent(EventStopTyping, nil))
	assert.NoError(t, err, "expected no error during serialization")
	assert.Equal(t, `{"event":"stopTyping"}`, string(bytes))

	var ev rawEvent
	err = json.Unmarshal([]byte(`{"event":"join","data":{"email":"user@example.com"}}`), &ev)
	assert.NoError(t, err, "expected no error during deserialization")
	assert.Equal(t, EventJoin, ev.Name)
	assert.JSONEq(t, `{"email":"user@example.com"}`, string(ev.Data))
}
