package ws

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-engine/domain"
)

func TestDecodeCommand_Join(t *testing.T) {
	req := require.New(t)

	cmd, err := decodeCommand([]byte(`{"event":"join","data":{"room":"Open Mic"}}`))
	req.NoError(err)
	req.Equal(domain.JoinCommand{Room: "Open Mic"}, cmd)
}

func TestDecodeCommand_Leave(t *testing.T) {
	req := require.New(t)

	cmd, err := decodeCommand([]byte(`{"event":"leave","data":{"room":"Open Mic"}}`))
	req.NoError(err)
	req.Equal(domain.LeaveCommand{Room: "Open Mic"}, cmd)
}

func TestDecodeCommand_Room_Message(t *testing.T) {
	req := require.New(t)

	cmd, err := decodeCommand([]byte(`{"event":"message","data":{"room":"Open Mic","msg":"hello"}}`))
	req.NoError(err)
	req.Equal(domain.PostMessageCommand{Room: "Open Mic", Body: "hello"}, cmd)
}

func TestDecodeCommand_Message_Defaults_To_General(t *testing.T) {
	req := require.New(t)

	// A roomless message falls into the default room, which the catalog
	// does not contain: the router will drop it downstream
	cmd, err := decodeCommand([]byte(`{"event":"message","data":{"msg":"hello"}}`))
	req.NoError(err)
	req.Equal(domain.PostMessageCommand{Room: "General", Body: "hello"}, cmd)
}

func TestDecodeCommand_Private_Message(t *testing.T) {
	req := require.New(t)

	cmd, err := decodeCommand([]byte(`{"event":"message","data":{"type":"private","target":"bob","msg":"psst"}}`))
	req.NoError(err)
	req.Equal(domain.PrivateMessageCommand{Target: "bob", Body: "psst"}, cmd)
}

func TestDecodeCommand_Private_Without_Target_Is_Rejected(t *testing.T) {
	req := require.New(t)

	_, err := decodeCommand([]byte(`{"event":"message","data":{"type":"private","msg":"psst"}}`))
	req.Error(err)
}

func TestDecodeCommand_React(t *testing.T) {
	req := require.New(t)

	cmd, err := decodeCommand([]byte(`{"event":"react_to_message","data":{"room":"Open Mic","index":0,"emoji":"👍"}}`))
	req.NoError(err)
	req.Equal(domain.ReactCommand{Room: "Open Mic", Index: 0, Emoji: "👍"}, cmd)
}

func TestDecodeCommand_React_Requires_An_Index(t *testing.T) {
	req := require.New(t)

	// Index zero is valid; a missing index is not. The pointer field
	// keeps the two distinguishable.
	_, err := decodeCommand([]byte(`{"event":"react_to_message","data":{"room":"Open Mic","emoji":"👍"}}`))
	req.Error(err)
}

func TestDecodeCommand_Typing(t *testing.T) {
	req := require.New(t)

	cmd, err := decodeCommand([]byte(`{"event":"typing","data":{"room":"Open Mic","typing":true}}`))
	req.NoError(err)
	req.Equal(domain.TypingCommand{Room: "Open Mic", Typing: true}, cmd)

	// typing:false is a real value, not a missing field
	cmd, err = decodeCommand([]byte(`{"event":"typing","data":{"room":"Open Mic","typing":false}}`))
	req.NoError(err)
	req.Equal(domain.TypingCommand{Room: "Open Mic", Typing: false}, cmd)
}

func TestDecodeCommand_Typing_Without_Flag_Is_Rejected(t *testing.T) {
	req := require.New(t)

	_, err := decodeCommand([]byte(`{"event":"typing","data":{"room":"Open Mic"}}`))
	req.Error(err)
}

func TestDecodeCommand_Search(t *testing.T) {
	req := require.New(t)

	cmd, err := decodeCommand([]byte(`{"event":"search","data":{"room":"Open Mic","query":"deploy","limit":5}}`))
	req.NoError(err)
	req.Equal(domain.SearchCommand{Room: "Open Mic", Query: "deploy", Limit: 5}, cmd)
}

func TestDecodeCommand_Rejections(t *testing.T) {
	req := require.New(t)

	for name, frame := range map[string]string{
		"not json":        `{`,
		"unknown event":   `{"event":"teleport","data":{}}`,
		"missing payload": `{"event":"join"}`,
		"empty room":      `{"event":"join","data":{"room":""}}`,
		"empty message":   `{"event":"message","data":{"room":"Open Mic","msg":""}}`,
		"bad type":        `{"event":"message","data":{"room":"Open Mic","msg":"x","type":"broadcast"}}`,
	} {
		_, err := decodeCommand([]byte(frame))
		req.Error(err, "frame %q should be rejected", name)
	}
}
