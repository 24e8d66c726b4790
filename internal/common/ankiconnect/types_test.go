package ankiconnect

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	unreachable := ConnectionUnavailable(assert.AnError)
	assert.False(t, unreachable.Reachable())
	assert.False(t, unreachable.Succeeded())
	assert.Equal(t, "connection_unavailable", unreachable.Kind.String())

	empty := Responded(&Response{})
	assert.True(t, empty.Reachable())
	assert.False(t, empty.Succeeded())

	ok := Responded(&Response{Result: json.RawMessage(`123`)})
	assert.True(t, ok.Succeeded())
	assert.Equal(t, "response", ok.Kind.String())
}

func TestResponse_NoteID(t *testing.T) {
	id, ok := (&Response{Result: json.RawMessage(`1496198395707`)}).NoteID()
	assert.True(t, ok)
	assert.Equal(t, int64(1496198395707), id)

	_, ok = (&Response{Result: json.RawMessage(`"text"`)}).NoteID()
	assert.False(t, ok)

	_, ok = (&Response{}).NoteID()
	assert.False(t, ok)

	var nilResp *Response
	assert.False(t, nilResp.HasResult())
}

func TestChangeDeckParams_EmptyCardsSerializeAsArray(t *testing.T) {
	data, err := json.Marshal(ChangeDeckParams{Cards: []int64{}, Deck: "Default"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"cards": [], "deck": "Default"}`, string(data))
}
