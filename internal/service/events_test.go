package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundValidate(t *testing.T) {
	consent := true
	tests := []struct {
		name    string
		cmd     Inbound
		wantErr bool
	}{
		{"join pool", Inbound{Type: InboundJoinPool}, false},
		{"leave pool", Inbound{Type: InboundLeavePool}, false},
		{"send message", Inbound{Type: InboundSendMessage, Content: "hi"}, false},
		{"send message without content", Inbound{Type: InboundSendMessage}, true},
		{"cast vote", Inbound{Type: InboundCastVote, Consent: &consent}, false},
		{"cast vote without consent", Inbound{Type: InboundCastVote}, true},
		{"unknown type", Inbound{Type: "hack"}, true},
		{"empty type", Inbound{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInboundConsentDistinguishesFalseFromAbsent(t *testing.T) {
	// consent: false 是有效的反對票，缺少欄位才是錯誤
	var cmd Inbound
	require.NoError(t, json.Unmarshal([]byte(`{"type":"cast_vote","consent":false}`), &cmd))
	require.NoError(t, cmd.Validate())
	assert.False(t, *cmd.Consent)
}

func TestEventOmitsUnusedFields(t *testing.T) {
	data, err := json.Marshal(NewPhaseEvent(PhaseLobby))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"phase_changed","phase":"LOBBY"}`, string(data))
}

func TestErrorEventCarriesCode(t *testing.T) {
	event := NewErrorEvent(ErrAlreadyParticipatedToday)
	assert.Equal(t, EventError, event.Type)
	assert.Equal(t, "already_participated_today", event.Code)
	assert.NotEmpty(t, event.Message)
}
