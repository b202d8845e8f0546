package session

import (
	"encoding/json"
	"testing"

	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		payload string
		want    Command
		wantErr error
	}{
		{
			name:    "agenda item",
			command: CmdAddAgendaItem,
			payload: `{"title":"Intro","duration_minutes":5}`,
			want:    &AddAgendaItem{Title: "Intro", DurationMinutes: 5},
		},
		{
			name:    "vote by index",
			command: CmdSubmitVote,
			payload: `{"option_index":2}`,
			want:    &SubmitVote{OptionIndex: intPtr(2)},
		},
		{
			name:    "poll",
			command: CmdStartPoll,
			payload: `{"question":"Q?","type":"OPEN_TEXT"}`,
			want:    &StartPoll{Question: "Q?", Type: models.PollTypeOpenText},
		},
		{
			name:    "quiz join",
			command: CmdJoinQuiz,
			payload: `{"name":"Ana"}`,
			want:    &JoinQuiz{PlayerName: "Ana"},
		},
		{
			name:    "empty payload",
			command: CmdStartTimer,
			want:    &StartTimer{},
		},
		{
			name:    "null payload",
			command: CmdClosePoll,
			payload: `null`,
			want:    &ClosePoll{},
		},
		{
			name:    "unknown command",
			command: "agenda.explode",
			wantErr: models.ErrValidation,
		},
		{
			name:    "malformed payload",
			command: CmdSubmitWord,
			payload: `{"text":`,
			wantErr: models.ErrValidation,
		},
		{
			name:    "wrong field type",
			command: CmdAddAgendaItem,
			payload: `{"duration_minutes":"five"}`,
			wantErr: models.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload json.RawMessage
			if tt.payload != "" {
				payload = json.RawMessage(tt.payload)
			}
			cmd, err := DecodeCommand(tt.command, payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, tt.command, cmd.Name())
		})
	}
}

func TestCommandRoles(t *testing.T) {
	participantCommands := map[string]bool{
		CmdSubmitVote:     true,
		CmdSubmitQuestion: true,
		CmdUpvoteQuestion: true,
		CmdSubmitWord:     true,
		CmdJoinQuiz:       true,
		CmdAnswerQuiz:     true,
	}

	for name, factory := range commandFactories {
		cmd := factory()
		assert.Equal(t, name, cmd.Name())
		assert.Equal(t, !participantCommands[name], cmd.HostOnly(), name)
	}
}
