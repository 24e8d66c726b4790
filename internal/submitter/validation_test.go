package submitter

import (
	"testing"

	"card-submitter/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr string
	}{
		{
			name: "two fields",
			raw:  `{"Front": "hello", "Back": "world"}`,
			want: map[string]string{"Front": "hello", "Back": "world"},
		},
		{
			name: "empty object",
			raw:  `{}`,
			want: map[string]string{},
		},
		{
			name: "html and unicode kept verbatim",
			raw:  `{"Front": "<b>猫</b>", "Back": "cat"}`,
			want: map[string]string{"Front": "<b>猫</b>", "Back": "cat"},
		},
		{name: "truncated", raw: `{bad`, wantErr: "fields is not valid JSON"},
		{name: "empty", raw: ``, wantErr: "fields is not valid JSON"},
		{name: "string", raw: `"Front"`, wantErr: "fields must be a JSON object of strings"},
		{name: "number value", raw: `{"Front": 1}`, wantErr: "fields must be a JSON object of strings"},
		{name: "nested object", raw: `{"Front": {"text": "x"}}`, wantErr: "fields must be a JSON object of strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ParseFields(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeMalformedInput, errors.CodeOf(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fields)
		})
	}
}
