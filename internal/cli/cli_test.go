package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{
			name:  "plain integer",
			input: "1254",
			want:  1254,
		},
		{
			name:  "comma decimal separator",
			input: "1254,40",
			want:  1254.40,
		},
		{
			name:  "dot decimal separator",
			input: "2.63",
			want:  2.63,
		},
		{
			name:  "formatted currency amount pasted back",
			input: "1 254,40 €",
			want:  1254.40,
		},
		{
			name:  "percentage with symbol",
			input: "2.63 %",
			want:  2.63,
		},
		{
			name:  "negative value",
			input: "-1500,50",
			want:  -1500.50,
		},
		{
			name:  "surrounding whitespace",
			input: "  42  ",
			want:  42,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "not a number",
			input:   "douze",
			wantErr: true,
		},
		{
			name:    "two decimal separators",
			input:   "1,2,3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnswer(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestIsValidPIN(t *testing.T) {
	assert.True(t, isValidPIN("1234"))
	assert.True(t, isValidPIN("0000"))
	assert.False(t, isValidPIN("123"))
	assert.False(t, isValidPIN("12345"))
	assert.False(t, isValidPIN("12a4"))
	assert.False(t, isValidPIN(""))
}
