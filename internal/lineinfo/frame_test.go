package lineinfo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineNumber(t *testing.T) {
	tests := []struct {
		name  string
		line  LineNumber
		want  uint
		known bool
		text  string
	}{
		{
			name:  "known",
			line:  Line(12),
			want:  12,
			known: true,
			text:  "12",
		},
		{
			name: "zero is unknown",
			line: Line(0),
			text: "?",
		},
		{
			name: "unknown",
			line: UnknownLine,
			text: "?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.line.Get()
			require.Equal(t, tt.known, ok)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.text, tt.line.String())
		})
	}
}
