package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCandidates(t *testing.T) {
	assert.Equal(t, []string{
		"python3",
		"python",
		"/usr/bin/python3",
		"/usr/local/bin/python3",
		"/app/venv/bin/python",
		"/opt/venv/bin/python",
	}, DefaultCandidates(""))

	got := DefaultCandidates("/srv/venv/bin/python")
	require.Len(t, got, 7)
	assert.Equal(t, "/srv/venv/bin/python", got[0])
}

func TestFindInterpreter(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		answer     map[string]Output // missing entries fail to start
		want       string
		wantErr    error
	}{
		{
			name:       "first working candidate wins",
			candidates: []string{"python3", "python"},
			answer:     map[string]Output{"python3": {}, "python": {}},
			want:       "python3",
		},
		{
			name:       "skips missing binaries",
			candidates: []string{"python3", "/usr/bin/python3"},
			answer:     map[string]Output{"/usr/bin/python3": {}},
			want:       "/usr/bin/python3",
		},
		{
			name:       "skips non-zero version check",
			candidates: []string{"python3", "python"},
			answer:     map[string]Output{"python3": {Code: 1}, "python": {}},
			want:       "python",
		},
		{
			name:       "skips empty candidates",
			candidates: []string{"", "python"},
			answer:     map[string]Output{"python": {}},
			want:       "python",
		},
		{
			name:       "none found",
			candidates: []string{"python3"},
			answer:     map[string]Output{},
			wantErr:    ErrNoInterpreter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{handle: func(cmd Command) (Output, error) {
				assert.Equal(t, []string{"--version"}, cmd.Args)
				out, ok := tt.answer[cmd.Path]
				if !ok {
					return Output{}, errors.New("executable file not found")
				}
				return out, nil
			}}

			got, err := FindInterpreter(context.Background(), runner, tt.candidates)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
