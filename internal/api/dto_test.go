package api

import (
	"encoding/json"
	"errors"
	"taskboard/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalInt_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    *int
		wantErr bool
	}{
		{"number", `{"duration":45}`, domain.IntPtr(45), false},
		{"numeric string", `{"duration":"120"}`, domain.IntPtr(120), false},
		{"padded string", `{"duration":" 30 "}`, domain.IntPtr(30), false},
		{"empty string", `{"duration":""}`, nil, false},
		{"null", `{"duration":null}`, nil, false},
		{"absent", `{}`, nil, false},
		{"fraction", `{"duration":4320.5}`, nil, true},
		{"fraction string", `{"duration":"5000.9"}`, nil, true},
		{"exponent", `{"duration":1e3}`, nil, true},
		{"overflow", `{"duration":9223372036854775808}`, nil, true},
		{"word", `{"duration":"soon"}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req createTaskReq
			err := json.Unmarshal([]byte(tt.in), &req)
			if tt.wantErr {
				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
				assert.Equal(t, "duration", verr.Field)
				assert.Equal(t, "Duration must be a whole number of minutes", verr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Duration.v)
		})
	}
}

func TestParseDueDate(t *testing.T) {
	got, err := parseDueDate("2025-06-10")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2025, got.Year())

	got, err = parseDueDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDueDate("next tuesday-ish")
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
