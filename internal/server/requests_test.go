package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
)

func TestNumberField_Int64(t *testing.T) {
	tests := []struct {
		body    string
		want    int64
		wantErr string
	}{
		{`7`, 7, ""},
		{`"12"`, 12, ""},
		{`"10.0"`, 10, ""},
		{`1e3`, 1000, ""},
		{`9223372036854775807`, 9223372036854775807, ""},
		{`"1e30"`, 0, "Stock is out of range"},
		{`-1e19`, 0, "Stock is out of range"},
		{`2.5`, 0, "Stock must be an integer"},
		{`"abc"`, 0, "Stock must be an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var n numberField
			require.NoError(t, json.Unmarshal([]byte(tt.body), &n))
			got, err := n.int64("Stock")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperr.IsValidation(err))
				assert.Equal(t, tt.wantErr, apperr.PublicMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNumberField_Missing(t *testing.T) {
	var req struct {
		Stock numberField `json:"stock"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"stock": null}`), &req))
	got, err := req.Stock.int64("Stock")
	require.NoError(t, err)
	assert.Nil(t, got)
}
