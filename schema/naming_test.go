package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single word", "Test", "test"},
		{"two words", "TestHello", "test_hello"},
		{"empty", "", ""},
		{"single upper-case letter", "A", "A"},
		{"single lower-case letter", "a", "a"},
		{"already snake case", "user_account", "user_account"},
		{"digits pass through", "Event2024Log", "event2024_log"},
		{"leading lower case", "userAccount", "user_account"},
		{"boundary letters", "AZ", "a_z"},
		{"consecutive capitals", "HTTPLog", "h_t_t_p_log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SnakeCase(tt.input))
		})
	}
}

func TestSnakeCaseIdempotentOnLowerCase(t *testing.T) {
	for _, in := range []string{"test", "test_hello", "a_b_c", "x1"} {
		once := SnakeCase(in)
		assert.Equal(t, in, once)
		assert.Equal(t, once, SnakeCase(once))
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"ID", "id"},
		{"UserID", "user_id"},
		{"Username", "username"},
		{"CreatedAt", "created_at"},
		{"HTTPStatus", "http_status"},
		{"UserIDHash", "user_id_hash"},
		{"Sha256Sum", "sha256_sum"},
		{"already_snake", "already_snake"},
		{"A", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ColumnName(tt.input))
		})
	}

	// Table names keep splitting every capital.
	assert.Equal(t, "user_i_d", SnakeCase("UserID"))
}
