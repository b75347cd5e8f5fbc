package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOp_CanonicalNames(t *testing.T) {
	for _, op := range Ops() {
		got, err := ParseOp(string(op))
		require.NoError(t, err, "canonical name %q should parse", op)
		assert.Equal(t, op, got)
	}
}

func TestParseOp_Aliases(t *testing.T) {
	tests := map[string]Op{
		"sub":  OpSubtract,
		"mult": OpMultiply,
		"div":  OpDivide,
		"exp":  OpPower,
		"idiv": OpIntDivide,
		"mod":  OpModulus,
		"perc": OpPercentage,
		"absv": OpAbsDifference,
	}
	for alias, want := range tests {
		got, err := ParseOp(alias)
		require.NoError(t, err, "alias %q should parse", alias)
		assert.Equal(t, want, got)
	}
}

func TestParseOp_Unknown(t *testing.T) {
	_, err := ParseOp("cbrt")
	require.Error(t, err)
	assert.True(t, IsUnknownOperation(err))
}

func TestOps_ReturnsCopy(t *testing.T) {
	ops := Ops()
	require.Len(t, ops, 10)

	ops[0] = Op("mangled")
	assert.Equal(t, OpAdd, Ops()[0], "mutating the returned slice must not affect later calls")
}

func TestOp_Valid(t *testing.T) {
	assert.True(t, OpAdd.Valid())
	assert.True(t, OpAbsDifference.Valid())
	assert.False(t, Op("cbrt").Valid())
	assert.False(t, Op("").Valid())
}
