package calc

import "fmt"

// Op identifies an arithmetic operation.
type Op string

const (
	OpAdd           Op = "add"
	OpSubtract      Op = "subtract"
	OpMultiply      Op = "multiply"
	OpDivide        Op = "divide"
	OpPower         Op = "power"
	OpRoot          Op = "root"
	OpIntDivide     Op = "int_divide"
	OpModulus       Op = "modulus"
	OpPercentage    Op = "percentage"
	OpAbsDifference Op = "abs_difference"
)

// allOps lists operations in the order they appear in help output.
var allOps = []Op{
	OpAdd, OpSubtract, OpMultiply, OpDivide, OpPower,
	OpRoot, OpIntDivide, OpModulus, OpPercentage, OpAbsDifference,
}

// opAliases maps command-line spellings to canonical operations.
// Includes the short forms accepted by the REPL (sub, mult, div, ...).
var opAliases = map[string]Op{
	"add":            OpAdd,
	"subtract":       OpSubtract,
	"sub":            OpSubtract,
	"multiply":       OpMultiply,
	"mult":           OpMultiply,
	"divide":         OpDivide,
	"div":            OpDivide,
	"power":          OpPower,
	"exp":            OpPower,
	"root":           OpRoot,
	"int_divide":     OpIntDivide,
	"idiv":           OpIntDivide,
	"modulus":        OpModulus,
	"mod":            OpModulus,
	"percentage":     OpPercentage,
	"perc":           OpPercentage,
	"abs_difference": OpAbsDifference,
	"absv":           OpAbsDifference,
}

// Ops returns all operations in a stable order.
func Ops() []Op {
	out := make([]Op, len(allOps))
	copy(out, allOps)
	return out
}

// ParseOp resolves a command spelling (canonical name or alias) to an Op.
// Returns an EvalError with ErrCodeUnknownOperation for unrecognized input.
func ParseOp(s string) (Op, error) {
	if op, ok := opAliases[s]; ok {
		return op, nil
	}
	return "", &EvalError{
		Code:    ErrCodeUnknownOperation,
		Message: fmt.Sprintf("unknown operation %q", s),
	}
}

// Valid reports whether the Op is one of the canonical operations.
func (o Op) Valid() bool {
	for _, op := range allOps {
		if o == op {
			return true
		}
	}
	return false
}
