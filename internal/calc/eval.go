package calc

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Evaluator executes arithmetic operations under a fixed validation and
// precision policy. It is a pure function of its inputs and the two
// configuration values (maximum input magnitude and result precision).
//
// All arithmetic uses decimal (base-10) semantics so results match what a
// user typed rather than the nearest binary float. Every result is rounded
// exactly once, at computation time, to the configured number of fractional
// digits using round-half-to-even.
type Evaluator struct {
	ctx       apd.Context
	maxInput  apd.Decimal
	negMax    apd.Decimal
	precision int32
}

// Guard digits kept above what the maximum input and result precision need,
// so intermediate division and root steps don't lose the final digit.
const guardDigits = 20

// NewEvaluator creates an Evaluator bounded by maxInput (operand magnitude)
// and rounding results to precision fractional digits.
//
// The working precision is derived from the bound: enough significant digits
// to hold the largest representable operand plus the requested fractional
// digits. Results that overflow this range (possible with power) fail with
// ErrCodeOutOfRange rather than returning an unrounded value.
func NewEvaluator(maxInput *apd.Decimal, precision int) *Evaluator {
	intDigits := maxInput.NumDigits() + int64(maxInput.Exponent)
	if intDigits < 1 {
		intDigits = 1
	}

	work := intDigits + int64(precision) + guardDigits
	if work < 34 {
		work = 34
	}
	if work > 100000 {
		work = 100000
	}

	ctx := apd.BaseContext.WithPrecision(uint32(work))
	ctx.Rounding = apd.RoundHalfEven

	e := &Evaluator{
		ctx:       *ctx,
		precision: int32(precision),
	}
	e.maxInput.Set(maxInput)
	e.negMax.Neg(maxInput)
	return e
}

// Compute validates the operands, executes op, and returns the result
// rounded to the configured precision. It has no side effects; identical
// inputs always yield an identical result.
func (e *Evaluator) Compute(op Op, a, b *apd.Decimal) (*apd.Decimal, error) {
	if err := e.checkBounds(op, a, b); err != nil {
		return nil, err
	}

	ctx := e.ctx // local copy; Context methods don't mutate, but keep Compute reentrant
	res := new(apd.Decimal)
	var err error

	switch op {
	case OpAdd:
		_, err = ctx.Add(res, a, b)
	case OpSubtract:
		_, err = ctx.Sub(res, a, b)
	case OpMultiply:
		_, err = ctx.Mul(res, a, b)
	case OpDivide:
		if b.IsZero() {
			return nil, newDivisionByZeroError(op)
		}
		_, err = ctx.Quo(res, a, b)
	case OpIntDivide:
		if b.IsZero() {
			return nil, newDivisionByZeroError(op)
		}
		_, err = ctx.QuoInteger(res, a, b)
	case OpModulus:
		if b.IsZero() {
			return nil, newDivisionByZeroError(op)
		}
		_, err = ctx.Rem(res, a, b)
	case OpPower:
		_, err = ctx.Pow(res, a, b)
	case OpRoot:
		return e.computeRoot(&ctx, a, b)
	case OpPercentage:
		if b.IsZero() {
			return nil, newDivisionByZeroError(op)
		}
		hundred := apd.New(100, 0)
		if _, err = ctx.Quo(res, a, b); err == nil {
			_, err = ctx.Mul(res, res, hundred)
		}
	case OpAbsDifference:
		if _, err = ctx.Sub(res, a, b); err == nil {
			_, err = ctx.Abs(res, res)
		}
	default:
		return nil, &EvalError{
			Code:    ErrCodeUnknownOperation,
			Message: fmt.Sprintf("unknown operation %q", op),
			Op:      op,
		}
	}
	if err != nil {
		return nil, e.outOfRange(op, err)
	}

	return e.round(op, res)
}

// computeRoot evaluates the b-th root of a as a^(1/b).
//
// A negative radicand has a real root only for odd integer degrees; that
// case is computed on |a| and negated, since decimal Pow requires a
// non-negative base for fractional exponents.
func (e *Evaluator) computeRoot(ctx *apd.Context, a, b *apd.Decimal) (*apd.Decimal, error) {
	if b.IsZero() {
		return nil, newInvalidRootError("zeroth root is undefined")
	}

	base := new(apd.Decimal).Set(a)
	negate := false
	if a.Sign() < 0 {
		odd, err := e.isOddInteger(ctx, b)
		if err != nil {
			return nil, err
		}
		if !odd {
			return nil, newInvalidRootError("even root of a negative number has no real value")
		}
		if _, err := ctx.Abs(base, base); err != nil {
			return nil, e.outOfRange(OpRoot, err)
		}
		negate = true
	}

	exponent := new(apd.Decimal)
	if _, err := ctx.Quo(exponent, apd.New(1, 0), b); err != nil {
		return nil, e.outOfRange(OpRoot, err)
	}

	res := new(apd.Decimal)
	if _, err := ctx.Pow(res, base, exponent); err != nil {
		return nil, e.outOfRange(OpRoot, err)
	}
	if negate {
		res.Neg(res)
	}

	return e.round(OpRoot, res)
}

// isOddInteger reports whether d is an integer with an odd value.
func (e *Evaluator) isOddInteger(ctx *apd.Context, d *apd.Decimal) (bool, error) {
	rem := new(apd.Decimal)
	if _, err := ctx.Rem(rem, d, apd.New(1, 0)); err != nil {
		return false, e.outOfRange(OpRoot, err)
	}
	if !rem.IsZero() {
		return false, nil
	}
	if _, err := ctx.Rem(rem, d, apd.New(2, 0)); err != nil {
		return false, e.outOfRange(OpRoot, err)
	}
	return !rem.IsZero(), nil
}

// checkBounds enforces |a| <= maxInput and |b| <= maxInput.
func (e *Evaluator) checkBounds(op Op, a, b *apd.Decimal) error {
	for _, d := range []*apd.Decimal{a, b} {
		if d.Cmp(&e.maxInput) > 0 || d.Cmp(&e.negMax) < 0 {
			return newInputTooLargeError(op, d.String(), e.maxInput.String())
		}
	}
	return nil
}

// round quantizes res to the configured number of fractional digits using
// round-half-to-even. Quantize fails when the rounded value needs more
// digits than the working precision allows; that is surfaced as an
// out-of-range error rather than silently returning an unrounded result.
func (e *Evaluator) round(op Op, res *apd.Decimal) (*apd.Decimal, error) {
	out := new(apd.Decimal)
	if _, err := e.ctx.Quantize(out, res, -e.precision); err != nil {
		return nil, e.outOfRange(op, err)
	}
	return out, nil
}

func (e *Evaluator) outOfRange(op Op, err error) *EvalError {
	return &EvalError{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("result not representable at precision %d: %v", e.precision, err),
		Op:      op,
	}
}
