package captcha

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/dmitrijs2005/userservice/internal/common"
)

// EvaluateArithmetic checks "<a> <op> <b> = <answer>" with exact integer
// arithmetic. A wrong answer is reported as false with a nil error; a
// challenge that cannot be evaluated is an error.
//
// Operands are parsed before the operator is looked at, so "2 / x = 1" is a
// NonNumericOperand failure rather than UnsupportedOperator.
func EvaluateArithmetic(expr string) (bool, error) {
	tokens := strings.Fields(expr)
	if len(tokens) == 0 {
		return false, common.NewError(common.ErrMalformedChallenge, "Math token must be provided")
	}
	if len(tokens) != 5 || tokens[3] != "=" {
		return false, common.NewError(common.ErrMalformedChallenge, "Invalid math token format")
	}

	a, okA := new(big.Int).SetString(tokens[0], 10)
	b, okB := new(big.Int).SetString(tokens[2], 10)
	claimed, okC := new(big.Int).SetString(tokens[4], 10)
	if !okA || !okB || !okC {
		return false, common.NewError(common.ErrNonNumericOperand, "Math token contains non-numeric values")
	}

	var got *big.Int
	switch tokens[1] {
	case "+":
		got = new(big.Int).Add(a, b)
	case "-", "−":
		got = new(big.Int).Sub(a, b)
	case "*":
		got = new(big.Int).Mul(a, b)
	default:
		return false, common.NewError(common.ErrUnsupportedOperator,
			fmt.Sprintf("Unsupported math operator %q. Allowed: +, -, *", tokens[1]))
	}

	return got.Cmp(claimed) == 0, nil
}
