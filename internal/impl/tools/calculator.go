package tools

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"

	"github.com/drujensen/deskimager/internal/domain/entities"

	"go.uber.org/zap"
)

type CalculatorTool struct {
	name        string
	description string
	logger      *zap.Logger
}

func NewCalculatorTool(name, description string, logger *zap.Logger) *CalculatorTool {
	return &CalculatorTool{name: name, description: description, logger: logger}
}

func (t *CalculatorTool) Name() string {
	return t.name
}

func (t *CalculatorTool) Description() string {
	return t.description
}

func (t *CalculatorTool) Configuration() map[string]string {
	return map[string]string{}
}

func (t *CalculatorTool) Parameters() []entities.Parameter {
	return []entities.Parameter{
		{
			Name:        "expression",
			Type:        "string",
			Description: "Arithmetic expression, e.g. 'pow(2, 10) / (3 + 1)'",
			Required:    true,
		},
	}
}

func (t *CalculatorTool) Execute(arguments string) (string, error) {
	var args struct {
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("failed to parse arguments: %w", err)
	}

	value, err := Evaluate(args.Expression)
	if err != nil {
		t.logger.Debug("Calculation failed", zap.String("expression", args.Expression), zap.Error(err))
		return "", err
	}
	return strconv.FormatFloat(value, 'g', -1, 64), nil
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var unaryFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"log":   math.Log,
	"log10": math.Log10,
	"exp":   math.Exp,
	"floor": math.Floor,
	"ceil":  math.Ceil,
	"round": math.Round,
}

var binaryFuncs = map[string]func(float64, float64) float64{
	"pow": math.Pow,
	"min": math.Min,
	"max": math.Max,
	"mod": math.Mod,
}

// Evaluate computes a floating point arithmetic expression.
func Evaluate(expression string) (float64, error) {
	if expression == "" {
		return 0, fmt.Errorf("expression is required")
	}
	node, err := parser.ParseExpr(expression)
	if err != nil {
		return 0, fmt.Errorf("invalid expression: %w", err)
	}
	return eval(node)
}

func eval(node ast.Expr) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return 0, fmt.Errorf("unsupported literal %s", n.Value)
		}
		return strconv.ParseFloat(n.Value, 64)

	case *ast.ParenExpr:
		return eval(n.X)

	case *ast.Ident:
		if v, ok := constants[n.Name]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("unknown identifier %q", n.Name)

	case *ast.UnaryExpr:
		x, err := eval(n.X)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.SUB:
			return -x, nil
		case token.ADD:
			return x, nil
		}
		return 0, fmt.Errorf("unsupported operator %s", n.Op)

	case *ast.BinaryExpr:
		x, err := eval(n.X)
		if err != nil {
			return 0, err
		}
		y, err := eval(n.Y)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.ADD:
			return x + y, nil
		case token.SUB:
			return x - y, nil
		case token.MUL:
			return x * y, nil
		case token.QUO:
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return x / y, nil
		case token.REM:
			if y == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return math.Mod(x, y), nil
		}
		return 0, fmt.Errorf("unsupported operator %s", n.Op)

	case *ast.CallExpr:
		fn, ok := n.Fun.(*ast.Ident)
		if !ok {
			return 0, fmt.Errorf("unsupported function call")
		}
		argv := make([]float64, len(n.Args))
		for i, a := range n.Args {
			v, err := eval(a)
			if err != nil {
				return 0, err
			}
			argv[i] = v
		}
		if f, ok := unaryFuncs[fn.Name]; ok && len(argv) == 1 {
			return f(argv[0]), nil
		}
		if f, ok := binaryFuncs[fn.Name]; ok && len(argv) == 2 {
			return f(argv[0], argv[1]), nil
		}
		return 0, fmt.Errorf("unknown function %s/%d", fn.Name, len(argv))
	}
	return 0, fmt.Errorf("unsupported expression")
}

var _ entities.Tool = (*CalculatorTool)(nil)
