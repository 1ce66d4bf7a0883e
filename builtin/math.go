package builtin

import (
	"context"

	"github.com/radiantlogicinc/TalkEngine/command"
)

// MathAdd is the catalog name of the arithmetic demo command.
const MathAdd = "math.add"

// MathAddParams is the typed parameter set for math.add.
type MathAddParams struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// MathAddResult is the execution artifact of math.add.
type MathAddResult struct {
	Sum float64 `json:"sum"`
}

func init() {
	Register(MathAdd, func(Settings) (command.Definition, error) {
		return NewMathAdd(), nil
	})
}

// NewMathAdd builds the arithmetic demo command. It needs no credentials
// and never fails, which makes it useful for smoke tests and the REPL.
func NewMathAdd() command.Definition {
	return command.Definition{
		Description: "Add two numbers together",
		Parameters: command.Schema{
			"a": {Type: command.TypeFloat, Required: true, Description: "first operand"},
			"b": {Type: command.TypeFloat, Required: true, Description: "second operand"},
		},
		Executable: &command.Executable{
			Params: MathAddParams{},
			Result: MathAddResult{},
			Run: func(ctx context.Context, params any) (any, error) {
				p := params.(*MathAddParams)
				return MathAddResult{Sum: p.A + p.B}, nil
			},
		},
	}
}
