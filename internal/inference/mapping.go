package inference

import (
	"fmt"

	"github.com/funvibe/calltower/internal/symbols"
)

// mapArguments binds arguments to parameters. Positional arguments fill
// parameters left to right, a vararg parameter absorbs every remaining
// positional argument, and named arguments bind by name. A positional
// argument after a named one is rejected.
func mapArguments(params []symbols.Param, args []Arg) ([][]int, error) {
	mapping := make([][]int, len(params))
	bound := make([]bool, len(params))

	pos := 0
	seenNamed := false
	for i, arg := range args {
		if arg.Name != "" {
			seenNamed = true
			idx := paramIndex(params, arg.Name)
			if idx < 0 {
				return nil, fmt.Errorf("no parameter named %s", arg.Name)
			}
			if bound[idx] {
				return nil, fmt.Errorf("parameter %s passed twice", arg.Name)
			}
			bound[idx] = true
			mapping[idx] = append(mapping[idx], i)
			continue
		}
		if seenNamed {
			return nil, fmt.Errorf("positional argument %d after named arguments", i)
		}
		for pos < len(params) && bound[pos] && !params[pos].Vararg {
			pos++
		}
		if pos >= len(params) {
			return nil, fmt.Errorf("too many arguments: %d for %d parameters", len(args), len(params))
		}
		mapping[pos] = append(mapping[pos], i)
		bound[pos] = true
		if !params[pos].Vararg {
			pos++
		}
	}

	for i, p := range params {
		if !bound[i] && !p.HasDefault && !p.Vararg {
			return nil, fmt.Errorf("no value passed for parameter %s", p.Name)
		}
	}
	return mapping, nil
}

func paramIndex(params []symbols.Param, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}
