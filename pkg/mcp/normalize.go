package mcp

import (
	"fmt"
	"sort"
)

// priceBoardTool gets a hardwired alias override: model callers supply every
// singular/plural variant of its symbols parameter, so all of them collapse
// onto "symbols" and the value is always shipped as a list.
const priceBoardTool = "get_price_board"

// symbolVariants are the caller-supplied names that drift around a declared
// symbol parameter.
func symbolVariants(canonical string) (result map[string]string) {
	result = make(map[string]string, 4)

	for _, variant := range []string{"symbol", "symbols", "symbol_list", "stocks", "stock"} {
		if variant != canonical {
			result[variant] = canonical
		}
	}

	return result
}

// buildAliasTable derives the parameter-alias table for one descriptor. The
// table maps names an LLM caller may supply onto the name the schema
// declares; tools without a symbol-shaped parameter get no table.
func buildAliasTable(desc ToolDescriptor) (result map[string]string) {
	if desc.Name == priceBoardTool {
		result = symbolVariants("symbols")
		return result
	}

	props := desc.InputSchema.Properties

	if _, ok := props["symbols"]; ok {
		result = symbolVariants("symbols")
		return result
	}

	if _, ok := props["symbol"]; ok {
		result = symbolVariants("symbol")
		return result
	}

	return result
}

// normalizeArguments reconciles caller-supplied argument names and shapes
// against the declared schema before a call goes on the wire. Names are
// aliased first, then values are coerced per the declared type. Parameters
// the schema does not declare pass through untouched; the remote tool may
// still accept them.
func normalizeArguments(desc ToolDescriptor, aliases map[string]string, args map[string]any) (result map[string]any) {
	result = make(map[string]any, len(args))
	props := desc.InputSchema.Properties

	// Sorted iteration keeps the outcome deterministic when two supplied
	// names alias onto the same declared one.
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		value := args[name]

		if canonical, ok := aliases[name]; ok {
			name = canonical
		}

		// The price-board rule holds even when the listing's schema came
		// back sparse: its symbols parameter always ships as a list.
		if desc.Name == priceBoardTool && name == "symbols" {
			result[name] = coerceToSymbolList(value)
			continue
		}

		prop, declared := props[name]
		if !declared {
			result[name] = value
			continue
		}

		switch {
		case prop.Type.Has("array"):
			result[name] = coerceToSequence(value)

		case prop.Type.Has("string"):
			result[name] = coerceToString(value)

		default:
			result[name] = value
		}
	}

	return result
}

// coerceToSymbolList is the price-board rule: always a sequence, with
// non-string scalars stringified on the way in.
func coerceToSymbolList(value any) (result any) {
	switch v := value.(type) {
	case string:
		result = []any{v}
	case []any:
		result = v
	case []string:
		result = toAnySlice(v)
	default:
		result = []any{fmt.Sprint(v)}
	}

	return result
}

// coerceToSequence wraps scalars for parameters declared as arrays.
func coerceToSequence(value any) (result any) {
	switch v := value.(type) {
	case string:
		result = []any{v}
	case []any:
		result = v
	case []string:
		result = toAnySlice(v)
	default:
		result = []any{v}
	}

	return result
}

// coerceToString flattens sequences for parameters declared as strings: the
// first element wins, an empty sequence becomes an empty string.
func coerceToString(value any) (result any) {
	switch v := value.(type) {
	case string:
		result = v
	case []any:
		if len(v) == 0 {
			result = ""
			return result
		}

		result = fmt.Sprint(v[0])
	case []string:
		if len(v) == 0 {
			result = ""
			return result
		}

		result = v[0]
	default:
		result = fmt.Sprint(v)
	}

	return result
}

func toAnySlice(values []string) (result []any) {
	result = make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}

	return result
}
