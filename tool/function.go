package tool

import (
	"context"

	"github.com/govmesh/govmesh/internal/util"
)

// FuncTool adapts a plain Go function into a Tool. It carries no mutable
// state after construction and is safe for concurrent use.
type FuncTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (any, error)
}

// NewFuncTool constructs a FuncTool from an explicit parameter schema.
//
// Example:
//
//	sum := NewFuncTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(ctx context.Context, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFuncTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFuncToolFromStruct derives the parameter schema from a struct type via
// reflection, equivalent to passing util.CreateSchema(structType).
func NewFuncToolFromStruct(
	name, description string,
	structType any,
	fn func(ctx context.Context, args map[string]any) (any, error),
) *FuncTool {
	return NewFuncTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name.
func (t *FuncTool) Name() string { return t.name }

// Description returns the human-readable tool description.
func (t *FuncTool) Description() string { return t.description }

// Parameters returns the schema arguments are validated against.
func (t *FuncTool) Parameters() map[string]any { return t.parameters }

// Run invokes the wrapped function.
func (t *FuncTool) Run(ctx context.Context, args map[string]any) (any, error) {
	return t.fn(ctx, args)
}
