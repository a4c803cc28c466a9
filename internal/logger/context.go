package logger

import "context"

type fieldsKey struct{}

// With returns a context carrying args in addition to any fields already
// attached. args follow the slog key/value convention.
func With(ctx context.Context, args ...any) context.Context {
	prev := Fields(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// Fields returns the fields attached to ctx.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}
