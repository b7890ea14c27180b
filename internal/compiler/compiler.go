// Package compiler runs the full pipeline for one component file: split,
// parse, type-check, lower, generate. Compilation is a pure function from
// source text to (artifact, diagnostics); files can be compiled in parallel
// because nothing here shares mutable state.
package compiler

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/glyph-dev/glyph/internal/ast"
	"github.com/glyph-dev/glyph/internal/codegen"
	"github.com/glyph-dev/glyph/internal/errors"
	"github.com/glyph-dev/glyph/internal/ir"
	"github.com/glyph-dev/glyph/internal/parser"
	"github.com/glyph-dev/glyph/internal/source"
	"github.com/glyph-dev/glyph/internal/types"
)

const tracerName = "glyph/compiler"

// CompileFile loads and compiles one .glyph file.
func CompileFile(ctx context.Context, path string) (*codegen.Artifact, errors.List) {
	file, err := source.Load(path)
	if err != nil {
		var diags errors.List
		diags.Add(errors.FromError(err, "G500"))
		return nil, diags
	}
	return compile(ctx, file)
}

// CompileSource compiles in-memory source text. path only labels
// diagnostics.
func CompileSource(ctx context.Context, path, src string) (*codegen.Artifact, errors.List) {
	file, err := source.Split(path, src)
	if err != nil {
		var diags errors.List
		diags.Add(errors.FromError(err, "G500"))
		return nil, diags
	}
	return compile(ctx, file)
}

func compile(ctx context.Context, file *source.File) (*codegen.Artifact, errors.List) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "glyph.compile",
		trace.WithAttributes(
			attribute.String("glyph.component", file.Name),
			attribute.String("glyph.file", file.Path),
		))
	defer span.End()

	var diags errors.List

	comp, err := runPass(ctx, tracer, "parse", func() (*ast.ComponentSource, error) {
		return parser.Parse(file)
	})
	if err != nil {
		diags.Add(errors.FromError(err, "G500"))
		return fail(span, diags)
	}

	checked, checkDiags := runCheck(ctx, tracer, comp)
	if checkDiags.HasErrors() {
		return fail(span, checkDiags)
	}

	lowered, err := runPass(ctx, tracer, "lower", func() (*ir.Component, error) {
		return ir.Build(checked)
	})
	if err != nil {
		diags.Add(errors.FromError(err, "G500"))
		return fail(span, diags)
	}

	artifact, err := runPass(ctx, tracer, "generate", func() (*codegen.Artifact, error) {
		return codegen.Generate(lowered, comp.Style, file.Content)
	})
	if err != nil {
		diags.Add(errors.FromError(err, "G500"))
		return fail(span, diags)
	}

	span.SetStatus(otelcodes.Ok, "")
	return artifact, nil
}

// runPass wraps one compiler pass in its own span.
func runPass[T any](ctx context.Context, tracer trace.Tracer, name string, pass func() (T, error)) (T, error) {
	_, span := tracer.Start(ctx, "glyph."+name)
	defer span.End()
	out, err := pass()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
	} else {
		span.SetStatus(otelcodes.Ok, "")
	}
	return out, err
}

// runCheck is runPass for the type checker, which reports a diagnostic list
// instead of a single error.
func runCheck(ctx context.Context, tracer trace.Tracer, comp *ast.ComponentSource) (*types.Checked, errors.List) {
	_, span := tracer.Start(ctx, "glyph.check")
	defer span.End()
	checked, diags := types.Check(comp)
	span.SetAttributes(attribute.Int("glyph.diagnostics", len(diags)))
	if diags.HasErrors() {
		span.SetStatus(otelcodes.Error, diags.Error())
	} else {
		span.SetStatus(otelcodes.Ok, "")
	}
	return checked, diags
}

func fail(span trace.Span, diags errors.List) (*codegen.Artifact, errors.List) {
	diags.Sort()
	span.SetStatus(otelcodes.Error, diags.Error())
	return nil, diags
}
