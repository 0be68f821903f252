// Package normalize implements the Normalizer interface.
// It converts HTML into a node tree and Markdown, which serves as the
// canonical intermediate format for all downstream renderers.
package normalize

import (
	"context"
	"errors"
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/gaurav-prasanna/htmd/core"
	"github.com/gaurav-prasanna/htmd/core/markdown"
	"github.com/gaurav-prasanna/htmd/core/parser"
)

var (
	_ core.Normalizer = (*MarkdownNormalizer)(nil)
	_ core.Normalizer = (*FallbackNormalizer)(nil)
)

// Convert parses html and renders it as Markdown. Errors are *parser.ParseError.
func Convert(html string, cfg markdown.Config) (string, error) {
	return ConvertContext(context.Background(), html, cfg)
}

// ConvertContext is Convert with cancellation.
func ConvertContext(ctx context.Context, html string, cfg markdown.Config) (string, error) {
	tree, err := parser.ParseContext(ctx, html)
	if err != nil {
		return "", err
	}
	return markdown.Render(tree, cfg), nil
}

// MarkdownNormalizer converts HTML with the strict parser and renderer.
type MarkdownNormalizer struct {
	cfg markdown.Config
}

// New creates a MarkdownNormalizer.
func New(cfg markdown.Config) *MarkdownNormalizer {
	return &MarkdownNormalizer{cfg: cfg}
}

// Normalize parses html and renders the tree as Markdown.
func (n *MarkdownNormalizer) Normalize(ctx context.Context, html string) (*core.Conversion, error) {
	tree, err := parser.ParseContext(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &core.Conversion{
		Tree:     tree,
		Markdown: markdown.Render(tree, n.cfg),
	}, nil
}

// FallbackNormalizer tries the strict normalizer first and converts with
// html-to-markdown when the document is malformed.
type FallbackNormalizer struct {
	strict *MarkdownNormalizer
	conv   *converter.Converter
}

// NewFallback creates a FallbackNormalizer.
func NewFallback(cfg markdown.Config) *FallbackNormalizer {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &FallbackNormalizer{strict: New(cfg), conv: conv}
}

// Normalize converts html. Only parse errors trigger the fallback;
// cancellation is returned as is.
func (n *FallbackNormalizer) Normalize(ctx context.Context, html string) (*core.Conversion, error) {
	conv, err := n.strict.Normalize(ctx, html)
	var perr *parser.ParseError
	if err == nil || !errors.As(err, &perr) {
		return conv, err
	}

	md, err := n.conv.ConvertString(html, converter.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return &core.Conversion{Markdown: md, Fallback: true}, nil
}
