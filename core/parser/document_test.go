package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/gaurav-prasanna/htmd/core/node"
)

var equateEmpty = cmpopts.EquateEmpty()

func text(s string) *node.Node { return node.NewText(s) }

func el(kind node.Kind, children ...*node.Node) *node.Node {
	return node.NewElement(kind, nil, children...)
}

func root(children ...*node.Node) *node.Node {
	return &node.Node{Children: children}
}

// annotate fills in special ancestors the way the parser derives them.
func annotate(n, parent *node.Node) *node.Node {
	n.Inherit(parent)
	for _, c := range n.Children {
		annotate(c, n)
	}
	return n
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *node.Node
	}{
		{
			name:  "single root is returned directly",
			input: "<div>hi</div>",
			want:  el(node.Div, text("hi")),
		},
		{
			name:  "multiple roots are wrapped",
			input: "<h1>a</h1><h2>b</h2>",
			want:  root(el(node.H1, text("a")), el(node.H2, text("b"))),
		},
		{
			name:  "self-closing element is a leaf",
			input: "<div />",
			want:  el(node.Div),
		},
		{
			name:  "tag names are case-insensitive",
			input: "<P>x</P>",
			want:  el(node.P, text("x")),
		},
		{
			name:  "text keeps inner whitespace",
			input: "<p>  hello   world </p>",
			want:  el(node.P, text("  hello   world ")),
		},
		{
			name:  "whitespace-only text is skipped",
			input: "<ul>  <li>a</li>\t<li>b</li> </ul>",
			want:  annotate(el(node.Ul, el(node.Li, text("a")), el(node.Li, text("b"))), nil),
		},
		{
			name:  "newlines are removed before scanning",
			input: "<p>hello\nworld</p>\n<p>again</p>",
			want:  root(el(node.P, text("helloworld")), el(node.P, text("again"))),
		},
		{
			name:  "children keep document order",
			input: "<p>a<strong>b</strong>c<em>d</em></p>",
			want:  el(node.P, text("a"), el(node.Strong, text("b")), text("c"), el(node.Em, text("d"))),
		},
		{
			name:  "doctype is skipped",
			input: "<!DOCTYPE html><html><body><h1>t</h1></body></html>",
			want:  el(node.HTML, el(node.Body, el(node.H1, text("t")))),
		},
		{
			name:  "lowercase doctype is skipped",
			input: "<!doctype html><p>x</p>",
			want:  el(node.P, text("x")),
		},
		{
			name:  "comments attach at the current depth",
			input: "<div><!-- note --><p>x</p></div><!--end-->",
			want:  root(el(node.Div, node.NewComment(" note "), el(node.P, text("x"))), node.NewComment("end")),
		},
		{
			name:  "unknown tags fall back",
			input: "<section><span>x</span></section>",
			want:  el(node.Unknown("section"), el(node.Unknown("span"), text("x"))),
		},
		{
			name:  "closing tag names are not checked",
			input: "<div><p>x</div></p>",
			want:  el(node.Div, el(node.P, text("x"))),
		},
		{
			name:  "unclosed elements become top-level nodes",
			input: "<div><p>x",
			want:  root(el(node.Div), el(node.P, text("x"))),
		},
		{
			name:  "top-level text is a root",
			input: "hello <b>x</b>",
			want:  root(text("hello "), el(node.Unknown("b"), text("x"))),
		},
		{
			name:  "empty input is an empty root",
			input: " \n ",
			want:  root(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, equateEmpty); diff != "" {
				t.Fatalf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAttributesOnTags(t *testing.T) {
	t.Run("quote-aware bracket scanning", func(t *testing.T) {
		got, err := Parse(`<img alt="a<br/>b" src="x"/>`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := node.NewElement(node.Unknown("img"), node.AttributesOf(map[string]node.Value{
			"alt": node.StringValue("a<br/>b"),
			"src": node.StringValue("x"),
		}))
		if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
			t.Fatalf("tree mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("tags without attributes have nil attributes", func(t *testing.T) {
		got := MustParse("<div   >x</div>")
		if got.Attributes != nil {
			t.Fatalf("expected nil attributes, got %v", got.Attributes)
		}
	})

	t.Run("id and class are read", func(t *testing.T) {
		got := MustParse(`<code id="c1" class="x language-go">fmt</code>`)
		if id, _ := got.Attributes.ID(); id != "c1" {
			t.Fatalf("id = %q", id)
		}
		if class, _ := got.Attributes.Class(); class != "x language-go" {
			t.Fatalf("class = %q", class)
		}
	})

	t.Run("indented multi-line tags", func(t *testing.T) {
		got := MustParse("<a\n  href=\"/x\"\n  title=\"t\">x</a>")
		if !got.Kind.Equal(node.A) {
			t.Fatalf("kind = %v", got.Kind)
		}
		if diff := cmp.Diff([]string{"href", "title"}, got.Attributes.Names()); diff != "" {
			t.Fatalf("names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("newline directly after the name joins it to the attribute", func(t *testing.T) {
		got := MustParse("<a\nhref=\"/x\">x</a>")
		if got.Kind.Equal(node.A) {
			t.Fatalf("expected an unknown kind, got %v", got.Kind)
		}
	})
}

func TestParseSpecialAncestors(t *testing.T) {
	got := MustParse("<blockquote><ul><li><p>x</p><ol><li>y</li></ol></li></ul></blockquote>")

	var li, p, ol, inner, y *node.Node
	ul := got.Children[0]
	li = ul.Children[0]
	p, ol = li.Children[0], li.Children[1]
	inner = ol.Children[0]
	y = inner.Children[0]

	check := func(name string, n *node.Node, want ...node.Kind) {
		t.Helper()
		if diff := cmp.Diff(want, n.SpecialAncestors, equateEmpty); diff != "" {
			t.Errorf("%s ancestors mismatch (-want +got):\n%s", name, diff)
		}
	}
	check("blockquote", got)
	check("ul", ul, node.Blockquote)
	check("li", li, node.Blockquote, node.Ul)
	check("p", p, node.Blockquote, node.Ul)
	check("text in p", p.Children[0], node.Blockquote, node.Ul)
	check("ol", ol, node.Blockquote, node.Ul)
	check("inner li", inner, node.Blockquote, node.Ul, node.Ol)
	check("text in inner li", y, node.Blockquote, node.Ul, node.Ol)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ParseError
	}{
		{
			name:  "missing closing bracket",
			input: "<div>hello</div><div",
			want:  ParseError{Raw: "<div", Reason: MissingClosingBracket, Offset: 16},
		},
		{
			name:  "missing tag name",
			input: "<>",
			want:  ParseError{Raw: "", Reason: MissingTagName, Offset: 0},
		},
		{
			name:  "name starting with whitespace",
			input: "<p>x</p>< p>",
			want:  ParseError{Raw: " p", Reason: MissingTagName, Offset: 8},
		},
		{
			name:  "unmatched closing tag",
			input: "<p>x</p></div><p>y</p>",
			want:  ParseError{Raw: "</div>", Reason: MissingClosingBracket, Offset: 8},
		},
		{
			name:  "unterminated comment",
			input: "<p>x</p><!-- open",
			want:  ParseError{Raw: "<!-- open", Reason: MissingClosingBracket, Offset: 8},
		},
		{
			name:  "unterminated doctype",
			input: "<!DOCTYPE html",
			want:  ParseError{Raw: "<!DOCTYPE html", Reason: MissingClosingBracket, Offset: 0},
		},
		{
			name:  "attribute error carries the tag offset",
			input: `<p>x</p><a ="y">z</a>`,
			want:  ParseError{Raw: `="y"`, Reason: MissingAttributeName, Offset: 8},
		},
		{
			name:  "offsets count bytes after newline removal",
			input: "<p>\nx</p>\n<div",
			want:  ParseError{Raw: "<div", Reason: MissingClosingBracket, Offset: 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if got != nil {
				t.Fatalf("expected no tree, got %v", got)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if *perr != tt.want {
				t.Fatalf("got %+v, want %+v", *perr, tt.want)
			}
		})
	}

	t.Run("error message format", func(t *testing.T) {
		_, err := Parse("<div>hello</div><div")
		want := "Malformed tag: <div - Missing closing bracket at around index 16"
		if err == nil || err.Error() != want {
			t.Fatalf("got %v, want %q", err, want)
		}
		if !errors.Is(err, ErrMalformedTag) {
			t.Fatalf("expected ErrMalformedTag")
		}
	})

	t.Run("must parse panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		MustParse("<>")
	})
}

func TestParseContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseContext(ctx, strings.Repeat("<p>x</p>", 10))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	attrs := func(pairs ...string) *node.Attributes {
		a := node.NewAttributes()
		for i := 0; i+1 < len(pairs); i += 2 {
			a.Set(pairs[i], node.StringValue(pairs[i+1]))
		}
		return a
	}
	checkbox := attrs("type", "checkbox")
	checkbox.Set("checked", node.BoolValue(true))

	trees := map[string]*node.Node{
		"nested lists": el(node.Ul,
			el(node.Li, el(node.P, text("a")), el(node.Ol, el(node.Li, text("b")))),
			el(node.Li, text("c")),
		),
		"document": el(node.HTML,
			el(node.Head, el(node.Title, text("T"))),
			el(node.Body,
				node.NewElement(node.Div, attrs("id", "main", "class", "wide"),
					el(node.H2, text("Heading")),
					el(node.Blockquote, el(node.P, text("quoted "), el(node.Em, text("text")))),
					node.NewComment(" c "),
					node.NewElement(node.A, attrs("href", "/x y"), text("link")),
					el(node.Hr),
					node.NewElement(node.Unknown("input"), checkbox),
				),
			),
		),
		"siblings": root(
			el(node.H1, text("one")),
			node.NewElement(node.Pre, nil, node.NewElement(node.Code, attrs("class", "language-go"), text("x := 1"))),
		),
	}
	for name, tree := range trees {
		t.Run(name, func(t *testing.T) {
			want := annotate(tree, nil)
			got, err := Parse(want.HTML())
			if err != nil {
				t.Fatalf("parsing %q: %v", want.HTML(), err)
			}
			if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
