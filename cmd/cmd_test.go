package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gaurav-prasanna/htmd/core"
	"github.com/gaurav-prasanna/htmd/core/parser"
)

// execute runs the root command with fresh flag values.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	for _, c := range []*cobra.Command{convertCmd, parseCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				sv.Replace(nil)
			} else {
				f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestConvertStdout(t *testing.T) {
	t.Run("file to stdout", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "page.html", `<h1>Hi</h1><p>x <a href="/my uri">l</a></p>`)
		stdout, _, err := execute(t, "", "convert", path, "--stdout")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "# Hi\nx [l](</my uri>)\n"; stdout != want {
			t.Fatalf("got %q, want %q", stdout, want)
		}
	})

	t.Run("stdin with ignored kinds", func(t *testing.T) {
		html := "<html><head><title>T</title></head>\n<body><p>a<!--c-->b</p><div><p>gone</p></div></body></html>"
		stdout, _, err := execute(t, html, "convert", "-", "--stdout", "--ignore", "#comment,div")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "ab\n" {
			t.Fatalf("got %q", stdout)
		}
	})

	t.Run("json output carries metadata", func(t *testing.T) {
		html := `<html lang="fr"><head><title>Titre</title></head><body><h1>x</h1></body></html>`
		stdout, _, err := execute(t, html, "convert", "-", "--stdout", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var page core.PageJSON
		if err := json.Unmarshal([]byte(stdout), &page); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if page.Metadata.Title != "Titre" || page.Metadata.Language != "fr" || page.Metadata.Source != "-" {
			t.Fatalf("unexpected metadata %+v", page.Metadata)
		}
		if len(page.Structure.Headings) != 1 || page.Content.Markdown != "# x\n" {
			t.Fatalf("unexpected page %+v", page)
		}
	})

	t.Run("html preview", func(t *testing.T) {
		stdout, _, err := execute(t, "<h2>Sub</h2>", "convert", "-", "--stdout", "--html")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "<h2>Sub</h2>") {
			t.Fatalf("got %q", stdout)
		}
	})
}

func TestConvertFiles(t *testing.T) {
	t.Run("writes next to the output directory", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		path := writeFile(t, in, "about.html", "<p>about</p>")

		stdout, _, err := execute(t, "", "convert", path, "--output_dir", out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		written := filepath.Join(out, "about.md")
		if !strings.Contains(stdout, "✓ Written: "+written) {
			t.Fatalf("missing progress line in %q", stdout)
		}
		data, err := os.ReadFile(written)
		if err != nil || string(data) != "about\n" {
			t.Fatalf("reading output: %q, %v", data, err)
		}
	})

	t.Run("front matter and quiet", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		path := writeFile(t, in, "doc.html", "<html><head><title>Doc</title></head><body><p>x</p></body></html>")

		stdout, _, err := execute(t, "", "convert", path, "--output_dir", out, "--front_matter", "--quiet")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Fatalf("expected no progress output, got %q", stdout)
		}
		data, err := os.ReadFile(filepath.Join(out, "doc.md"))
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if !strings.HasPrefix(string(data), "---\ntitle: Doc\n") || !strings.HasSuffix(string(data), "---\n\nx\n") {
			t.Fatalf("unexpected output %q", data)
		}
	})

	t.Run("partial failure is reported", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		good := writeFile(t, in, "good.html", "<p>ok</p>")
		bad := writeFile(t, in, "bad.html", "<div>hello</div><div")

		stdout, stderr, err := execute(t, "", "convert", good, bad, "--output_dir", out, "--parallel", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "[1/2] "+good) || !strings.Contains(stdout, "[2/2] "+bad) {
			t.Fatalf("expected progress in input order, got %q", stdout)
		}
		if !strings.Contains(stderr, "Missing closing bracket at around index 16") {
			t.Fatalf("expected the parse error, got %q", stderr)
		}
		if !strings.Contains(stderr, "1/2 inputs failed") {
			t.Fatalf("expected a failure summary, got %q", stderr)
		}
		if _, err := os.Stat(filepath.Join(out, "good.md")); err != nil {
			t.Fatalf("expected good.md: %v", err)
		}
	})

	t.Run("total failure is an error", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "bad.html", "<>")
		_, _, err := execute(t, "", "convert", path, "--stdout")
		if err == nil || !strings.Contains(err.Error(), "all 1 inputs failed") {
			t.Fatalf("expected an error, got %v", err)
		}
	})

	t.Run("fallback converts malformed input", func(t *testing.T) {
		stdout, stderr, err := execute(t, `<p>hi <b>there</b></p><p title="x>`, "convert", "-", "--stdout", "--fallback")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "hi **there**") {
			t.Fatalf("got %q", stdout)
		}
		if !strings.Contains(stderr, "used fallback converter") {
			t.Fatalf("expected a fallback notice, got %q", stderr)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", "convert", filepath.Join(t.TempDir(), "nope.html"), "--stdout")
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestConvertURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html lang="en"><head><title>Site</title></head><body>` +
			`<nav><a href="/">Home</a></nav><article><h1>Guide</h1><p>Body</p></article></body></html>`))
	}))
	defer srv.Close()

	stdout, _, err := execute(t, "", "convert", srv.URL+"/docs/guide", "--stdout", "--extract", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var page core.PageJSON
	if err := json.Unmarshal([]byte(stdout), &page); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if page.Metadata.Title != "Site" || page.Metadata.Language != "en" || page.Metadata.Path != "/docs/guide" {
		t.Fatalf("unexpected metadata %+v", page.Metadata)
	}
	if strings.Contains(page.Content.Markdown, "Home") || !strings.Contains(page.Content.Markdown, "# Guide\nBody\n") {
		t.Fatalf("unexpected markdown %q", page.Content.Markdown)
	}
}

func TestConvertCrawl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`<h1>Home</h1><p><a href="/docs/intro">Intro</a></p>`))
		case "/docs/intro":
			w.Write([]byte(`<h1>Intro</h1><p><a href="/">Home</a></p>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out := t.TempDir()
	stdout, _, err := execute(t, "", "convert", srv.URL+"/", "--crawl", "--output_dir", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Found 2 pages") {
		t.Fatalf("missing discovery summary in %q", stdout)
	}
	for path, want := range map[string]string{
		"index.md":                        "# Home\n[Intro](/docs/intro)\n",
		filepath.Join("docs", "intro.md"): "# Intro\n[Home](/)\n",
	} {
		data, err := os.ReadFile(filepath.Join(out, path))
		if err != nil || string(data) != want {
			t.Fatalf("%s: got %q, %v", path, data, err)
		}
	}
}

func TestConvertConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "htmd.yaml", "ignore: [h1]\nformat: json\n")
	input := "<h1>gone</h1><p>kept</p>"

	t.Run("file settings apply", func(t *testing.T) {
		stdout, _, err := execute(t, input, "convert", "-", "--stdout", "--config", cfgPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var page core.PageJSON
		if err := json.Unmarshal([]byte(stdout), &page); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if page.Content.Markdown != "kept\n" {
			t.Fatalf("markdown = %q", page.Content.Markdown)
		}
	})

	t.Run("flags override the file", func(t *testing.T) {
		stdout, _, err := execute(t, input, "convert", "-", "--stdout", "--config", cfgPath, "--markdown", "--ignore", "p")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "# gone\n" {
			t.Fatalf("got %q", stdout)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yaml", "parallel: 0\n")
		if _, _, err := execute(t, input, "convert", "-", "--stdout", "--config", bad); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestValidateFlags(t *testing.T) {
	t.Run("conflicting formats", func(t *testing.T) {
		_, _, err := execute(t, "<p>x</p>", "convert", "-", "--json", "--pdf")
		if err == nil || !strings.Contains(err.Error(), "only one output format") {
			t.Fatalf("expected a format error, got %v", err)
		}
	})

	t.Run("mirror with stdout", func(t *testing.T) {
		_, _, err := execute(t, "<p>x</p>", "convert", "-", "--mirror", "--stdout")
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("mirror from the config file with stdout", func(t *testing.T) {
		cfgPath := writeFile(t, t.TempDir(), "htmd.yaml", "mirror: true\n")
		_, _, err := execute(t, "<p>x</p>", "convert", "-", "--stdout", "--config", cfgPath)
		if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
			t.Fatalf("expected a conflict error, got %v", err)
		}
	})

	t.Run("unknown ignore kind", func(t *testing.T) {
		_, _, err := execute(t, "<p>x</p>", "convert", "-", "--stdout", "--ignore", " ")
		if err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestParseCommand(t *testing.T) {
	t.Run("prints the tree as JSON", func(t *testing.T) {
		stdout, _, err := execute(t, "<ul><li>a</li></ul>", "parse", "-")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var tree map[string]any
		if err := json.Unmarshal([]byte(stdout), &tree); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if tree["kind"] != "ul" {
			t.Fatalf("unexpected tree %v", tree)
		}
	})

	t.Run("prints the tree as HTML", func(t *testing.T) {
		stdout, _, err := execute(t, "<ul>\n  <li>a</li>\n</ul>", "parse", "-", "--html")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "<ul><li>a</li></ul>\n" {
			t.Fatalf("got %q", stdout)
		}
	})

	t.Run("reports parse errors", func(t *testing.T) {
		_, _, err := execute(t, "<div>hello</div><div", "parse", "-")
		var perr *parser.ParseError
		if !errors.As(err, &perr) || perr.Offset != 16 {
			t.Fatalf("expected a parse error, got %v", err)
		}
	})
}
