// Package cmd — convert command.
// This is the main command that orchestrates the pipeline:
// read or fetch → extract → normalize → render → write.
//
// It handles flag validation, config resolution, renderer selection, and
// concurrent processing of multiple inputs.
package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/htmd/core"
	"github.com/gaurav-prasanna/htmd/core/config"
	"github.com/gaurav-prasanna/htmd/core/extract"
	"github.com/gaurav-prasanna/htmd/core/fetch"
	"github.com/gaurav-prasanna/htmd/core/markdown"
	"github.com/gaurav-prasanna/htmd/core/node"
	"github.com/gaurav-prasanna/htmd/core/normalize"
	"github.com/gaurav-prasanna/htmd/core/output"
	"github.com/gaurav-prasanna/htmd/core/render"
	"github.com/gaurav-prasanna/htmd/crawl"
)

// Flag variables.
var (
	flagMarkdown    bool
	flagJSON        bool
	flagPDF         bool
	flagHTML        bool
	flagIgnore      []string
	flagExtract     bool
	flagFallback    bool
	flagFrontMatter bool
	flagMirror      bool
	flagStdout      bool
	flagQuiet       bool
	flagParallel    int
	flagOutputDir   string
	flagConfig      string
	flagCrawl       bool
	flagMaxPages    int
	flagChunkSize   int
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>...",
	Short: "Convert HTML files or URLs to the specified output format",
	Long: `Convert reads each input (a file path, an http(s) URL, or - for stdin),
optionally extracts the main content, converts it to Markdown, and writes it
in the specified output format (Markdown, JSON, PDF, or an HTML preview).

Examples:
  htmd convert page.html
  htmd convert page.html --ignore title,#comment --stdout
  htmd convert https://example.com --extract --json --output_dir ./out
  curl -s https://example.com | htmd convert - --fallback --pdf
  htmd convert a.html b.html c.html --parallel 2 --config htmd.yaml
  htmd convert https://docs.example.com --crawl --max_pages 50 --output_dir ./docs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	// Output format flags (mutually exclusive, default Markdown).
	convertCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown (default)")
	convertCmd.Flags().BoolVar(&flagJSON, "json", false, "Output structured JSON")
	convertCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	convertCmd.Flags().BoolVar(&flagHTML, "html", false, "Output an HTML preview of the Markdown")

	// Conversion flags.
	convertCmd.Flags().StringSliceVar(&flagIgnore, "ignore", nil, "Node kinds to leave out of the output (e.g. title,#comment,img)")
	convertCmd.Flags().BoolVar(&flagExtract, "extract", false, "Keep only the main content before converting")
	convertCmd.Flags().BoolVar(&flagFallback, "fallback", false, "Convert malformed HTML with a lenient converter instead of failing")
	convertCmd.Flags().BoolVar(&flagFrontMatter, "front_matter", false, "Prepend YAML front matter to Markdown output")
	convertCmd.Flags().IntVar(&flagChunkSize, "chunk_size", 0, "Add the Markdown split into chunks of at most this many words to JSON output")

	// Output flags.
	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")
	convertCmd.Flags().BoolVar(&flagMirror, "mirror", false, "Mirror URL paths under the output directory")
	convertCmd.Flags().BoolVar(&flagStdout, "stdout", false, "Write output to stdout instead of files")
	convertCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")

	// Crawl flags.
	convertCmd.Flags().BoolVar(&flagCrawl, "crawl", false, "Discover and convert the pages of each URL's site (implies --mirror)")
	convertCmd.Flags().IntVar(&flagMaxPages, "max_pages", 100, "Maximum pages discovered per crawled site")

	convertCmd.Flags().IntVar(&flagParallel, "parallel", 4, "Number of inputs converted concurrently")
	convertCmd.Flags().StringVar(&flagConfig, "config", "", "YAML config file")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Mirror && flagStdout {
		return fmt.Errorf("mirror (set in %s) and --stdout are mutually exclusive", flagConfig)
	}
	renderCfg, err := cfg.RenderConfig()
	if err != nil {
		return err
	}

	renderer, err := selectRenderer(cfg, renderCfg)
	if err != nil {
		return err
	}

	var writer *output.Writer
	if !flagStdout {
		writer, err = output.New(cfg.OutputDir)
		if err != nil {
			return fmt.Errorf("initializing output writer: %w", err)
		}
		writer.Mirror = cfg.Mirror || cfg.Crawl.Enabled
	}

	// Progress goes to stderr when stdout carries the output.
	progress := cmd.OutOrStdout()
	if flagStdout {
		progress = cmd.ErrOrStderr()
	}
	if flagQuiet {
		progress = io.Discard
	}

	p := newPipeline(cfg, renderCfg, renderer, cmd.InOrStdin())
	sources := args
	if cfg.Crawl.Enabled {
		if sources, err = expandSources(cmd.Context(), args, cfg.Crawl, p.input.fetcher, progress); err != nil {
			return err
		}
	}
	results := p.runAll(cmd.Context(), sources, cfg.Parallel)

	return report(results, writer, renderer.Extension(), cmd.OutOrStdout(), progress, cmd.ErrOrStderr())
}

// expandSources replaces each URL input with the pages discovered on its
// site. Files and stdin pass through unchanged.
func expandSources(ctx context.Context, args []string, cfg config.CrawlConfig, fetcher core.Fetcher, progress io.Writer) ([]string, error) {
	var sources []string
	seen := make(map[string]bool)
	for _, arg := range args {
		if !output.IsURL(arg) {
			sources = append(sources, arg)
			continue
		}
		fmt.Fprintf(progress, "Discovering pages from %s...\n", arg)
		pages, err := crawl.Discover(ctx, arg, fetcher, crawl.Options{MaxPages: cfg.MaxPages, Scoped: cfg.Scoped})
		if err != nil {
			return nil, fmt.Errorf("crawl %s: %w", arg, err)
		}
		fmt.Fprintf(progress, "Found %d pages\n", len(pages))
		for _, page := range pages {
			if !seen[page] {
				seen[page] = true
				sources = append(sources, page)
			}
		}
	}
	return sources, nil
}

// report writes successful results in input order and summarizes failures.
func report(results []result, writer *output.Writer, ext string, stdout, progress, stderr io.Writer) error {
	var errCount int
	for i, r := range results {
		if len(results) > 1 {
			fmt.Fprintf(progress, "[%d/%d] %s\n", i+1, len(results), r.source)
		}
		if r.err != nil {
			fmt.Fprintf(stderr, "  ✗ Error: %s: %v\n", r.source, r.err)
			errCount++
			continue
		}
		if r.fallback {
			fmt.Fprintf(progress, "  ! Malformed HTML, used fallback converter: %s\n", r.source)
		}

		if writer == nil {
			if _, err := stdout.Write(r.data); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			continue
		}
		path, err := writer.Write(r.source, r.data, ext)
		if err != nil {
			fmt.Fprintf(stderr, "  ✗ Write error: %v\n", err)
			errCount++
			continue
		}
		fmt.Fprintf(progress, "  ✓ Written: %s\n", path)
	}

	if errCount == len(results) {
		return fmt.Errorf("all %d inputs failed", errCount)
	}
	if errCount > 0 {
		fmt.Fprintf(stderr, "\n%d/%d inputs failed\n", errCount, len(results))
	}
	return nil
}

// pipeline holds the stages shared by all inputs of one run.
type pipeline struct {
	input      *inputReader
	extractor  core.Extractor // nil when extraction is off
	normalizer core.Normalizer
	renderer   core.Renderer
}

func newPipeline(cfg config.Config, renderCfg markdown.Config, renderer core.Renderer, stdin io.Reader) *pipeline {
	p := &pipeline{
		input:      newInputReader(cfg.Fetch, stdin),
		normalizer: normalize.New(renderCfg),
		renderer:   renderer,
	}
	if cfg.Fallback {
		p.normalizer = normalize.NewFallback(renderCfg)
	}
	if cfg.Extract.Enabled {
		p.extractor = extract.New(extract.Options{
			Containers: cfg.Extract.Containers,
			Noise:      cfg.Extract.Noise,
		})
	}
	return p
}

// result is the outcome for one input.
type result struct {
	source   string
	data     []byte
	fallback bool
	err      error
}

// runAll processes inputs concurrently, at most parallel at a time.
// Results are returned in input order, not completion order.
func (p *pipeline) runAll(ctx context.Context, sources []string, parallel int) []result {
	if parallel <= 0 {
		parallel = 1
	}

	results := make([]result, len(sources))
	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, source string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire semaphore slot
			defer func() { <-sem }() // release semaphore slot

			data, fallback, err := p.process(ctx, source)
			results[idx] = result{source: source, data: data, fallback: fallback, err: err}
		}(i, src)
	}

	wg.Wait()
	return results
}

// process runs a single input through the full pipeline.
func (p *pipeline) process(ctx context.Context, source string) ([]byte, bool, error) {
	// 1. Read or fetch
	html, err := p.input.read(ctx, source)
	if err != nil {
		return nil, false, fmt.Errorf("read: %w", err)
	}

	// 2. Extract main content
	content := html
	if p.extractor != nil {
		content, err = p.extractor.Extract(html)
		if err != nil {
			return nil, false, fmt.Errorf("extract: %w", err)
		}
	}

	// 3. Normalize to Markdown
	conv, err := p.normalizer.Normalize(ctx, content)
	if err != nil {
		return nil, false, fmt.Errorf("normalize: %w", err)
	}

	// 4. Render to output format
	doc := &core.Document{
		Metadata:   buildMetadata(source, html, conv.Tree),
		Conversion: *conv,
	}
	data, err := p.renderer.Render(doc)
	if err != nil {
		return nil, false, fmt.Errorf("render: %w", err)
	}
	return data, conv.Fallback, nil
}

// inputReader loads HTML from files, URLs and stdin. Stdin is read at most
// once and shared by every "-" input.
type inputReader struct {
	fetcher  core.Fetcher
	maxBytes int64

	stdin     io.Reader
	stdinOnce sync.Once
	stdinHTML string
	stdinErr  error
}

func newInputReader(cfg config.FetchConfig, stdin io.Reader) *inputReader {
	return &inputReader{
		fetcher: fetch.New(fetch.Options{
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
			MaxBytes:  cfg.MaxBytes,
		}),
		maxBytes: cfg.MaxBytes,
		stdin:    stdin,
	}
}

func (r *inputReader) read(ctx context.Context, source string) (string, error) {
	switch {
	case source == "-":
		r.stdinOnce.Do(func() {
			r.stdinHTML, r.stdinErr = r.decode(r.stdin)
		})
		return r.stdinHTML, r.stdinErr

	case output.IsURL(source):
		res, err := r.fetcher.Fetch(ctx, source)
		if err != nil {
			return "", err
		}
		return res.HTML, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return r.decode(f)
}

// decode reads a local document and converts it to UTF-8.
func (r *inputReader) decode(src io.Reader) (string, error) {
	maxBytes := r.maxBytes
	if maxBytes <= 0 {
		maxBytes = config.Default().Fetch.MaxBytes
	}
	body, err := fetch.ReadLimited(src, maxBytes)
	if err != nil {
		return "", err
	}
	return fetch.Decode(body, "")
}

// buildMetadata constructs PageMetadata from the input source, the raw
// HTML and the parsed tree.
func buildMetadata(source, html string, tree *node.Node) core.PageMetadata {
	meta := core.PageMetadata{
		Source:      source,
		ConvertedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if output.IsURL(source) {
		if parsed, err := url.Parse(source); err == nil {
			meta.URL = source
			meta.Domain = parsed.Host
			meta.Path = parsed.Path
		}
	}

	if tree != nil {
		tree.Walk(func(n *node.Node) bool {
			switch n.Kind {
			case node.HTML:
				if lang, ok := n.Attributes.Get("lang"); ok && meta.Language == "" {
					meta.Language = lang.String()
				}
			case node.Title:
				if meta.Title == "" {
					meta.Title = strings.TrimSpace(n.TextContent())
				}
				return false
			}
			return true
		})
	}

	// The tree lacks the head after extraction or a fallback conversion.
	if meta.Title == "" || meta.Language == "" {
		title, lang := extract.Head(html)
		if meta.Title == "" {
			meta.Title = title
		}
		if meta.Language == "" {
			meta.Language = lang
		}
	}
	return meta
}

// validateFlags checks that at most one output format is chosen and that
// --mirror and --stdout are not both specified.
func validateFlags() error {
	if flagMirror && flagStdout {
		return fmt.Errorf("--mirror and --stdout are mutually exclusive")
	}

	formatCount := 0
	for _, set := range []bool{flagMarkdown, flagJSON, flagPDF, flagHTML} {
		if set {
			formatCount++
		}
	}
	if formatCount > 1 {
		return fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}
	return nil
}

// selectedFormat returns the format named by flags, or "" when none is set.
func selectedFormat() string {
	switch {
	case flagMarkdown:
		return "markdown"
	case flagJSON:
		return "json"
	case flagPDF:
		return "pdf"
	case flagHTML:
		return "html"
	}
	return ""
}

// resolveConfig loads the config file, if any, and applies the flags the
// user set explicitly on top of it.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if format := selectedFormat(); format != "" {
		cfg.Format = format
	}
	if flags.Changed("ignore") {
		cfg.Ignore = flagIgnore
	}
	if flags.Changed("extract") {
		cfg.Extract.Enabled = flagExtract
	}
	if flags.Changed("fallback") {
		cfg.Fallback = flagFallback
	}
	if flags.Changed("front_matter") {
		cfg.FrontMatter = flagFrontMatter
	}
	if flags.Changed("output_dir") {
		cfg.OutputDir = flagOutputDir
	}
	if flags.Changed("mirror") {
		cfg.Mirror = flagMirror
	}
	if flags.Changed("chunk_size") {
		cfg.ChunkSize = flagChunkSize
	}
	if flags.Changed("crawl") {
		cfg.Crawl.Enabled = flagCrawl
	}
	if flags.Changed("max_pages") {
		cfg.Crawl.MaxPages = flagMaxPages
	}
	if flags.Changed("parallel") {
		cfg.Parallel = flagParallel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// selectRenderer creates the Renderer for the configured format.
func selectRenderer(cfg config.Config, renderCfg markdown.Config) (core.Renderer, error) {
	switch cfg.Format {
	case "markdown":
		return render.NewMarkdownRenderer(cfg.FrontMatter), nil
	case "json":
		return render.NewJSONRenderer(cfg.ChunkSize), nil
	case "pdf":
		return render.NewPDFRenderer(renderCfg), nil
	case "html":
		return render.NewHTMLRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", cfg.Format)
	}
}
