package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/tendant/simple-blog/pkg/blogcontent"
	"github.com/tendant/simple-blog/pkg/blogcontent/config"
	"github.com/tendant/simple-blog/pkg/blogcontent/scan"
)

const usage = `Simple Blog Content Check CLI

Loads the blog content through the same backend the server uses and reports
posts that would render poorly.

USAGE:
  blogcheck <command> [options]

COMMANDS:
  lint      Report posts with an empty title, no date or an unknown author
  list      List posts, most recent first
  tags      List the distinct tags with their post counts
  env       Describe the environment variables

ENVIRONMENT VARIABLES:
  STORAGE_TYPE      local (default) or s3
  CONTENT_DIR       Local content directory (default: content)
  S3_BUCKET_NAME    Bucket holding the content (required for s3)

  Run 'blogcheck env' for the full list.
  Configuration can be loaded from a .env file in the current directory.

EXAMPLES:
  # Lint every post
  blogcheck lint

  # Lint the posts of one tag, ignoring unknown authors
  blogcheck lint --tag=golang --allow-unresolved-authors

  # List posts as JSON
  blogcheck list --json

OPTIONS:
  --tag=<tag>                   Only check posts carrying this tag
  --allow-unresolved-authors    Do not report unknown authors (lint only)
  --json                        Output as JSON
`

type options struct {
	tag                    string
	allowUnresolvedAuthors bool
	useJSON                bool
}

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	if command == "help" || command == "--help" || command == "-h" {
		fmt.Print(usage)
		os.Exit(0)
	}
	if command == "env" {
		fmt.Println(config.EnvUsage())
		os.Exit(0)
	}

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx := context.Background()
	svc, err := cfg.BuildService(ctx)
	if err != nil {
		log.Fatalf("Failed to build content service: %v", err)
	}

	opts := parseOptions(os.Args[2:])

	switch command {
	case "lint":
		os.Exit(handleLint(ctx, svc, opts))
	case "list":
		handleList(ctx, svc, opts)
	case "tags":
		handleTags(ctx, svc, opts)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func parseOptions(args []string) options {
	var opts options
	for _, arg := range args {
		key, value := parseFlag(arg)
		switch key {
		case "tag":
			opts.tag = value
		case "allow-unresolved-authors":
			opts.allowUnresolvedAuthors = value != "false"
		case "json":
			opts.useJSON = value != "false"
		}
	}
	return opts
}

func parseFlag(arg string) (string, string) {
	if !strings.HasPrefix(arg, "--") || len(arg) == 2 {
		return "", ""
	}
	key, value, found := strings.Cut(arg[2:], "=")
	if !found {
		return key, "true"
	}
	return key, value
}

type lintReport struct {
	Backend  string            `json:"backend"`
	Checked  int64             `json:"checked"`
	Passed   int64             `json:"passed"`
	Failed   int64             `json:"failed"`
	Problems map[string]string `json:"problems"`
}

// handleLint returns the process exit code: 2 when any post has problems
func handleLint(ctx context.Context, svc *blogcontent.Service, opts options) int {
	result, err := scan.New(svc).Scan(ctx, scan.ScanOptions{
		Tag:       opts.tag,
		Processor: scan.LintProcessor{AllowUnresolvedAuthors: opts.allowUnresolvedAuthors},
	})
	if err != nil {
		log.Fatalf("Failed to scan posts: %v", err)
	}

	report := lintReport{
		Backend:  svc.BackendName(),
		Checked:  result.TotalFound,
		Passed:   result.TotalProcessed,
		Failed:   result.TotalFailed,
		Problems: make(map[string]string, len(result.Failures)),
	}
	for slug, err := range result.Failures {
		report.Problems[slug] = strings.ReplaceAll(err.Error(), "\n", "; ")
	}

	if opts.useJSON {
		printJSON(report)
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SLUG\tPROBLEMS\n")
		for _, slug := range result.FailedSlugs {
			fmt.Fprintf(w, "%s\t%s\n", slug, report.Problems[slug])
		}
		w.Flush()
		fmt.Printf("\nChecked %d posts on %s backend: %d passed, %d with problems\n",
			report.Checked, report.Backend, report.Passed, report.Failed)
	}

	if result.TotalFailed > 0 {
		return 2
	}
	return 0
}

func handleList(ctx context.Context, svc *blogcontent.Service, opts options) {
	var posts []blogcontent.Post
	var err error
	if opts.tag != "" {
		posts, err = svc.PostsByTag(ctx, opts.tag)
	} else {
		posts, err = svc.AllPosts(ctx)
	}
	if err != nil {
		log.Fatalf("Failed to list posts: %v", err)
	}

	if opts.useJSON {
		summaries := make([]blogcontent.PostSummary, 0, len(posts))
		for _, p := range posts {
			summaries = append(summaries, p.PostSummary)
		}
		printJSON(summaries)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SLUG\tTITLE\tDATE\tAUTHOR\tTAGS\n")
	for _, p := range posts {
		date := p.Date
		if p.DateDefaulted {
			date += " (default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.Slug,
			truncate(p.Title, 40),
			date,
			orDash(p.Author.Name),
			orDash(strings.Join(p.Tags, ",")),
		)
	}
	w.Flush()
	fmt.Printf("\nTotal: %d posts\n", len(posts))
}

func handleTags(ctx context.Context, svc *blogcontent.Service, opts options) {
	posts, err := svc.AllPosts(ctx)
	if err != nil {
		log.Fatalf("Failed to load posts: %v", err)
	}

	counts := make(map[string]int)
	for _, p := range posts {
		for _, tag := range p.Tags {
			counts[tag]++
		}
	}
	tags := blogcontent.CollectTags(posts)

	if opts.useJSON {
		printJSON(counts)
		return
	}

	sort.SliceStable(tags, func(i, j int) bool { return counts[tags[i]] > counts[tags[j]] })
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TAG\tPOSTS\n")
	for _, tag := range tags {
		fmt.Fprintf(w, "%s\t%d\n", tag, counts[tag])
	}
	w.Flush()
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
