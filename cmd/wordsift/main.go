package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriscorrea/wordsift/internal/app"
	"github.com/chriscorrea/wordsift/internal/cache"
	"github.com/chriscorrea/wordsift/internal/config"
	"github.com/chriscorrea/wordsift/internal/counter"
	"github.com/chriscorrea/wordsift/internal/spinner"
	"github.com/chriscorrea/wordsift/internal/stopwords"
)

// setupLogger configures the default slog logger based on debug mode
func setupLogger(debug bool) {
	var level slog.Level
	if debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// warn prints a non-fatal message unless --quiet is set
func warn(cmd *cobra.Command, format string, args ...any) {
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Warning: "+format+"\n", args...)
}

// newGenerator wires the cache from the environment and the optional extra counter
func newGenerator(cmd *cobra.Command, sp *spinner.Spinner) (*app.Generator, error) {
	cacheOpts, err := config.LoadCacheOptions(nil)
	if err != nil {
		warn(cmd, "extraction cache disabled: %v", err)
	}

	opts := []app.Option{app.WithProgress(func(stage string) { sp.Message(stage + "...") })}

	if method, _ := cmd.Flags().GetString("count"); method != "" {
		m, err := counter.ParseMethod(method)
		if err != nil {
			return nil, err
		}
		c, err := counter.NewCounter(m)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", m, err)
		}
		opts = append(opts, app.WithCounter(c))
	}

	return app.NewGenerator(cache.New(cacheOpts), opts...), nil
}

var rootCmd = &cobra.Command{
	Use:   "wordsift [input]",
	Short: "Turn a document into weighted, sized words for a word cloud",
	Long: `Wordsift reads a JSON export, an HTML page, or plain text, counts its words,
and produces a weighted, sized word list ready for a word-cloud renderer.
Input may be a local file, an http(s) URL, or standard input.

Examples:
  wordsift posts.json
  wordsift --boost "kingdom of god=3.5" --adjust amen=-2 sermon.txt
  curl -s https://example.com/feed.json | wordsift --format text`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		setupLogger(debug)

		req, err := buildRequest(cmd, args)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		formatName, _ := cmd.Flags().GetString("format")
		format, err := app.ParseFormat(formatName)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// create context with signal handling for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		quiet, _ := cmd.Flags().GetBool("quiet")
		sp := spinner.ForTerminal(os.Stderr, "Starting...", quiet || debug)

		generator, err := newGenerator(cmd, sp)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		sp.Start(ctx)
		result, err := generator.Run(ctx, req)
		sp.Stop()
		if err != nil {
			var verr *app.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("invalid request: %w", err)
			}
			return fmt.Errorf("wordsift failed: %w", err)
		}

		for _, w := range result.Warnings {
			warn(cmd, "%s", w)
		}
		return app.Render(cmd.OutOrStdout(), result, format)
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the predefined stopword groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("words")
		out := cmd.OutOrStdout()
		for _, name := range stopwords.Groups() {
			words, _ := stopwords.Words(name)
			fmt.Fprintf(out, "%-14s %3d words\n", name, len(words))
			if verbose {
				fmt.Fprintf(out, "  %s\n", strings.Join(words, " "))
			}
		}
		return nil
	},
}

// addRootFlags registers the generation flags on cmd.
func addRootFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	// input
	flags.StringP("input-type", "t", "auto", "Input type: auto, json, text or html")
	flags.StringSlice("json-key", nil, "JSON key whose string values are read (repeatable; default: plaintext, text, body, ...)")
	flags.Bool("json-all-strings", false, "Read every string value in a JSON input")
	flags.StringP("selector", "s", "", "CSS selector for HTML input")
	flags.BoolP("include-all", "i", false, "Read the whole HTML page instead of the main article")
	flags.StringP("config", "c", "", "YAML request preset; flags override its values")

	// filtering
	flags.StringSlice("stop-group", nil, "Enable a stopword group (repeatable; default: all groups)")
	flags.StringSlice("disable-stop-group", nil, "Disable a stopword group (repeatable)")
	flags.StringSlice("extra-stop", nil, "Additional stopword (repeatable)")
	flags.StringSlice("keep", nil, "Word that is never removed, even if short or a stopword (repeatable)")
	flags.Int("min-length", 0, "Minimum token length in characters (default 2)")
	flags.Bool("merge-variants", false, "Count inflected forms sharing a stem as one word")

	// weighting
	flags.StringArray("boost", nil, "Boost multiplier for a word or phrase, e.g. 'kingdom of god=3.5' (repeatable)")
	flags.StringArray("adjust", nil, "Manual weight adjustment, e.g. 'amen=-2' (repeatable)")
	flags.Bool("no-default-boosts", false, "Do not apply the built-in boost table")
	flags.Bool("no-references", false, "Disable scripture reference detection")
	flags.Int("reference-weight", app.DefaultReferenceWeight, "Bonus weight per detected reference")

	// sizing
	flags.Int("max-items", app.DefaultMaxItems, "Maximum number of words in the cloud")
	flags.Int("min-font", app.DefaultMinFontSize, "Smallest font size in pixels")
	flags.Int("max-font", app.DefaultMaxFontSize, "Largest font size in pixels")
	flags.Float64("curve-power", app.DefaultCurvePower, "Size curve exponent (<1 lifts small words)")
	flags.Bool("analysis-only", false, "Report weights and counts without sizing")

	// output
	flags.StringP("format", "f", "json", "Output format: json or text")
	flags.String("count", "", "Also measure the extracted text in tokens, words, characters or sentences")
	flags.Bool("no-cache", false, "Bypass the extraction cache for this run")
	flags.BoolP("quiet", "q", false, "Suppress warnings and progress output")
	flags.BoolP("debug", "D", false, "Enable debug logging")
	_ = flags.MarkHidden("debug")

	cmd.MarkFlagsMutuallyExclusive("selector", "include-all")
}

func init() {
	addRootFlags(rootCmd)

	groupsCmd.Flags().BoolP("words", "w", false, "Print the words of every group")
	rootCmd.AddCommand(groupsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
