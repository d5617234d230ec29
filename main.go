package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var (
	// Input sources
	interactiveMode bool
	traverseLinks   bool
	linkDepth       int

	// Filtering
	includePatterns []string
	excludePatterns []string
	noIgnore        bool

	// Truncation
	truncateLines   int
	truncateMode    string
	truncateExclude []string

	// Sorting
	sortBy    string
	sortOrder string

	// Lenses
	lensName     string
	lensFilePath string
	listLenses   bool
	manifestOnly bool

	// Token budgeting
	tokenBudget    string
	budgetStrategy string

	// Tokenizer backend
	disableTokens  bool
	tokenizerType  string
	tokenizerModel string
	tokenizerFile  string

	// Output sinks
	outputFile      string
	copyToClipboard bool
	pdfOutputFile   string

	// Plugin scaffolding
	createPluginName string
	pluginPromptName string

	cfgFile string
)

// version is set via ldflags.
var version string = "dev"

var rootCmd = &cobra.Command{
	Use:   "pmenc [PATHS...]",
	Short: "pmenc serializes a project into a single Plus/Minus text stream.",
	Long: `pmenc walks local directories, git repositories and web URLs and
serializes their files into one annotated text stream for AI assistants,
with lens-based filtering, language-aware truncation and token budgeting.`,
	Version: version,
	Args:    cobra.ArbitraryArgs,
	RunE:    runEncoder,
}

func runEncoder(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	// Scaffolding flags produce output and exit without serializing.
	if createPluginName != "" {
		createPluginTemplate(os.Stdout, createPluginName)
		return nil
	}
	if pluginPromptName != "" {
		createPluginPrompt(os.Stdout, pluginPromptName)
		return nil
	}

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	lenses := NewLensManager()
	lenses.LoadCustom(cfg.Lenses)
	if lensFilePath != "" {
		custom, err := loadLensFile(lensFilePath)
		if err != nil {
			return err
		}
		lenses.LoadCustom(custom)
	}

	if listLenses {
		for _, name := range lenses.AvailableLenses() {
			lens, _ := lenses.Lens(name)
			fmt.Printf("%-14s %s\n", name, lens.Description)
		}
		return nil
	}

	if lensName != "" {
		if err := lenses.ApplyLens(lensName, cfg); err != nil {
			return err
		}
	}

	// Explicit flags beat everything the config and lens provided.
	if cmd.Flags().Changed("include") {
		cfg.IncludePatterns = includePatterns
	}
	if cmd.Flags().Changed("exclude") {
		cfg.IgnorePatterns = append(cfg.IgnorePatterns, excludePatterns...)
	}
	if cmd.Flags().Changed("truncate") {
		cfg.Truncate = truncateLines
	}
	if cmd.Flags().Changed("truncate-mode") {
		cfg.TruncateMode = truncateMode
	}
	if cmd.Flags().Changed("truncate-exclude") {
		cfg.TruncateExclude = truncateExclude
	}
	if cmd.Flags().Changed("sort-by") {
		cfg.SortBy = sortBy
	}
	if cmd.Flags().Changed("sort-order") {
		cfg.SortOrder = sortOrder
	}
	if noIgnore {
		cfg.RespectGitignore = false
	}

	if lenses.ActiveName() != "" {
		lenses.PrintManifest(os.Stderr)
	}
	if manifestOnly {
		return nil
	}

	if !disableTokens {
		tok, err := loadTokenizer(TokenizerOptions{Type: tokenizerType, Model: tokenizerModel, File: tokenizerFile})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: tokenizer unavailable (%v), using heuristic estimation\n", err)
		} else {
			setActiveTokenizer(tok)
			defer setActiveTokenizer(nil)
		}
	}

	inputPaths := args
	if interactiveMode {
		inputPaths, err = runInteractiveFinder(cfg)
		if err != nil {
			return err
		}
		if inputPaths == nil {
			return nil
		}
	}
	if len(inputPaths) == 0 {
		inputPaths = []string{"."}
	}

	var tempDirs []string
	defer func() {
		for _, dir := range tempDirs {
			_ = os.RemoveAll(dir)
		}
	}()

	var files []FileRecord
	failedPaths := 0
	for _, input := range inputPaths {
		var collected []FileRecord
		var err error
		switch {
		case isWebURL(input):
			if traverseLinks {
				visited := make(map[string]bool)
				collected, err = processWebURLRecursive(input, 0, linkDepth, visited)
			} else {
				var rec FileRecord
				rec, err = processWebURL(input)
				if err == nil {
					collected = []FileRecord{rec}
				}
			}
		case isGitURL(input):
			var tempDir string
			tempDir, err = cloneGitRepo(input)
			if err == nil {
				tempDirs = append(tempDirs, tempDir)
				collected, err = collectFiles(tempDir, cfg)
			}
		default:
			collected, err = collectFiles(input, cfg)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", input, err)
			failedPaths++
			continue
		}
		files = append(files, collected...)
	}

	registry := NewAnalyzerRegistry()

	if tokenBudget != "" {
		budget, err := parseTokenBudget(tokenBudget)
		if err != nil {
			return err
		}
		if budget > 0 {
			var report *BudgetReport
			files, report = applyTokenBudget(files, budget, lenses, budgetStrategy, registry)
			report.PrintReport(os.Stderr)
		}
	}

	final := finalizeFiles(files, cfg, lenses, registry)

	if pdfOutputFile != "" {
		summary, _ := writeSerialized(io.Discard, final)
		if err := generatePDF(final, summary, pdfOutputFile); err != nil {
			return err
		}
	} else {
		var buf strings.Builder
		summary, err := writeSerialized(&buf, final)
		if err != nil {
			return err
		}
		output := buf.String()

		switch {
		case outputFile != "":
			if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
				return fmt.Errorf("error writing to file %s: %w", outputFile, err)
			}
			fmt.Fprintf(os.Stderr, "Output saved to %s\n", outputFile)
		case copyToClipboard:
			if err := clipboard.WriteAll(output); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing to clipboard: %v\n", err)
				fmt.Print(output)
			} else {
				fmt.Fprintln(os.Stderr, "Output copied to clipboard.")
			}
		default:
			fmt.Print(output)
		}

		fmt.Fprintf(os.Stderr, "\nSerialized %d files (%d bytes, ~%d tokens).\n",
			summary.TotalFiles, summary.TotalBytes, summary.TotalTokens)
	}

	if failedPaths > 0 {
		fmt.Fprintf(os.Stderr, "Paths failed to process: %d\n", failedPaths)
	}
	return nil
}

func init() {
	// Input sources
	rootCmd.Flags().BoolVar(&interactiveMode, "interactive", false, "Open an interactive fuzzy picker for input paths")
	rootCmd.Flags().BoolVar(&traverseLinks, "traverse-links", false, "Follow links when processing web URLs")
	rootCmd.Flags().IntVar(&linkDepth, "link-depth", 1, "Maximum depth when traversing web links")

	// Filtering
	rootCmd.Flags().StringSliceVar(&includePatterns, "include", nil, "Glob patterns for files to include (replaces config includes)")
	rootCmd.Flags().StringSliceVar(&excludePatterns, "exclude", nil, "Glob patterns for files/dirs to exclude (adds to config excludes)")
	rootCmd.Flags().BoolVar(&noIgnore, "no-ignore", false, "Don't respect .gitignore files")

	// Truncation
	rootCmd.Flags().IntVar(&truncateLines, "truncate", 0, "Maximum lines per file (0 disables truncation)")
	rootCmd.Flags().StringVar(&truncateMode, "truncate-mode", "simple", "Truncation mode: simple, smart, or structure")
	rootCmd.Flags().StringSliceVar(&truncateExclude, "truncate-exclude", nil, "Patterns whose files are never truncated")

	// Sorting
	rootCmd.Flags().StringVar(&sortBy, "sort-by", "name", "Sort key: name, mtime, or ctime")
	rootCmd.Flags().StringVar(&sortOrder, "sort-order", "asc", "Sort order: asc or desc")

	// Lenses
	rootCmd.Flags().StringVar(&lensName, "lens", "", "Apply a named lens (see --list-lenses)")
	rootCmd.Flags().StringVar(&lensFilePath, "lens-file", "", "Load additional lens definitions from a YAML/JSON file")
	rootCmd.Flags().BoolVar(&listLenses, "list-lenses", false, "List available lenses and exit")
	rootCmd.Flags().BoolVar(&manifestOnly, "manifest", false, "Print the lens manifest and exit without serializing")

	// Token budgeting
	rootCmd.Flags().StringVar(&tokenBudget, "token-budget", "", "Token budget, e.g. 100000, 100k, 1M (empty disables)")
	rootCmd.Flags().StringVar(&budgetStrategy, "budget-strategy", "drop", "Budget strategy: drop, truncate, or hybrid")

	// Tokenizer backend
	rootCmd.Flags().BoolVar(&disableTokens, "no-tokens", false, "Skip loading a tokenizer (heuristic estimation only)")
	rootCmd.Flags().StringVar(&tokenizerType, "tokenizer", "tiktoken", "Tokenizer backend: tiktoken or huggingface")
	rootCmd.Flags().StringVar(&tokenizerModel, "model", "", "Model name for the tokenizer (e.g. gpt-4o, gpt2)")
	rootCmd.Flags().StringVar(&tokenizerFile, "tokenizer-file", "", "Path to a local tokenizer.json (huggingface)")

	// Output sinks
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the stream to a file instead of stdout")
	rootCmd.Flags().BoolVarP(&copyToClipboard, "clipboard", "c", false, "Copy the stream to the clipboard")
	rootCmd.Flags().StringVar(&pdfOutputFile, "pdf", "", "Render the stream as a syntax-highlighted PDF")

	// Plugin scaffolding
	rootCmd.Flags().StringVar(&createPluginName, "create-plugin", "", "Print a skeleton analyzer for a new language and exit")
	rootCmd.Flags().StringVar(&pluginPromptName, "plugin-prompt", "", "Print an AI prompt for writing a new analyzer and exit")

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "Config file (default .pmenc.yaml in . or ~/.config/pmenc)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
