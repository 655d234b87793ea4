package cli

import "flag"

const defaultConfigPath = "./envinfer.toml"

type cliOptions struct {
	configPath     string
	dir            string
	dirSet         bool
	noBaseReqs     bool
	noConda        bool
	quiet          bool
	watch          bool
	ui             bool
	history        bool
	since          string
	historyWindow  string
	historyTSV     string
	historyJSON    string
	sarifPath      string
	reportMarkdown bool
	verbose        bool
	version        bool
	args           []string
}

func parseOptions(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("envinfer", flag.ContinueOnError)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.dir, "dir", ".", "Project directory to analyze")
	fs.BoolVar(&opts.noBaseReqs, "no-base-reqs", false, "Skip base_requirements.txt generation (no registry lookups)")
	fs.BoolVar(&opts.noConda, "no-conda", false, "Skip environment.yml generation")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress the terminal report")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and re-analyze on file changes")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode (implies -watch)")
	fs.BoolVar(&opts.history, "history", false, "Enable local history snapshots and trend reporting")
	fs.StringVar(&opts.since, "since", "", "Include historical snapshots at/after this timestamp (RFC3339 or YYYY-MM-DD)")
	fs.StringVar(&opts.historyWindow, "history-window", "24h", "Moving-window duration for trend summaries (requires -history)")
	fs.StringVar(&opts.historyTSV, "history-tsv", "", "Write trend report TSV to this path (requires -history)")
	fs.StringVar(&opts.historyJSON, "history-json", "", "Write trend report JSON to this path (requires -history)")
	fs.StringVar(&opts.sarifPath, "sarif", "", "Write a SARIF report of parse failures and unknown imports to this path")
	fs.BoolVar(&opts.reportMarkdown, "report-markdown", false, "Write the markdown report even when output.markdown is not configured")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "dir" {
			opts.dirSet = true
		}
	})

	opts.args = fs.Args()
	return opts, nil
}
