package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tordrt/myschema"
	"github.com/tordrt/myschema/internal/config"
	"github.com/tordrt/myschema/internal/formatter"
	"github.com/tordrt/myschema/internal/logging"
)

var (
	dbURL     string
	host      string
	port      int
	user      string
	password  string
	database  string
	logLevel  string
	logFormat string
	strict    bool

	connectTimeout time.Duration

	outputFile string
	outputDir  string
	format     string
	tables     string
	exclude    string
	schemaName string

	run    bool
	dryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "myschema",
	Short: "Capture MySQL schemas as documents and sync databases to them",
	Long: `MySchema dumps a live MySQL schema into a portable JSON, YAML, XLSX or CSV document
and writes such a document back, creating the database when missing and
applying the minimal ordered set of DDL statements to reach it.`,
	SilenceUsage: true,
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Capture a live schema into a document",
	Args:  cobra.NoArgs,
	RunE:  runDump,
}

var writeCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Bring a MySQL database in line with a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runWrite,
}

var diffCmd = &cobra.Command{
	Use:   "diff <current> <desired>",
	Short: "Print the statements that turn one document into another",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbURL, "url", "", "Connection URL (mysql://, postgres:// or sqlite://), overrides the connection flags")
	pf.StringVar(&host, "host", "", "MySQL host (env MYSCHEMA_HOST, default 127.0.0.1)")
	pf.IntVarP(&port, "port", "P", 0, "MySQL port (env MYSCHEMA_PORT, default 3306)")
	pf.StringVarP(&user, "user", "u", "", "MySQL user (env MYSCHEMA_USER, default root)")
	pf.StringVarP(&password, "password", "p", "", "MySQL password (env MYSCHEMA_PASSWORD)")
	pf.StringVarP(&database, "database", "D", "", "Database name (env MYSCHEMA_DATABASE)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	pf.DurationVar(&connectTimeout, "connect-timeout", 0, "MySQL dial timeout (env MYSCHEMA_CONNECT_TIMEOUT, default 10s)")
	pf.BoolVar(&strict, "strict", false, "Fail on unsafe engine, collation or index type tokens instead of dropping them")

	dumpCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (.json, .yaml, .xlsx, .csv; default: stdout)")
	dumpCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for one CSV file per object")
	dumpCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json, yaml, xlsx, csv, text or markdown (default: from the file extension, json on stdout)")
	dumpCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	dumpCmd.Flags().StringVar(&exclude, "exclude", "", "Tables to leave out (comma-separated)")
	dumpCmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Schema to read (default: public for PostgreSQL, the database for MySQL)")

	writeCmd.Flags().BoolVar(&run, "run", false, "Apply without asking when the database already exists")
	writeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan and change nothing")

	diffCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the statements to a file (default: stdout)")

	rootCmd.AddCommand(dumpCmd, writeCmd, diffCmd)
}

// loadConfig resolves flags over environment over defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	overrides := map[string]any{
		"host":       host,
		"user":       user,
		"password":   password,
		"database":   database,
		"log-level":  logLevel,
		"log-format": logFormat,
	}
	if cmd.Flags().Changed("port") {
		overrides["port"] = port
	}
	if cmd.Flags().Changed("connect-timeout") {
		overrides["connect-timeout"] = connectTimeout
	}
	return config.LoadWithOverrides(overrides)
}

func runDump(cmd *cobra.Command, args []string) error {
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(cfg)

	url := dbURL
	if url == "" {
		if cfg.Database == "" {
			return fmt.Errorf("a database is required (--database or MYSCHEMA_DATABASE)")
		}
		url = "mysql://" + cfg.MySQLDSN(cfg.Database)
	}

	// Resolve the output format before touching the database
	var outFormat formatter.Format
	switch {
	case outputDir != "":
		outFormat = formatter.FormatTabular
	case outputFile != "":
		if outFormat, err = resolveFormat(format, outputFile); err != nil {
			return err
		}
	default:
		if outFormat, err = resolveFormat(format, ""); err != nil {
			return err
		}
	}

	doc, err := myschema.Dump(cmd.Context(), url, &myschema.Options{
		Tables:        parseTableList(tables),
		ExcludeTables: parseTableList(exclude),
		SchemaName:    schemaName,
	})
	if err != nil {
		return fmt.Errorf("failed to extract schema: %w", err)
	}

	path := outputFile
	if outputDir != "" {
		path = outputDir
	}
	if path == "" {
		return myschema.FormatDocument(doc, cmd.OutOrStdout(), outFormat)
	}

	if err := myschema.WriteDocument(doc, path, outFormat); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info().Str("path", path).Int("objects", len(doc.Objects)).Msg("dump complete")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Dump complete: %s\n", path)
	return nil
}

func runWrite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(cfg)

	doc, err := myschema.ReadDocument(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	url := dbURL
	if url == "" {
		url = "mysql://" + cfg.MySQLDSN("")
	}

	opts := &myschema.WriteOptions{
		Database: cfg.Database,
		DryRun:   dryRun,
		Strict:   strict,
		Logger:   logger,
	}
	if !run {
		opts.Confirm = func(db string, statements int) bool {
			question := fmt.Sprintf("Database `%s` already exists. Apply %d statement(s)?", db, statements)
			return confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), question)
		}
	}

	res, err := myschema.Write(cmd.Context(), url, doc, opts)
	return reportWrite(cmd.OutOrStdout(), logger, res, err)
}

func reportWrite(out io.Writer, logger zerolog.Logger, res *myschema.WriteResult, err error) error {
	if res != nil && res.Created {
		_, _ = fmt.Fprintf(out, "Created database `%s`\n", res.Database)
	}
	if err != nil {
		if res != nil && len(res.Statements) > 0 {
			logger.Warn().Int("applied", res.Executed).Int("planned", len(res.Statements)).Msg("write stopped")
		}
		return err
	}

	switch {
	case dryRun:
		return formatter.NewReportFormatter(out).Format(res.Statements)
	case len(res.Statements) == 0:
		_, _ = fmt.Fprintln(out, formatter.NoChanges)
	case res.Aborted:
		_, _ = fmt.Fprintln(out, "Aborted by user.")
	default:
		_, _ = fmt.Fprintf(out, "Write complete: %d statement(s) applied.\n", res.Executed)
	}
	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	current, err := myschema.ReadDocument(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	desired, err := myschema.ReadDocument(args[1])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}

	stmts, err := myschema.Plan(cmd.Context(), current, desired, strict)
	if err != nil {
		return err
	}

	writer := cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	return formatter.NewReportFormatter(writer).Format(stmts)
}

// resolveFormat prefers an explicit --format, then the file extension.
// Standard output defaults to JSON.
func resolveFormat(flag, path string) (formatter.Format, error) {
	if flag != "" {
		return formatter.ParseFormat(flag)
	}
	if path == "" {
		return formatter.FormatJSON, nil
	}
	return formatter.DetectFormat(path)
}

func parseTableList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	list := strings.Split(s, ",")
	for i, t := range list {
		list[i] = strings.TrimSpace(t)
	}
	return list
}

// confirm asks a yes/no question; anything but y or yes is a no
func confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
