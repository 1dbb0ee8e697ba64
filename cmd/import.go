package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifier/internal/config"
	"github.com/shaharia-lab/notifier/internal/service"
	"github.com/shaharia-lab/notifier/internal/trigger"
)

var (
	importOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	importSkip = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("-")
	importFail = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
)

// importOptions controls how trigger files are imported.
type importOptions struct {
	DryRun       bool
	SkipExisting bool
}

// importSummary counts the outcome of an import run.
type importSummary struct {
	Registered int
	Skipped    int
	Failed     int
}

// NewImportCmd returns the "import" subcommand that registers triggers from
// YAML or JSON files.
func NewImportCmd(cfg *config.AppConfig) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Register triggers from YAML or JSON files",
		Long: `Register triggers described in YAML or JSON files. A file holds either a
single trigger definition or a list of them, using the same fields as
POST /register.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sysLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

			rt, err := openRuntime(cmd.Context(), cfg, sysLogger)
			if err != nil {
				return err
			}
			defer rt.Close() //nolint:errcheck

			svc := service.NewTriggerService(rt.registry, nil, nil, nil, service.Options{}, sysLogger)
			sum, err := importFiles(cmd.Context(), svc, args, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d registered, %d skipped, %d failed\n", sum.Registered, sum.Skipped, sum.Failed)
			if sum.Failed > 0 {
				return fmt.Errorf("%d trigger(s) failed to import", sum.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate the files without registering anything")
	cmd.Flags().BoolVar(&opts.SkipExisting, "skip-existing", false, "Skip triggers whose name is already registered")
	return cmd
}

func importFiles(ctx context.Context, svc service.TriggerService, paths []string, opts importOptions, out io.Writer) (importSummary, error) {
	var sum importSummary
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			return sum, fmt.Errorf("reading %s: %w", path, err)
		}
		docs, err := registrationDocuments(data)
		if err != nil {
			return sum, fmt.Errorf("parsing %s: %w", path, err)
		}
		for i, doc := range docs {
			label := fmt.Sprintf("%s[%d]", path, i)
			importOne(ctx, svc, doc, label, opts, out, &sum)
		}
	}
	return sum, nil
}

func importOne(ctx context.Context, svc service.TriggerService, doc []byte, label string, opts importOptions, out io.Writer, sum *importSummary) {
	reg, err := trigger.ParseRegistration(doc)
	if err == nil && opts.DryRun {
		var def *trigger.Definition
		def, err = trigger.NewDefinition(reg)
		if err == nil {
			label = def.Name
		}
	}
	if err == nil && !opts.DryRun {
		var def *trigger.Definition
		def, err = svc.Register(ctx, reg)
		if err == nil {
			label = def.Name
		}
	}

	var conflict *trigger.ConflictError
	switch {
	case err == nil:
		sum.Registered++
		fmt.Fprintf(out, "%s %s\n", importOK, label)
	case opts.SkipExisting && errors.As(err, &conflict):
		sum.Skipped++
		fmt.Fprintf(out, "%s %s already registered\n", importSkip, conflict.Name)
	default:
		sum.Failed++
		fmt.Fprintf(out, "%s %s: %s\n", importFail, label, trigger.Message(err))
	}
}
