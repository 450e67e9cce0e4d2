// Package cli implements the baronboard command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/harrisonrobin/baronboard/pkg/config"
	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/google"
	"github.com/harrisonrobin/baronboard/pkg/i18n"
	"github.com/harrisonrobin/baronboard/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// rootOptions is the state shared by all commands of one invocation.
type rootOptions struct {
	cfgFile   string
	verbose   bool
	logFormat string

	// now is the only clock; commands read it once and pass the day down.
	now func() time.Time

	v        *viper.Viper
	cfg      *config.Config
	printer  *i18n.Printer
	logger   *zap.Logger
	undoLog  func()
	services *google.Services
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	o := &rootOptions{now: time.Now}
	cmd := newRootCmd(o)
	err := cmd.Execute()
	if o.undoLog != nil {
		o.undoLog()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", o.message(err))
		return 1
	}
	return 0
}

func newRootCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baronboard",
		Short: "Task spreadsheet dashboard",
		Long: `baronboard reads a task spreadsheet, works out the status of every task
from its dates and the CONFIRM FROM BARON column, and shows the result as a
dashboard.

Quick start:
  baronboard render -i tasks.xlsx -o dashboard.html   One-shot HTML report
  baronboard serve                                    Upload and filter in the browser
  baronboard summary -i tasks.xlsx                    Counters in the terminal
  baronboard push -i tasks.xlsx --calendar Tasks      Due dates to Google Calendar`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(o.verbose, o.logFormat)
			if err != nil {
				return err
			}
			o.logger = logger
			o.undoLog = logging.Install(logger)

			v, err := config.New(o.cfgFile)
			if err != nil {
				return err
			}
			o.v = v
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&o.cfgFile, "config", "", "config file (default is ~/.config/baronboard/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&o.logFormat, "log-format", "json", "log encoding: json or console")

	cmd.AddCommand(newRenderCmd(o))
	cmd.AddCommand(newServeCmd(o))
	cmd.AddCommand(newExportCmd(o))
	cmd.AddCommand(newSummaryCmd(o))
	cmd.AddCommand(newPushCmd(o))
	cmd.AddCommand(newAuthCmd(o))
	cmd.AddCommand(newConfigCmd(o))
	return cmd
}

// config binds the command's flags over the file and environment settings
// and decodes the result. Flags are named after config keys with dashes.
func (o *rootOptions) config(cmd *cobra.Command) (*config.Config, error) {
	for _, key := range config.Keys() {
		if f := cmd.Flags().Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
			if err := o.v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", f.Name, err)
			}
		}
	}
	cfg, err := config.Load(o.v)
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	o.printer = i18n.New(cfg.Locale)
	return cfg, nil
}

func (o *rootOptions) p() *i18n.Printer {
	if o.printer == nil {
		o.printer = i18n.New("en")
	}
	return o.printer
}

// message is the user-facing text for err: localized for load failures,
// as is otherwise.
func (o *rootOptions) message(err error) string {
	if errors.Is(err, extract.ErrUnreadable) || errors.Is(err, extract.ErrHeaderNotFound) {
		return o.p().Error(err)
	}
	return err.Error()
}

// googleServices authenticates on first use.
func (o *rootOptions) googleServices(ctx context.Context) (*google.Services, error) {
	if o.services != nil {
		return o.services, nil
	}
	s, err := google.NewServices(ctx)
	if err != nil {
		return nil, err
	}
	o.services = s
	return s, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	zap.S().Infof("wrote %s (%d bytes)", path, len(data))
	return nil
}
