package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/msefunds/internal/config"
)

//go:embed templates/msefunds.yaml
var configTemplate []byte

// configFileName is where init writes unless -o says otherwise.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented configuration file with the defaults",
		Long: `Init writes a commented .msefunds file holding every default:
paths, history length, retry timing and the portal selectors.

msefunds reads .msefunds from the working directory, or the file given
with --config. Adjust the portal section when the exchange redesigns
its page.

Examples:
  # Write .msefunds here
  msefunds init

  # Write somewhere else
  msefunds init -o configs/msefunds.yaml

  # Replace an existing file
  msefunds init -f

  # Print the template instead of writing it
  msefunds init --stdout > my.yaml`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Where to write the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Replace the file if it exists")
	cmd.Flags().Bool("stdout", false,
		"Print the template to standard output and write nothing")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	toStdout, err := flags.GetBool("stdout")
	if err != nil {
		return err
	}
	if toStdout {
		_, err := cmd.OutOrStdout().Write(configTemplate)
		return err
	}

	path, err := flags.GetString("output")
	if err != nil {
		return err
	}
	force, err := flags.GetBool("force")
	if err != nil {
		return err
	}

	if err := writeTemplate(path, force); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nTry it with: msefunds crawl --config %s\n", path, path)
	return nil
}

// writeTemplate writes the template to path. Without force an existing
// file is never touched.
func writeTemplate(path string, force bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	mode := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		mode = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, mode, 0600) //nolint:gosec // User-provided output path is intentional
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists (use -f to replace it)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	if _, err := f.Write(configTemplate); err != nil {
		_ = f.Close() //nolint:errcheck // The write error is reported
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return f.Close()
}
