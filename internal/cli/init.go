package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daryltucker/prompt-tuner/internal/assets"
	"github.com/daryltucker/prompt-tuner/internal/output"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter config and example experiment",
		Long: `Writes prompt_tuner.yaml and basic_experiment.yaml into dir (default: the
current directory). Existing files are left alone unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetDir := "."
			if len(args) == 1 {
				targetDir = args[0]
			}
			if err := os.MkdirAll(targetDir, 0755); err != nil {
				return fmt.Errorf("failed to create target directory %s: %w", targetDir, err)
			}

			entries, err := fs.ReadDir(assets.Templates, "templates")
			if err != nil {
				return fmt.Errorf("failed to read embedded templates: %w", err)
			}

			count := 0
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}

				content, err := fs.ReadFile(assets.Templates, "templates/"+entry.Name())
				if err != nil {
					return fmt.Errorf("failed to read embedded file %s: %w", entry.Name(), err)
				}

				targetPath := filepath.Join(targetDir, entry.Name())
				flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
				if force {
					flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
				}
				f, err := os.OpenFile(targetPath, flags, 0644)
				if errors.Is(err, fs.ErrExist) {
					output.Logger.Warn("Skipping existing file", "path", targetPath)
					continue
				}
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", targetPath, err)
				}
				_, err = f.Write(content)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", targetPath, err)
				}

				output.Logger.Info("Wrote file", "path", targetPath)
				count++
			}

			output.Logger.Info("Init complete", "total_files", count)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")
	return cmd
}
