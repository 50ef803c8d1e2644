package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"redmine-upload/pkg/redmine"
)

func newUploadCmd(opts *rootOptions) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload file content and print the released token",
		Long: `Stream a local file to POST /uploads.json and print the upload token.

The token can be passed to "attach" later, or to any other Redmine call that
accepts uploads. Output is shell-evaluable:

  eval "$(redmine-upload upload build/app-release.apk)"
  redmine-upload attach --project mobile --token "$REDMINE_UPLOAD_FILE_TOKEN"

Flags:
  --file=PATH    Local file to upload (FILE_PATH); may also be given as argument`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrideString(cmd.Flags().Changed("file"), &opts.cfg.File.Path, filePath)
			if len(args) == 1 {
				opts.cfg.File.Path = args[0]
			}
			return runUpload(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Local path of the file to upload")

	return cmd
}

func runUpload(cmd *cobra.Command, opts *rootOptions) error {
	path := opts.cfg.File.Path
	if path == "" {
		return fmt.Errorf("a file to upload is required (argument, --file or FILE_PATH)")
	}

	client, err := opts.newClient()
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	token, err := uploadWithProgress(cmd, client, path, name)
	if err != nil {
		return err
	}

	printSuccess(cmd.ErrOrStderr(), "Content uploaded! File token released: %s", token)
	printResult(cmd.OutOrStdout(), token.String(), name)
	return nil
}

func uploadWithProgress(cmd *cobra.Command, uploader redmine.ContentUploader, path, name string) (redmine.UploadToken, error) {
	progress := newProgressPrinter(cmd.ErrOrStderr(), name, isTerminal(cmd.ErrOrStderr()))
	token, err := uploader.Upload(cmd.Context(), path, progress.Update)
	progress.Done()
	return token, err
}
