package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"redmine-upload/pkg/redmine"
)

func newPublishCmd(opts *rootOptions) *cobra.Command {
	var (
		meta     fileFlags
		filePath string
	)

	cmd := &cobra.Command{
		Use:   "publish [file]",
		Short: "Upload a file and attach it to a project's Files in one go",
		Long: `Upload a file and attach it to the Files section of a project.

The two steps are not transactional. When the attach step fails the upload
token is still printed so the orphaned upload can be attached by hand.

Examples:
  redmine-upload publish --project mobile build/app-release.apk
  redmine-upload publish -p mobile -f app.ipa --version 12 --description "Release 1.4.0"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta.apply(cmd, opts.cfg)
			overrideString(cmd.Flags().Changed("file"), &opts.cfg.File.Path, filePath)
			if len(args) == 1 {
				opts.cfg.File.Path = args[0]
			}
			return runPublish(cmd, opts)
		},
	}

	meta.register(cmd)
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Local path of the file to upload (FILE_PATH)")

	return cmd
}

func runPublish(cmd *cobra.Command, opts *rootOptions) error {
	path := opts.cfg.File.Path
	if path == "" {
		return fmt.Errorf("a file to upload is required (argument, --file or FILE_PATH)")
	}
	project := opts.cfg.Redmine.Project
	if project == "" {
		return fmt.Errorf("a project is required (--project or REDMINE_PROJECT)")
	}

	client, err := opts.newClient()
	if err != nil {
		return err
	}

	meta := opts.cfg.AttachmentRequest()
	if meta.Filename == "" {
		meta.Filename = filepath.Base(path)
	}

	progress := newProgressPrinter(cmd.ErrOrStderr(), filepath.Base(path), isTerminal(cmd.ErrOrStderr()))
	token, err := redmine.Publish(cmd.Context(), client, client, project, path, meta, progress.Update)
	progress.Done()

	if token != "" {
		printResult(cmd.OutOrStdout(), token.String(), meta.Filename)
	}
	if err != nil {
		if token != "" {
			printWarning(cmd.ErrOrStderr(), "Upload %s was released but is not attached to %s", token, project)
		}
		return err
	}

	printSuccess(cmd.ErrOrStderr(), "Published %s to project %s", meta.Filename, project)
	return nil
}
