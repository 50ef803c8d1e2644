package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"redmine-upload/pkg/config"
)

// fileFlags are the attach metadata flags shared by attach and publish.
type fileFlags struct {
	project     string
	name        string
	version     string
	description string
}

func (f *fileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "Redmine project identifier (REDMINE_PROJECT)")
	cmd.Flags().StringVar(&f.name, "name", "", "File name shown in Redmine (FILE_NAME)")
	cmd.Flags().StringVar(&f.version, "version", "", "Redmine version id to file under (FILE_VERSION)")
	cmd.Flags().StringVar(&f.description, "description", "", "File description (FILE_DESCRIPTION)")
}

func (f *fileFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	overrideString(flags.Changed("project"), &cfg.Redmine.Project, f.project)
	overrideString(flags.Changed("name"), &cfg.File.Name, f.name)
	overrideString(flags.Changed("version"), &cfg.File.Version, f.version)
	overrideString(flags.Changed("description"), &cfg.File.Description, f.description)
}

func newAttachCmd(opts *rootOptions) *cobra.Command {
	var (
		meta  fileFlags
		token string
	)

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach a previously uploaded token to a project's Files",
		Long: `Bind an upload token to the Files section of a Redmine project with
POST /projects/<project>/files.json.

Examples:
  redmine-upload attach --project mobile --token 7167.ed1ccdb0 --name app.apk
  redmine-upload attach -p mobile --token "$REDMINE_UPLOAD_FILE_TOKEN" --version 12 --description "Nightly"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meta.apply(cmd, opts.cfg)
			overrideString(cmd.Flags().Changed("token"), &opts.cfg.File.Token, token)
			return runAttach(cmd, opts)
		},
	}

	meta.register(cmd)
	cmd.Flags().StringVarP(&token, "token", "t", "", "Upload token released by the upload step (FILE_TOKEN)")

	return cmd
}

func runAttach(cmd *cobra.Command, opts *rootOptions) error {
	if opts.cfg.Redmine.Project == "" {
		return fmt.Errorf("a project is required (--project or REDMINE_PROJECT)")
	}
	if opts.cfg.File.Token == "" {
		return fmt.Errorf("an upload token is required (--token or FILE_TOKEN)")
	}

	client, err := opts.newClient()
	if err != nil {
		return err
	}

	if err := client.Attach(cmd.Context(), opts.cfg.Redmine.Project, opts.cfg.AttachmentRequest()); err != nil {
		return err
	}

	printSuccess(cmd.ErrOrStderr(), "File uploaded successfully to project %s", opts.cfg.Redmine.Project)
	return nil
}
