package main

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/pi/pkg/builder"
	"github.com/arthur-debert/pi/pkg/config"
	"github.com/arthur-debert/pi/pkg/logging"
	"github.com/arthur-debert/pi/pkg/template"
)

var newCmd = &cobra.Command{
	Use:     "new <template> <project-name>",
	Aliases: []string{"n"},
	Short:   "Create a new project from a local or global template",
	Long: `Locate <template> as a subdirectory of the current directory or of
~/.pi_templates (a local template shadows a global one of the same
name) and materialize it as ./<project-name>.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		root, err := template.Locate(args[0], cwd)
		if err != nil {
			return err
		}
		return materialize(root, args[1], args[1])
	},
}

var initCmd = &cobra.Command{
	Use:     "init <template>",
	Aliases: []string{"i"},
	Short:   "Materialize a template into the current directory",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		root, err := template.Locate(args[0], cwd)
		if err != nil {
			return err
		}
		return materialize(root, filepath.Base(cwd), ".")
	},
}

var gitBranch string

var gitCmd = &cobra.Command{
	Use:     "git <owner/repo> <project-name>",
	Aliases: []string{"g"},
	Short:   "Fetch a template from GitHub and create a project from it",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, cleanup, err := template.Fetch(args[0], gitBranch)
		if err != nil {
			return err
		}
		defer cleanup()
		return materialize(root, args[1], args[1])
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List templates installed under ~/.pi_templates",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := template.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			pterm.Info.Println("No templates installed under", template.GlobalRoot())
			return nil
		}
		for _, name := range names {
			pterm.Println(name)
		}
		return nil
	},
}

func init() {
	gitCmd.Flags().StringVarP(&gitBranch, "branch", "b", "", "Branch to fetch (defaults to the remote default branch)")
}

// materialize runs the whole pipeline for one template root: parse
// the manifest, resolve configuration, then build into destination.
func materialize(templateRoot, projectName, destination string) error {
	logger := logging.GetLogger("cmd")

	tpl, err := template.Load(templateRoot)
	if err != nil {
		return err
	}

	referenced, err := tpl.ReferencedKeys()
	if err != nil {
		return err
	}

	store := config.NewStore(prompter())
	resolution, err := store.Resolve(config.GlobalConfigPath(), tpl.Config, projectName, referenced)
	if err != nil {
		return err
	}

	logger.Info().
		Str("template", templateRoot).
		Str("project", projectName).
		Str("destination", destination).
		Msg("Starting build")

	if err := builder.Build(builder.Options{
		Template:    tpl,
		Resolution:  resolution,
		Destination: destination,
		Force:       force,
	}); err != nil {
		return err
	}

	pterm.Success.Printfln("Finished initializing project in %s", destination)
	return nil
}

func prompter() config.Prompter {
	if noInput {
		return config.NoInputPrompter{}
	}
	return config.TerminalPrompter{}
}
