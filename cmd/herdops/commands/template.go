package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/herdops/pkg/lib"
)

// TemplateCreateCommand creates an empty template.
type TemplateCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	name        string
	description string
	inactive    bool
	createdByID string
	format      string
}

// NewTemplateCreateCommand returns the template create command.
func NewTemplateCreateCommand(rootCmd *RootCommand, templateCmd *kingpin.CmdClause) *TemplateCreateCommand {
	c := &TemplateCreateCommand{rootCmd: rootCmd}

	c.Cmd = templateCmd.Command("create", "Create a template without steps.")
	c.Cmd.Flag("name", "Template name.").Short('n').Required().StringVar(&c.name)
	c.Cmd.Flag("description", "Template description.").StringVar(&c.description)
	c.Cmd.Flag("inactive", "Create the template inactive, it can't be assigned until activated.").BoolVar(&c.inactive)
	c.Cmd.Flag("created-by", "ID of the user creating the template.").StringVar(&c.createdByID)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c TemplateCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c TemplateCreateCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	tpl, err := client.CreateTemplate(ctx, lib.CreateTemplateRequest{
		Name:        c.name,
		Description: c.description,
		IsActive:    !c.inactive,
		CreatedByID: c.createdByID,
	})
	if err != nil {
		return fmt.Errorf("could not create template: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintTemplate(*tpl, nil); err != nil {
		return fmt.Errorf("could not print template: %w", err)
	}

	return nil
}

// TemplateUpdateCommand partially updates a template.
type TemplateUpdateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id             string
	name           string
	nameSet        bool
	description    string
	descriptionSet bool
	active         bool
	activeSet      bool
	format         string
}

// NewTemplateUpdateCommand returns the template update command.
func NewTemplateUpdateCommand(rootCmd *RootCommand, templateCmd *kingpin.CmdClause) *TemplateUpdateCommand {
	c := &TemplateUpdateCommand{rootCmd: rootCmd}

	c.Cmd = templateCmd.Command("update", "Update a template, only the given flags are changed.")
	c.Cmd.Arg("id", "Template ID.").Required().StringVar(&c.id)
	c.Cmd.Flag("name", "Template name.").IsSetByUser(&c.nameSet).StringVar(&c.name)
	c.Cmd.Flag("description", "Template description.").IsSetByUser(&c.descriptionSet).StringVar(&c.description)
	c.Cmd.Flag("active", "Activate (--active) or deactivate (--no-active) the template.").IsSetByUser(&c.activeSet).BoolVar(&c.active)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c TemplateUpdateCommand) Name() string { return c.Cmd.FullCommand() }

func (c TemplateUpdateCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	req := lib.UpdateTemplateRequest{ID: c.id}
	if c.nameSet {
		req.Name = &c.name
	}
	if c.descriptionSet {
		req.Description = &c.description
	}
	if c.activeSet {
		req.IsActive = &c.active
	}

	tpl, err := client.UpdateTemplate(ctx, req)
	if err != nil {
		return fmt.Errorf("could not update template: %w", err)
	}

	return printTemplateOf(ctx, c.rootCmd, client, tpl.ID, c.format)
}

// TemplateRmCommand deletes a template and its steps.
type TemplateRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id string
}

// NewTemplateRmCommand returns the template rm command.
func NewTemplateRmCommand(rootCmd *RootCommand, templateCmd *kingpin.CmdClause) *TemplateRmCommand {
	c := &TemplateRmCommand{rootCmd: rootCmd}

	c.Cmd = templateCmd.Command("rm", "Remove a template and its steps. Assigned plans are kept.")
	c.Cmd.Arg("id", "Template ID.").Required().StringVar(&c.id)

	return c
}

func (c TemplateRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c TemplateRmCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeleteTemplate(ctx, c.id); err != nil {
		return fmt.Errorf("could not remove template: %w", err)
	}

	if err := newPrinter(c.rootCmd, formatTable, client.Today()).PrintMessage(fmt.Sprintf("Removed template: %s", c.id)); err != nil {
		return fmt.Errorf("could not print message: %w", err)
	}

	return nil
}

// TemplateListCommand lists the templates.
type TemplateListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	activeOnly bool
	format     string
}

// NewTemplateListCommand returns the template list command.
func NewTemplateListCommand(rootCmd *RootCommand, templateCmd *kingpin.CmdClause) *TemplateListCommand {
	c := &TemplateListCommand{rootCmd: rootCmd}

	c.Cmd = templateCmd.Command("list", "List all templates.")
	c.Cmd.Flag("active-only", "List only active templates.").BoolVar(&c.activeOnly)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c TemplateListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TemplateListCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	templates, err := client.ListTemplates(ctx, c.activeOnly)
	if err != nil {
		return fmt.Errorf("could not list templates: %w", err)
	}

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintTemplates(templates); err != nil {
		return fmt.Errorf("could not print templates: %w", err)
	}

	return nil
}

// TemplateShowCommand shows a template with its steps.
type TemplateShowCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id     string
	format string
}

// NewTemplateShowCommand returns the template show command.
func NewTemplateShowCommand(rootCmd *RootCommand, templateCmd *kingpin.CmdClause) *TemplateShowCommand {
	c := &TemplateShowCommand{rootCmd: rootCmd}

	c.Cmd = templateCmd.Command("show", "Show a template and its steps in execution order.")
	c.Cmd.Arg("id", "Template ID.").Required().StringVar(&c.id)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c TemplateShowCommand) Name() string { return c.Cmd.FullCommand() }

func (c TemplateShowCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	return printTemplateOf(ctx, c.rootCmd, client, c.id, c.format)
}

// TemplateImportCommand imports a template with its steps from a YAML protocol file.
type TemplateImportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path   string
	format string
}

// NewTemplateImportCommand returns the template import command.
func NewTemplateImportCommand(rootCmd *RootCommand, templateCmd *kingpin.CmdClause) *TemplateImportCommand {
	c := &TemplateImportCommand{rootCmd: rootCmd}

	c.Cmd = templateCmd.Command("import", "Import a template and its steps from a YAML protocol file.")
	c.Cmd.Arg("file", "Protocol YAML file.").Required().ExistingFileVar(&c.path)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c TemplateImportCommand) Name() string { return c.Cmd.FullCommand() }

func (c TemplateImportCommand) Run(ctx context.Context) error {
	client, err := newClient(ctx, c.rootCmd)
	if err != nil {
		return err
	}
	defer client.Close()

	tpl, steps, err := client.ImportTemplateFile(ctx, c.path)
	if err != nil {
		return fmt.Errorf("could not import template: %w", err)
	}
	c.rootCmd.Logger.Infof("Imported template %q with %d steps", tpl.Name, len(steps))

	if err := newPrinter(c.rootCmd, c.format, client.Today()).PrintTemplate(*tpl, steps); err != nil {
		return fmt.Errorf("could not print template: %w", err)
	}

	return nil
}
