// Package publish provides the publish command.
package publish

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Ickli/gostdocx/api"
	"github.com/Ickli/gostdocx/internal/cmd/convert"
	"github.com/Ickli/gostdocx/internal/config"
	"github.com/Ickli/gostdocx/internal/pipeline"
	"github.com/Ickli/gostdocx/internal/view"
	"github.com/Ickli/gostdocx/pkg/doc"
)

type publishOptions struct {
	engine         convert.EngineFlags
	input          string
	space          string
	title          string
	parent         string
	pageID         string
	representation string
	message        string
	configPath     string
	output         string
	noColor        bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	client *api.Client
}

// NewCmdPublish creates the publish command.
func NewCmdPublish() *cobra.Command {
	opts := &publishOptions{}

	cmd := &cobra.Command{
		Use:   "publish FILE",
		Short: "Convert macro markup and publish it as a Confluence page",
		Long: `Convert a macro markup file and publish the result to Confluence.

A new page is created in the given space unless --page is set, in which
case that page's body is replaced and its version bumped. The title
defaults to the document's first heading, then the file name.

Requires credentials; run 'gostdocx init' to configure them.`,
		Example: `  # Create a page in the default space
  gostdocx publish report.txt

  # Create a child page as ADF
  gostdocx publish report.txt -s DEV --parent 12345 --representation adf

  # Replace an existing page
  gostdocx publish report.txt --page 98765 -m "Regenerated"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.input = args[0]
			opts.configPath, _ = cmd.Flags().GetString("config")
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.stdin = cmd.InOrStdin()
			opts.stdout = cmd.OutOrStdout()
			opts.stderr = cmd.ErrOrStderr()
			return runPublish(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.space, "space", "s", "", "space key (default from config)")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "page title")
	cmd.Flags().StringVarP(&opts.parent, "parent", "p", "", "parent page ID")
	cmd.Flags().StringVar(&opts.pageID, "page", "", "ID of an existing page to replace")
	cmd.Flags().StringVar(&opts.representation, "representation", config.FormatStorage, "body representation: storage or adf")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "version message when replacing a page")
	opts.engine.Register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("representation", cobra.FixedCompletions(
		[]string{config.FormatStorage, config.FormatADF}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func runPublish(ctx context.Context, opts *publishOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}

	var representation string
	switch opts.representation {
	case config.FormatStorage, "":
		opts.representation = config.FormatStorage
		representation = api.RepresentationStorage
	case config.FormatADF:
		representation = api.RepresentationADF
	default:
		return fmt.Errorf("invalid representation %q: must be storage or adf", opts.representation)
	}

	cfg, err := pipeline.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateCredentials(); err != nil {
		return fmt.Errorf("invalid config: %w (run 'gostdocx init' to configure)", err)
	}
	opts.engine.Apply(cfg)

	spaceKey := opts.space
	if spaceKey == "" {
		spaceKey = cfg.DefaultSpace
	}
	if spaceKey == "" && opts.pageID == "" {
		return fmt.Errorf("space is required: use --space flag or set default_space in config")
	}

	res, err := pipeline.Convert(cfg, pipeline.Input{
		Path:   opts.input,
		Reader: opts.stdin,
		Dir:    opts.engine.Dir,
		Echo:   opts.stderr,
	})
	if err != nil {
		return err
	}
	d := res.Document
	sources := d.AttachmentNames()
	render := func() (*api.Body, error) {
		data, err := pipeline.Render(d, opts.representation)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", opts.representation, err)
		}
		return api.NewBody(representation, string(data)), nil
	}
	content, err := render()
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.stdout)
	renderer.SetErrWriter(opts.stderr)
	for _, w := range res.Warnings {
		renderer.Warning(w.String())
	}

	client := opts.client
	if client == nil {
		client = api.NewClient(cfg.URL, cfg.Email, cfg.APIToken)
	}

	var page *api.Page
	if opts.pageID != "" {
		if err := uploadImages(ctx, client, opts.pageID, d, res.Resources, sources); err != nil {
			return err
		}
		if content, err = render(); err != nil {
			return err
		}
		page, err = client.ReplacePage(ctx, opts.pageID, opts.title, content, opts.message)
		if err != nil {
			return fmt.Errorf("failed to update page: %w", err)
		}
	} else {
		space, err := client.GetSpaceByKey(ctx, spaceKey)
		if err != nil {
			return fmt.Errorf("failed to find space '%s': %w", spaceKey, err)
		}
		title := opts.title
		if title == "" {
			title = pipeline.Title(d, opts.input)
		}
		page, err = client.CreatePage(ctx, &api.CreatePageRequest{
			SpaceID:  space.ID,
			Title:    title,
			ParentID: opts.parent,
			Status:   "current",
			Body:     content,
		})
		if err != nil {
			return fmt.Errorf("failed to create page: %w", err)
		}
		if err := uploadImages(ctx, client, page.ID, d, res.Resources, sources); err != nil {
			return err
		}
		// ADF references attachments by media file ID, known only now.
		if len(sources) > 0 && representation == api.RepresentationADF {
			if content, err = render(); err != nil {
				return err
			}
			page, err = client.ReplacePage(ctx, page.ID, "", content, "Attach images")
			if err != nil {
				return fmt.Errorf("failed to update page: %w", err)
			}
		}
	}

	if opts.output == string(view.FormatJSON) {
		return renderer.RenderJSON(page)
	}

	verb := "Created"
	if opts.pageID != "" {
		verb = "Updated"
	}
	renderer.Success(fmt.Sprintf("%s page: %s", verb, page.Title))
	renderer.RenderKeyValue("ID", page.ID)
	if page.Version != nil {
		renderer.RenderKeyValue("Version", fmt.Sprint(page.Version.Number))
	}
	if len(sources) > 0 {
		renderer.RenderKeyValue("Attachments", fmt.Sprint(len(sources)))
	}
	if page.Links.WebUI != "" {
		renderer.RenderKeyValue("URL", cfg.URL+page.Links.WebUI)
	}
	return nil
}

// uploadImages attaches the local images of d to the page and records the
// media file IDs on them. sources maps attachment names to files in fsys.
func uploadImages(ctx context.Context, client *api.Client, pageID string, d *doc.Document, fsys fs.FS, sources map[string]string) error {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	fileIDs := make(map[string]string, len(names))
	for _, name := range names {
		f, err := fsys.Open(sources[name])
		if err != nil {
			return fmt.Errorf("failed to open image %s: %w", name, err)
		}
		att, err := client.UploadAttachment(ctx, pageID, name, f, "Published by gostdocx")
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to upload image %s: %w", name, err)
		}
		fileIDs[name] = att.Extensions.FileID
	}

	for _, img := range d.Images() {
		if a := img.Attachment; a != nil {
			a.FileID = fileIDs[a.Name]
			a.Collection = "contentId-" + pageID
		}
	}
	return nil
}
