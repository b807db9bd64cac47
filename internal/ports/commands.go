package ports

import (
	"fmt"
	"time"

	"github.com/Amund211/eventlight/internal/domain"
	"github.com/spf13/cobra"
)

type CommandOptions struct {
	NowFunc func() time.Time
	// Inside a shell the shell command itself is not available
	InShell bool
}

// NewRootCommand builds the eventlight command tree on top of v
func NewRootCommand(v *Views, opts CommandOptions) *cobra.Command {
	middleware := ComposeMiddlewares(
		buildContextMiddleware(opts.NowFunc),
		buildMetricsMiddleware(),
	)

	var rawFormat string
	format := func() (Format, error) {
		return ParseFormat(rawFormat)
	}

	root := &cobra.Command{
		Use:   "eventlight",
		Short: "Browse and manage events",
		Long: `Browse, search and manage the events served by the events API.

Without a command the events page is shown: the recently added events and,
with --search, the events matching a term.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&rawFormat, "output", "o", string(FormatText), "Output format: text, json or yaml")

	var rootSearch string
	root.Flags().StringVar(&rootSearch, "search", "", "Search term")
	root.RunE = middleware(func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		return v.EventsPage(cmd.Context(), rootSearch, f)
	})

	var listAll bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recently added events",
		Args:  cobra.NoArgs,
		RunE: middleware(func(cmd *cobra.Command, args []string) error {
			f, err := format()
			if err != nil {
				return err
			}
			if listAll {
				return v.AllEvents(cmd.Context(), f)
			}
			return v.RecentEvents(cmd.Context(), f)
		}),
	}
	listCmd.Flags().BoolVar(&listAll, "all", false, "List every event, not just the newest")

	searchCmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find events matching a term",
		Args:  cobra.ExactArgs(1),
		RunE: middleware(func(cmd *cobra.Command, args []string) error {
			f, err := format()
			if err != nil {
				return err
			}
			return v.SearchEvents(cmd.Context(), args[0], f)
		}),
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the details of an event",
		Args:  cobra.ExactArgs(1),
		RunE: middleware(func(cmd *cobra.Command, args []string) error {
			f, err := format()
			if err != nil {
				return err
			}
			return v.ShowEvent(cmd.Context(), args[0], f)
		}),
	}

	var newInput domain.EventInput
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Create an event",
		Long: `Create an event from the given fields.

If the previous attempt in this session failed, the fields you leave out are
taken from it.`,
		Args: cobra.NoArgs,
		RunE: middleware(func(cmd *cobra.Command, args []string) error {
			return v.NewEvent(cmd.Context(), newInput)
		}),
	}
	addEventInputFlags(newCmd, &newInput)

	var editInput domain.EventInput
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an event",
		Long:  `Edit an event. Only the given fields are changed.`,
		Args:  cobra.ExactArgs(1),
		RunE: middleware(func(cmd *cobra.Command, args []string) error {
			return v.EditEvent(cmd.Context(), args[0], editInput)
		}),
	}
	addEventInputFlags(editCmd, &editInput)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: middleware(func(cmd *cobra.Command, args []string) error {
			return v.DeleteEvent(cmd.Context(), args[0])
		}),
	}

	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "List the images an event can use",
		Args:  cobra.NoArgs,
		RunE: middleware(func(cmd *cobra.Command, args []string) error {
			f, err := format()
			if err != nil {
				return err
			}
			return v.Images(cmd.Context(), f)
		}),
	}

	root.AddCommand(listCmd, searchCmd, showCmd, newCmd, editCmd, deleteCmd, imagesCmd)

	if !opts.InShell {
		shellCmd := &cobra.Command{
			Use:   "shell",
			Short: "Run commands interactively, sharing one cache",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return RunShell(cmd.Context(), v, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
			},
		}
		root.AddCommand(shellCmd)
	}

	return root
}

func addEventInputFlags(cmd *cobra.Command, input *domain.EventInput) {
	cmd.Flags().StringVar(&input.Title, "title", "", "Title")
	cmd.Flags().StringVar(&input.Description, "description", "", "Description")
	cmd.Flags().StringVar(&input.Date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&input.Time, "time", "", "Time (HH:MM)")
	cmd.Flags().StringVar(&input.Location, "location", "", "Location")
	cmd.Flags().StringVar(&input.Image, "image", "", fmt.Sprintf("Image path, see %q", "eventlight images"))
}
