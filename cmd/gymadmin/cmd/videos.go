package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/dashboard"
)

var videosCmd = &cobra.Command{
	Use:     "videos",
	Aliases: []string{"video"},
	Short:   "Manage the workout video library",
}

func init() {
	rootCmd.AddCommand(videosCmd)
	videosCmd.AddCommand(videosListCmd(), videosShowCmd(), videosCreateCmd(), videosUpdateCmd(),
		videosPublishCmd("publish", true), videosPublishCmd("unpublish", false),
		videosDeleteCmd(), videosUploadCmd())
}

func videosListCmd() *cobra.Command {
	var (
		lf                           listFlags
		search, category, difficulty string
		published                    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List videos",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, app *dashboard.App, _ []string) error {
			return app.Videos.List(ctx, dashboard.Listing[models.VideoFilter]{
				Filter: models.VideoFilter{
					Search:        search,
					Category:      category,
					Difficulty:    models.Difficulty(difficulty),
					PublishedOnly: published,
				},
				Params: lf.params(),
			})
		}),
	}
	lf.register(cmd)
	cmd.Flags().StringVar(&search, "search", "", "match title or description")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "beginner, intermediate or advanced")
	cmd.Flags().BoolVar(&published, "published", false, "only published videos")
	return cmd
}

func videosShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one video",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Videos.Show(ctx, id)
		}),
	}
}

func videoFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "title")
	cmd.Flags().String("description", "", "description")
	cmd.Flags().String("category", "", "category, e.g. core")
	cmd.Flags().String("difficulty", "", "beginner, intermediate or advanced")
	cmd.Flags().String("duration", "", `length in seconds or as "15m"`)
	cmd.Flags().String("video-url", "", "external video URL")
	cmd.Flags().String("thumbnail-url", "", "thumbnail URL")
	cmd.Flags().Int64("instructor", 0, "instructor staff id")
}

func videosCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a video",
		Args:  cobra.NoArgs,
	}
	videoFlags(cmd)
	cmd.Flags().Bool("publish", false, "publish immediately")
	cmd.RunE = run(func(ctx context.Context, app *dashboard.App, _ []string) error {
		f := cmd.Flags()
		form := dashboard.VideoForm{}
		form.Title, _ = f.GetString("title")
		form.Description, _ = f.GetString("description")
		form.Category, _ = f.GetString("category")
		form.Difficulty, _ = f.GetString("difficulty")
		form.Duration, _ = f.GetString("duration")
		form.VideoURL, _ = f.GetString("video-url")
		form.ThumbnailURL, _ = f.GetString("thumbnail-url")
		form.InstructorID, _ = f.GetInt64("instructor")
		form.Publish, _ = f.GetBool("publish")
		return app.Videos.Create(ctx, form)
	})
	return cmd
}

func videosUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a video; only the given flags change",
		Args:  cobra.ExactArgs(1),
	}
	videoFlags(cmd)
	cmd.RunE = run(func(ctx context.Context, app *dashboard.App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return app.Videos.Update(ctx, id, dashboard.VideoPatch{
			Title:        changedString(cmd, "title"),
			Description:  changedString(cmd, "description"),
			Category:     changedString(cmd, "category"),
			Difficulty:   changedString(cmd, "difficulty"),
			Duration:     changedString(cmd, "duration"),
			VideoURL:     changedString(cmd, "video-url"),
			ThumbnailURL: changedString(cmd, "thumbnail-url"),
			InstructorID: changedInt64(cmd, "instructor"),
		})
	})
	return cmd
}

func videosPublishCmd(use string, published bool) *cobra.Command {
	short := "Make a video visible to members"
	if !published {
		short = "Hide a video from members"
	}
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Videos.SetPublished(ctx, id, published)
		}),
	}
}

func videosDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a video",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Videos.Delete(ctx, id, yes)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func videosUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload ID FILE",
		Short: "Upload the media file of a video",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, app *dashboard.App, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.Videos.Upload(ctx, id, args[1])
		}),
	}
}
