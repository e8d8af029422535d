package dashboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fitdesk/gymadmin/internal/app/models"
	"github.com/fitdesk/gymadmin/internal/app/models/dto"
	"github.com/fitdesk/gymadmin/internal/query"
)

// VideosPage manages the workout video library
type VideosPage struct{ app *App }

func (p *VideosPage) List(ctx context.Context, in Listing[models.VideoFilter]) error {
	a := p.app
	if err := a.requireSession(); err != nil {
		return err
	}

	a.render.Loading("videos")
	page, err := query.Fetch(ctx, a.query, query.NewKey(in, resVideos),
		func(ctx context.Context) (*dto.Page[models.Video], error) {
			return a.api.Videos.List(ctx, in.Filter, in.Params)
		})
	if err != nil {
		return a.fail(err)
	}

	rows := make([][]string, 0, len(page.Items))
	for _, v := range page.Items {
		rows = append(rows, []string{
			idString(v.ID),
			v.Title,
			v.Category,
			string(v.Difficulty),
			formatDuration(v.DurationSeconds),
			yesNo(v.IsPublished),
		})
	}
	a.render.Table([]string{"ID", "TITLE", "CATEGORY", "DIFFICULTY", "DURATION", "PUBLISHED"}, rows, "No videos found.")
	a.render.Pagination(page.Pagination)
	return nil
}

func (p *VideosPage) Show(ctx context.Context, id int64) error {
	a := p.app
	if err := a.requireSession(); err != nil {
		return err
	}

	a.render.Loading("video")
	v, err := query.Fetch(ctx, a.query, query.NewKey(nil, resVideos, idKey(id)),
		func(ctx context.Context) (*models.Video, error) {
			return a.api.Videos.Get(ctx, id)
		})
	if err != nil {
		return a.fail(err)
	}
	p.detail(v)
	return nil
}

func (p *VideosPage) detail(v *models.Video) {
	p.app.render.Detail([][2]string{
		{"ID", idString(v.ID)},
		{"Title", v.Title},
		{"Description", deref(v.Description)},
		{"Category", v.Category},
		{"Difficulty", string(v.Difficulty)},
		{"Duration", formatDuration(v.DurationSeconds)},
		{"Video URL", deref(v.VideoURL)},
		{"Thumbnail", deref(v.ThumbnailURL)},
		{"Instructor", idPtrString(v.InstructorID)},
		{"Published", yesNo(v.IsPublished)},
	})
}

func (p *VideosPage) Create(ctx context.Context, form VideoForm) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req, err := form.Request()
	if err != nil {
		return a.fail(err)
	}

	v, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Video, error) {
		return a.api.Videos.Create(ctx, req)
	}, resVideos)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Video %q created with id %d.", v.Title, v.ID)
	return nil
}

func (p *VideosPage) Update(ctx context.Context, id int64, patch VideoPatch) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	req, err := patch.Request()
	if err != nil {
		return a.fail(err)
	}

	v, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Video, error) {
		return a.api.Videos.Update(ctx, id, req)
	}, resVideos)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Video %d updated.", v.ID)
	p.detail(v)
	return nil
}

// SetPublished publishes or hides a video
func (p *VideosPage) SetPublished(ctx context.Context, id int64, published bool) error {
	return p.Update(ctx, id, VideoPatch{Publish: &published})
}

func (p *VideosPage) Delete(ctx context.Context, id int64, assumeYes bool) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}
	ok, err := a.confirm(assumeYes, "Delete video %d and its file?", id)
	if err != nil || !ok {
		return err
	}

	_, err = query.Mutate(ctx, a.query, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.api.Videos.Delete(ctx, id)
	}, resVideos)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Video %d deleted.", id)
	return nil
}

// Upload sends a local file as the video's media
func (p *VideosPage) Upload(ctx context.Context, id int64, path string) error {
	a := p.app
	if err := a.requireAdmin(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return a.fail(fmt.Errorf("cannot open %s: %w", path, err))
	}
	defer f.Close()

	a.render.Loading("upload of " + filepath.Base(path))
	v, err := query.Mutate(ctx, a.query, func(ctx context.Context) (*models.Video, error) {
		return a.api.Videos.UploadFile(ctx, id, filepath.Base(path), f)
	}, resVideos)
	if err != nil {
		return a.fail(err)
	}
	a.render.Success("Uploaded %s to video %d: %s", filepath.Base(path), v.ID, deref(v.VideoURL))
	return nil
}
