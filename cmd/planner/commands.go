package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/kimhsiao/creatorplanner/internal/dashboard"
	apperrors "github.com/kimhsiao/creatorplanner/internal/errors"
	"github.com/kimhsiao/creatorplanner/internal/filters"
	"github.com/kimhsiao/creatorplanner/internal/keywords"
	"github.com/kimhsiao/creatorplanner/internal/models"
	"github.com/kimhsiao/creatorplanner/internal/outline"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"seed":           cmdSettings,
	"settings":       cmdSettings,
	"setting-add":    cmdSettingAdd,
	"setting-delete": cmdSettingDelete,
	"ideas":          cmdIdeas,
	"idea-add":       cmdIdeaAdd,
	"idea-update":    cmdIdeaUpdate,
	"idea-show":      cmdIdeaShow,
	"suggest-tags":   cmdSuggestTags,
	"idea-delete":    cmdIdeaDelete,
	"convert":        cmdConvert,
	"videos":         cmdVideos,
	"video-status":   cmdVideoStatus,
	"video-delete":   cmdVideoDelete,
	"tags":           cmdTags,
	"stats":          cmdStats,
	"trends":         cmdTrends,
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parse accepts flags before and after positional arguments, so both
// "convert -deadline d <id>" and "convert <id> -deadline d" work.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// oneArg parses args and returns the single positional argument.
func oneArg(fs *flag.FlagSet, args []string, what string) (string, error) {
	positional, err := parse(fs, args)
	if err != nil {
		return "", err
	}
	if len(positional) != 1 {
		return "", fmt.Errorf("%s: expected <%s>", fs.Name(), what)
	}
	return positional[0], nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// visited reports which flags were set on the command line.
func visited(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// settingRow is a flattened settings entry for display.
type settingRow struct {
	Category string
	Value    string
	ID       string
}

func cmdSettings(_ context.Context, a *app, _ []string) error {
	groups := a.settings.Groups()
	categories := make([]string, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var rows []settingRow
	for _, c := range categories {
		for _, s := range groups[c].Items {
			rows = append(rows, settingRow{Category: groups[c].Title, Value: s.Value, ID: s.ID})
		}
	}
	a.print(rows)
	return nil
}

func cmdSettingAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("setting-add")
	category := fs.String("category", "", "settings category")
	value := fs.String("value", "", "new value")
	if _, err := parse(fs, args); err != nil {
		return err
	}
	s, err := a.settings.Add(ctx, models.Setting{Category: *category, Value: *value})
	if err != nil {
		return err
	}
	a.print(s)
	return nil
}

func cmdSettingDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlags("setting-delete")
	id, err := oneArg(fs, args, "id")
	if err != nil {
		return err
	}
	if err := a.settings.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted setting %s\n", id)
	return nil
}

// ideaRow is the list view of an idea.
type ideaRow struct {
	ID       string
	Title    string
	Duration string
	Type     string
	Audience models.Audience
	Favorite bool
	Tags     string
}

func cmdIdeas(_ context.Context, a *app, args []string) error {
	fs := newFlags("ideas")
	search := fs.String("search", "", "title substring")
	tag := fs.String("tag", "", "comma-separated tags, any matches")
	fav := fs.Bool("fav", false, "favorites only")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	f := filters.IdeaFilter{Search: *search, Tags: splitList(*tag), FavoritesOnly: *fav}
	ideas := f.Apply(a.ideas.Ideas())
	filters.SortIdeas(ideas)

	rows := make([]ideaRow, 0, len(ideas))
	for _, i := range ideas {
		rows = append(rows, ideaRow{
			ID: i.ID, Title: i.Title, Duration: i.Duration, Type: i.ContentType,
			Audience: i.TargetAudience, Favorite: i.IsFavorite,
			Tags: strings.Join(models.TagNames(i.Tags), ", "),
		})
	}
	a.print(rows)
	return nil
}

func cmdIdeaAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlags("idea-add")
	title := fs.String("title", "", "title")
	desc := fs.String("desc", "", "description")
	duration := fs.String("duration", "", "running time, M:SS")
	contentType := fs.String("type", "", "content type")
	audience := fs.String("audience", "", "target audience")
	outlineText := fs.String("outline", "", "markdown outline")
	tags := fs.String("tags", "", "comma-separated tags")
	fav := fs.Bool("fav", false, "mark as favorite")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	idea, err := a.ideas.Add(ctx, models.Idea{
		Title:          *title,
		Description:    *desc,
		Duration:       *duration,
		ContentType:    *contentType,
		TargetAudience: models.Audience(*audience),
		Outline:        *outlineText,
		IsFavorite:     *fav,
		Tags:           models.TagsNamed(splitList(*tags)...),
	})
	if err != nil {
		return err
	}
	a.print(idea)
	return nil
}

func cmdIdeaUpdate(ctx context.Context, a *app, args []string) error {
	fs := newFlags("idea-update")
	title := fs.String("title", "", "title")
	desc := fs.String("desc", "", "description")
	duration := fs.String("duration", "", "running time, M:SS")
	contentType := fs.String("type", "", "content type")
	audience := fs.String("audience", "", "target audience")
	outlineText := fs.String("outline", "", "markdown outline")
	tags := fs.String("tags", "", "comma-separated tags; empty clears")
	fav := fs.Bool("fav", false, "favorite")
	id, err := oneArg(fs, args, "id")
	if err != nil {
		return err
	}

	set := visited(fs)
	var patch models.IdeaPatch
	if set["title"] {
		patch.Title = title
	}
	if set["desc"] {
		patch.Description = desc
	}
	if set["duration"] {
		patch.Duration = duration
	}
	if set["type"] {
		patch.ContentType = contentType
	}
	if set["audience"] {
		patch.TargetAudience = models.Ptr(models.Audience(*audience))
	}
	if set["outline"] {
		patch.Outline = outlineText
	}
	if set["fav"] {
		patch.IsFavorite = fav
	}
	if set["tags"] {
		patch = patch.SetTags(splitList(*tags)...)
	}

	idea, err := a.ideas.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	a.print(idea)
	return nil
}

// ideaDetail is an idea with its rendered outline.
type ideaDetail struct {
	Idea     models.Idea
	Sections []outline.Section
	Outline  string
	HTML     string
}

func cmdIdeaShow(_ context.Context, a *app, args []string) error {
	fs := newFlags("idea-show")
	id, err := oneArg(fs, args, "id")
	if err != nil {
		return err
	}
	idea, err := a.ideas.Get(id)
	if err != nil {
		return err
	}
	html, err := outline.RenderHTML(idea.Outline)
	if err != nil {
		return err
	}
	a.print(ideaDetail{
		Idea:     idea,
		Sections: outline.Sections(idea.Outline),
		Outline:  outline.PlainText(idea.Outline),
		HTML:     html,
	})
	return nil
}

// cmdSuggestTags ranks the idea's words and, with -apply, adds the
// suggestions to its tags.
func cmdSuggestTags(ctx context.Context, a *app, args []string) error {
	fs := newFlags("suggest-tags")
	limit := fs.Int("n", keywords.DefaultLimit, "number of suggestions")
	apply := fs.Bool("apply", false, "add the suggestions to the idea")
	id, err := oneArg(fs, args, "id")
	if err != nil {
		return err
	}
	idea, err := a.ideas.Get(id)
	if err != nil {
		return err
	}

	suggested := keywords.SuggestTags(idea, *limit)
	if !*apply || len(suggested) == 0 {
		a.print(suggested)
		return nil
	}
	names := append(models.TagNames(idea.Tags), suggested...)
	updated, err := a.ideas.Update(ctx, id, models.IdeaPatch{}.SetTags(names...))
	if err != nil {
		return err
	}
	a.print(updated)
	return nil
}

func cmdIdeaDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlags("idea-delete")
	id, err := oneArg(fs, args, "id")
	if err != nil {
		return err
	}
	if err := a.ideas.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted idea %s\n", id)
	return nil
}

func cmdConvert(ctx context.Context, a *app, args []string) error {
	fs := newFlags("convert")
	deadline := fs.String("deadline", "", "deadline, YYYY-MM-DD")
	priority := fs.String("priority", string(models.PriorityMedium), "priority")
	id, err := oneArg(fs, args, "id")
	if err != nil {
		return err
	}
	due, err := time.Parse("2006-01-02", *deadline)
	if err != nil {
		v := apperrors.NewValidation("conversion")
		v.Add("deadline", "deadline must look like YYYY-MM-DD")
		return v.Err()
	}
	idea, err := a.ideas.Get(id)
	if err != nil {
		return err
	}

	result, err := a.ideas.ConvertToVideo(ctx, idea, due, models.Priority(*priority))
	if err != nil {
		return err
	}
	a.print(result)
	return nil
}

// videoRow is the list view of a video.
type videoRow struct {
	ID       string
	Title    string
	Status   models.VideoStatus
	Type     models.VideoType
	Priority models.Priority
	Platform models.Platform
	Deadline string
	Tags     string
}

func cmdVideos(_ context.Context, a *app, args []string) error {
	fs := newFlags("videos")
	search := fs.String("search", "", "title substring")
	status := fs.String("status", "", "comma-separated statuses")
	if _, err := parse(fs, args); err != nil {
		return err
	}

	f := filters.VideoFilter{Search: *search}
	for _, s := range splitList(*status) {
		f.Statuses = append(f.Statuses, models.VideoStatus(s))
	}
	videos := f.Apply(a.videos.Videos())
	filters.SortVideosByDeadline(videos)

	rows := make([]videoRow, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, videoRow{
			ID: v.ID, Title: v.Title, Status: v.Status, Type: v.Type,
			Priority: v.Priority, Platform: v.Platform,
			Deadline: v.Deadline.Format("2006-01-02"), Tags: v.Tags,
		})
	}
	a.print(rows)
	return nil
}

func cmdVideoStatus(ctx context.Context, a *app, args []string) error {
	fs := newFlags("video-status")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 2 {
		return fmt.Errorf("video-status: expected <id> <status>")
	}
	status := models.VideoStatus(positional[1])
	v, err := a.videos.Update(ctx, positional[0], models.VideoPatch{Status: &status})
	if err != nil {
		return err
	}
	a.print(v)
	return nil
}

func cmdVideoDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlags("video-delete")
	id, err := oneArg(fs, args, "id")
	if err != nil {
		return err
	}
	if err := a.videos.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted video %s\n", id)
	return nil
}

func cmdTags(ctx context.Context, a *app, _ []string) error {
	tags, err := a.tags.ListTags(ctx)
	if err != nil {
		return err
	}
	a.print(models.TagNames(tags))
	return nil
}

func cmdStats(_ context.Context, a *app, _ []string) error {
	a.print(dashboard.ComputeStats(a.videos.Videos(), dashboard.Options{
		MonthlyIncludeCreated: a.cfg.Dashboard.MonthlyIncludeCreated,
	}))
	return nil
}

func cmdTrends(_ context.Context, a *app, _ []string) error {
	a.print(dashboard.ComputeTrends(a.videos.Videos(), time.Now()))
	return nil
}
