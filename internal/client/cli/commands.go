package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/docarchive/internal/client/models"
	"github.com/dmitrijs2005/docarchive/internal/client/series"
	"github.com/dmitrijs2005/docarchive/internal/common"
	"github.com/dmitrijs2005/docarchive/internal/filex"
)

var errNoDocument = errors.New("no document selected")

// fail logs err and reports msg to the user.
func (a *App) fail(ctx context.Context, msg string, err error) error {
	a.log.Error(ctx, msg, "error", err)
	fmt.Fprintf(a.out, "%s: %v\n", msg, err)
	return err
}

func (a *App) usage(text string) error {
	fmt.Fprintln(a.out, "Usage:", text)
	return common.ErrInvalidArgument
}

// load replaces the in-memory snapshot and keeps the cursor on a document
// that still exists.
func (a *App) load(ctx context.Context, force bool) error {
	list, err := a.docs.GetList(ctx, force)
	if err != nil {
		return a.fail(ctx, "could not load documents", err)
	}
	a.list = list

	if _, ok := a.current(); !ok {
		a.cursor.Unselect()
		if len(a.list) > 0 {
			a.cursor.Select(a.list[0].ID)
		}
	}
	return nil
}

func (a *App) ensureLoaded(ctx context.Context) error {
	if a.list != nil {
		return nil
	}
	return a.load(ctx, false)
}

func (a *App) current() (models.Document, bool) {
	if !a.cursor.Selected {
		return models.Document{}, false
	}
	return a.list.Find(a.cursor.ID)
}

func (a *App) printDocument(d models.Document) {
	fmt.Fprintf(a.out, "#%d %s\n", d.ID, d.Title)
	fmt.Fprintf(a.out, "  series:   %s\n", series.KeyOf(d.Title))
	fmt.Fprintf(a.out, "  datetime: %s\n", d.Datetime)
	fmt.Fprintf(a.out, "  images:   %d\n", d.ImageCount)
	if d.Message != "" {
		fmt.Fprintf(a.out, "\n%s\n", d.Message)
	}
}

func (a *App) printRow(d models.Document) {
	mark := " "
	if a.cursor.Selected && d.ID == a.cursor.ID {
		mark = "*"
	}
	fmt.Fprintf(a.out, "%s %8d  %-20s %s\n", mark, d.ID, d.Datetime, d.Title)
}

func (a *App) List(ctx context.Context) error {
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}
	if len(a.list) == 0 {
		fmt.Fprintln(a.out, "No documents.")
		return nil
	}
	for _, d := range a.list {
		a.printRow(d)
	}
	return nil
}

func (a *App) Series(ctx context.Context) error {
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}
	for _, s := range series.Group(a.list) {
		fmt.Fprintf(a.out, "%s (%d)\n", s.Key, len(s.Documents))
		for _, d := range s.Documents {
			a.printRow(d)
		}
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.load(ctx, true); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Loaded %d documents.\n", len(a.list))
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}
	if len(args) == 0 {
		d, ok := a.current()
		if !ok {
			return a.usage("show <id>")
		}
		a.printDocument(d)
		return nil
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return a.usage("show <id>")
	}
	d, ok := a.list.Find(id)
	if !ok {
		fmt.Fprintf(a.out, "No document with id %d.\n", id)
		return common.ErrorNotFound
	}
	a.cursor.Select(d.ID)
	a.printDocument(d)
	return nil
}

func (a *App) Next(ctx context.Context) error {
	return a.step(ctx, a.nav.Next, "next")
}

func (a *App) Prev(ctx context.Context) error {
	return a.step(ctx, a.nav.Previous, "previous")
}

func (a *App) step(ctx context.Context, move func([]models.Document, int64) (models.Document, bool), dir string) error {
	if err := a.ensureLoaded(ctx); err != nil {
		return err
	}
	if _, ok := a.current(); !ok {
		fmt.Fprintln(a.out, "No document selected.")
		return errNoDocument
	}

	d, ok := move(a.list, a.cursor.ID)
	if !ok {
		fmt.Fprintf(a.out, "No %s document.\n", dir)
		return nil
	}
	a.cursor.Select(d.ID)
	a.printDocument(d)
	return nil
}

func (a *App) SetMode(_ context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("mode flat|grouped")
	}
	m, err := models.ParseMode(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	a.cursor.Mode = m
	a.nav.Mode = m
	fmt.Fprintf(a.out, "Navigation mode: %s\n", m)
	return nil
}

func (a *App) Image(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return a.usage("image <index> [path]")
	}
	d, ok := a.current()
	if !ok {
		fmt.Fprintln(a.out, "No document selected.")
		return errNoDocument
	}
	index, err := strconv.Atoi(args[0])
	if err != nil || index < 1 || index > d.ImageCount {
		fmt.Fprintf(a.out, "Image index must be between 1 and %d.\n", d.ImageCount)
		return common.ErrInvalidArgument
	}

	if len(args) == 1 && isTerminal() {
		fmt.Fprintln(a.out, "Refusing to write image data to a terminal; give a path or redirect stdout.")
		return common.ErrInvalidArgument
	}

	data, err := a.docs.GetImage(ctx, d.ID, index)
	if err != nil {
		return a.fail(ctx, "could not load image", err)
	}

	if len(args) == 1 {
		_, err := a.out.Write(data)
		return err
	}

	if err := filex.WriteFileAtomic(args[1], data); err != nil {
		return a.fail(ctx, "could not save image", err)
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s.\n", len(data), args[1])
	return nil
}

func (a *App) Prefetch(ctx context.Context) error {
	d, ok := a.current()
	if !ok {
		fmt.Fprintln(a.out, "No document selected.")
		return errNoDocument
	}
	n, err := a.docs.Prefetch(ctx, d.ID)
	if err != nil {
		return a.fail(ctx, "prefetch failed", err)
	}
	fmt.Fprintf(a.out, "Fetched %d of %d images.\n", n, d.ImageCount)
	return nil
}

func (a *App) Cache(ctx context.Context) error {
	st, err := a.docs.Stats(ctx)
	if err != nil {
		return a.fail(ctx, "could not read cache", err)
	}
	list := "missing"
	if st.HasList {
		list = "cached"
	}
	fmt.Fprintf(a.out, "List snapshot:  %s\n", list)
	fmt.Fprintf(a.out, "Detail entries: %d\n", st.Details)
	fmt.Fprintf(a.out, "Image bytes:    %d\n", st.ImageBytes)
	return nil
}

func (a *App) Purge(ctx context.Context) error {
	if err := a.docs.Purge(ctx); err != nil {
		return a.fail(ctx, "purge failed", err)
	}
	a.list = nil
	a.cursor.Unselect()
	fmt.Fprintln(a.out, "Local cache purged.")
	return nil
}
