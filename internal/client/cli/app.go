package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/docarchive/internal/client/client"
	"github.com/dmitrijs2005/docarchive/internal/client/config"
	"github.com/dmitrijs2005/docarchive/internal/client/models"
	"github.com/dmitrijs2005/docarchive/internal/client/navigation"
	"github.com/dmitrijs2005/docarchive/internal/client/services"
	"github.com/dmitrijs2005/docarchive/internal/client/storage"
	"github.com/dmitrijs2005/docarchive/internal/logging"
)

type App struct {
	config *config.Config
	docs   services.DocumentService
	log    logging.Logger
	closer io.Closer

	nav    *navigation.Navigator
	list   models.DocumentList
	cursor models.Cursor

	in  io.Reader
	out io.Writer
}

// NewApp opens the configured stores and builds the document service.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	stores, err := storage.Open(ctx, c)
	if err != nil {
		log.Error(ctx, "error initializing storage", "error", err)
		return nil, err
	}

	fetcher := client.NewHTTPClient(c.APIBaseURL, c.HTTPTimeout, c.RequestsPerSecond, c.RequestBurst)

	ds := services.NewDocumentService(fetcher, stores.Metadata, stores.Images, log,
		services.WithDetailConcurrency(c.DetailConcurrency),
		services.WithMinImageSize(c.MinImageSize),
		services.WithPurge(stores.Purge),
	)

	a := newApp(ds, log, c.StartMode, os.Stdin, os.Stdout)
	a.config = c
	a.closer = stores
	return a, nil
}

func newApp(ds services.DocumentService, log logging.Logger, mode models.Mode, in io.Reader, out io.Writer) *App {
	if mode == "" {
		mode = models.ModeFlat
	}
	return &App{
		docs:   ds,
		log:    log,
		nav:    navigation.NewNavigator(mode),
		cursor: models.Cursor{Mode: mode},
		in:     in,
		out:    out,
	}
}

// Run loads the list snapshot and runs the REPL until the user exits or
// input ends. The stores are closed on return.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.closer != nil {
			if err := a.closer.Close(); err != nil {
				a.log.Error(ctx, "closing storage", "error", err)
			}
		}
	}()

	fmt.Fprintln(a.out, "Welcome to docarchive (type 'help' for commands)")

	if err := a.load(ctx, false); err == nil {
		if d, ok := a.current(); ok {
			a.printDocument(d)
		}
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.in))
	return nil
}

func (a *App) getStatus() string {
	if !a.cursor.Selected {
		return fmt.Sprintf("(%s)", a.cursor.Mode)
	}
	return fmt.Sprintf("(#%d %s)", a.cursor.ID, a.cursor.Mode)
}
