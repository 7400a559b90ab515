package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cinelume/internal/api"
	"cinelume/internal/apperr"
	"cinelume/internal/container"
	"cinelume/internal/forms"
	"cinelume/internal/models"
	"cinelume/internal/pages"
	"cinelume/internal/session"
	"cinelume/internal/views"

	"github.com/sirupsen/logrus"
)

const usage = `cinelume <command> [args]

  login <email> <password>
  register <username> <email> <password>
  logout
  whoami

  home | movies | tv
  movie <id> | show <id>
  search <query...>
  genres <movie|tv>

  watchlist
  watch add <movie|tv> <id> <status>
  watch status <mediaId> <status>
  watch rm <mediaId>

  review <movie|tv> <id> <rating> [comment...]
  review edit <movie|tv> <mediaId> <reviewId> <rating> [comment...]

  profile [username]
  profile edit [--username u] [--email e] [--description d]
  password <current> <new>
  avatar <file>

Statuses: watching, completed, plan-to-watch, on-hold, dropped
`

// terminalNavigator turns session navigation into a hint for the next
// command to run.
type terminalNavigator struct {
	out io.Writer
}

func (n *terminalNavigator) Navigate(route string) {
	if route == session.RouteLogin {
		fmt.Fprintln(n.out, "next: cinelume login <email> <password>")
	}
}

type command struct {
	Name string
	Args []string
}

type app struct {
	c      *container.Container
	out    io.Writer
	logger *logrus.Logger
}

func newApp(c *container.Container, out io.Writer) *app {
	return &app{c: c, out: out, logger: c.Logger}
}

func parseCommand(args []string) command {
	if len(args) == 0 {
		return command{Name: "help"}
	}
	return command{Name: strings.ToLower(args[0]), Args: args[1:]}
}

// run executes one command and returns the process exit code. Failures
// have already been reported through the notifier.
func (a *app) run(ctx context.Context, args []string) int {
	cmd := parseCommand(args)
	a.logger.WithFields(logrus.Fields{
		"command": cmd.Name,
		"args":    len(cmd.Args),
	}).Debug("Processing command")

	var err error
	switch cmd.Name {
	case "login":
		err = a.handleLogin(ctx, cmd)
	case "register":
		err = a.handleRegister(ctx, cmd)
	case "logout":
		a.c.Session.Logout(ctx)
		a.c.Notifier.Success("Logged out.")
	case "whoami":
		a.handleWhoami()
	case "home":
		err = a.handleListing(ctx, pages.NewHomePage(a.c.API, a.c.Notifier))
	case "movies":
		err = a.handleListing(ctx, pages.NewMoviesPage(a.c.API, a.c.Notifier))
	case "tv":
		err = a.handleListing(ctx, pages.NewTVPage(a.c.API, a.c.Notifier))
	case "movie":
		err = a.handleDetails(ctx, api.KindMovie, cmd)
	case "show":
		err = a.handleDetails(ctx, api.KindTV, cmd)
	case "search":
		err = a.handleSearch(ctx, cmd)
	case "genres":
		err = a.handleGenres(ctx, cmd)
	case "watchlist":
		err = a.handleWatchlist(ctx)
	case "watch":
		err = a.handleWatch(ctx, cmd)
	case "review":
		err = a.handleReview(ctx, cmd)
	case "profile":
		err = a.handleProfile(ctx, cmd)
	case "password":
		err = a.handlePassword(ctx, cmd)
	case "avatar":
		err = a.handleAvatar(ctx, cmd)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
	default:
		err = a.usageError(fmt.Sprintf("Unknown command %q. Use help to see available commands.", cmd.Name))
	}

	if err != nil {
		return 1
	}
	return 0
}

// usageError reports a malformed command line.
func (a *app) usageError(message string) error {
	err := apperr.Validation("usage", message)
	a.c.Notifier.Failure(err)
	return err
}

func (a *app) handleLogin(ctx context.Context, cmd command) error {
	if len(cmd.Args) != 2 {
		return a.usageError("Usage: login <email> <password>")
	}
	err := a.c.Session.Login(ctx, models.Credentials{Email: cmd.Args[0], Password: cmd.Args[1]})
	if err != nil {
		a.c.Notifier.Failure(err)
		return err
	}
	id, _ := a.c.Session.Current()
	a.c.Notifier.Success(fmt.Sprintf("Logged in as %s.", id.Username))
	return nil
}

func (a *app) handleRegister(ctx context.Context, cmd command) error {
	if len(cmd.Args) != 3 {
		return a.usageError("Usage: register <username> <email> <password>")
	}
	reg := models.Registration{Username: cmd.Args[0], Email: cmd.Args[1], Password: cmd.Args[2]}
	if err := a.c.Session.Register(ctx, reg); err != nil {
		a.c.Notifier.Failure(err)
		return err
	}
	a.c.Notifier.Success("Account created.")
	return nil
}

func (a *app) handleWhoami() {
	id, ok := a.c.Session.Current()
	if !ok {
		fmt.Fprintln(a.out, "not logged in")
		return
	}
	fmt.Fprintf(a.out, "%s (id %d)\n", id.Username, id.ID)
	if id.AvatarURL != "" {
		fmt.Fprintf(a.out, "avatar: %s\n", id.AvatarURL)
	}
}

func (a *app) handleListing(ctx context.Context, p *pages.ListingPage) error {
	if err := p.Load(ctx); err != nil {
		return err
	}
	for i, c := range p.Carousels() {
		if i > 0 {
			fmt.Fprintln(a.out)
		}
		fmt.Fprint(a.out, views.Carousel(c.Title, c.Items, views.CarouselLimit))
	}
	return nil
}

func (a *app) parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, a.usageError(fmt.Sprintf("%q is not a valid id.", raw))
	}
	return id, nil
}

func (a *app) loadDetails(ctx context.Context, kind api.MediaKind, id int) (*pages.DetailPage, error) {
	p := pages.NewDetailPage(a.c.API, kind, a.c.Notifier)
	if err := p.Load(ctx, id); err != nil {
		return nil, err
	}
	if p.NotFound() {
		return nil, a.usageError(fmt.Sprintf("No %s with id %d.", kind, id))
	}
	return p, nil
}

func (a *app) handleDetails(ctx context.Context, kind api.MediaKind, cmd command) error {
	if len(cmd.Args) != 1 {
		return a.usageError(fmt.Sprintf("Usage: %s <id>", cmd.Name))
	}
	id, err := a.parseID(cmd.Args[0])
	if err != nil {
		return err
	}

	p, err := a.loadDetails(ctx, kind, id)
	if err != nil {
		return err
	}
	d := p.Details()
	fmt.Fprint(a.out, views.Details(d))
	if poster := views.PosterURL(d.Details.PosterPath); poster != "" {
		fmt.Fprintf(a.out, "Poster: %s\n", poster)
	}
	fmt.Fprintln(a.out)
	fmt.Fprint(a.out, views.Reviews(d.Reviews, 0))
	return nil
}

func (a *app) handleSearch(ctx context.Context, cmd command) error {
	p := pages.NewSearchPage(a.c.API, a.c.Notifier)
	if err := p.Load(ctx, strings.Join(cmd.Args, " ")); err != nil {
		return err
	}
	fmt.Fprint(a.out, views.SearchResults(p.Query(), p.Results()))
	return nil
}

func (a *app) handleGenres(ctx context.Context, cmd command) error {
	if len(cmd.Args) != 1 {
		return a.usageError("Usage: genres <movie|tv>")
	}
	kind, err := api.ParseMediaKind(cmd.Args[0])
	if err != nil {
		return a.usageError(err.Error())
	}
	list, err := a.c.API.Genres(ctx, kind)
	if err != nil {
		a.c.Notifier.Failure(err)
		return err
	}
	fmt.Fprint(a.out, views.Genres(list.Genres))
	return nil
}

func (a *app) watchlistPage(ctx context.Context) (*pages.WatchlistPage, error) {
	p := pages.NewWatchlistPage(a.c.API, a.c.Session, a.navigator(), a.c.Notifier)
	if err := p.Load(ctx); err != nil {
		if apperr.Is(err, apperr.KindUnauthenticated) {
			a.c.Notifier.Failure(err)
		}
		return nil, err
	}
	return p, nil
}

func (a *app) navigator() session.Navigator {
	return &terminalNavigator{out: a.out}
}

func (a *app) handleWatchlist(ctx context.Context) error {
	p, err := a.watchlistPage(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, views.Watchlist(p.Groups()))
	return nil
}

func (a *app) handleWatch(ctx context.Context, cmd command) error {
	if len(cmd.Args) == 0 {
		return a.usageError("Usage: watch add|status|rm ...")
	}
	sub, args := cmd.Args[0], cmd.Args[1:]

	switch sub {
	case "add":
		if len(args) != 3 {
			return a.usageError("Usage: watch add <movie|tv> <id> <status>")
		}
		kind, err := api.ParseMediaKind(args[0])
		if err != nil {
			return a.usageError(err.Error())
		}
		id, err := a.parseID(args[1])
		if err != nil {
			return err
		}
		status, err := models.ParseWatchStatus(args[2])
		if err != nil {
			return a.usageError(err.Error())
		}
		p, err := a.loadDetails(ctx, kind, id)
		if err != nil {
			return err
		}
		info := p.Details().Details
		form := forms.NewWatchlistForm(a.c.API, a.c.Session, nil, a.c.Notifier, a.logger)
		return form.Add(ctx, models.WatchlistUpsert{
			MediaID:    id,
			MediaType:  string(kind),
			Title:      info.DisplayTitle(),
			PosterPath: info.PosterPath,
			Status:     status,
		})

	case "status":
		if len(args) != 2 {
			return a.usageError("Usage: watch status <mediaId> <status>")
		}
		id, err := a.parseID(args[0])
		if err != nil {
			return err
		}
		status, err := models.ParseWatchStatus(args[1])
		if err != nil {
			return a.usageError(err.Error())
		}
		p, err := a.watchlistPage(ctx)
		if err != nil {
			return err
		}
		form := forms.NewWatchlistForm(a.c.API, a.c.Session, p, a.c.Notifier, a.logger)
		if err := form.ChangeStatus(ctx, id, status); err != nil {
			return err
		}
		fmt.Fprint(a.out, views.Watchlist(p.Groups()))
		return nil

	case "rm", "remove":
		if len(args) != 1 {
			return a.usageError("Usage: watch rm <mediaId>")
		}
		id, err := a.parseID(args[0])
		if err != nil {
			return err
		}
		form := forms.NewWatchlistForm(a.c.API, a.c.Session, nil, a.c.Notifier, a.logger)
		return form.Remove(ctx, id)
	}

	return a.usageError(fmt.Sprintf("Unknown watch command %q.", sub))
}

func (a *app) reviewsSection(ctx context.Context, kindArg, idArg string) (*forms.ReviewsSection, error) {
	kind, err := api.ParseMediaKind(kindArg)
	if err != nil {
		return nil, a.usageError(err.Error())
	}
	id, err := a.parseID(idArg)
	if err != nil {
		return nil, err
	}
	p, err := a.loadDetails(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	d := p.Details()
	media := forms.Media{ID: id, Kind: string(kind), Title: d.Details.DisplayTitle(), PosterPath: d.Details.PosterPath}
	return forms.NewReviewsSection(a.c.API, a.c.Session, media, d.Reviews, a.c.Notifier, a.logger), nil
}

func (a *app) parseRating(raw string) (int, error) {
	rating, err := strconv.Atoi(raw)
	if err != nil {
		return 0, a.usageError(fmt.Sprintf("%q is not a rating.", raw))
	}
	return rating, nil
}

func (a *app) handleReview(ctx context.Context, cmd command) error {
	if len(cmd.Args) > 0 && cmd.Args[0] == "edit" {
		return a.handleReviewEdit(ctx, cmd.Args[1:])
	}
	if len(cmd.Args) < 3 {
		return a.usageError("Usage: review <movie|tv> <id> <rating> [comment...]")
	}

	section, err := a.reviewsSection(ctx, cmd.Args[0], cmd.Args[1])
	if err != nil {
		return err
	}
	if !section.CanSubmit() {
		return a.usageError("You have already reviewed this title. Use review edit instead.")
	}
	rating, err := a.parseRating(cmd.Args[2])
	if err != nil {
		return err
	}
	if err := section.Submit(ctx, rating, strings.Join(cmd.Args[3:], " ")); err != nil {
		return err
	}
	fmt.Fprint(a.out, views.Reviews(section.Reviews(), 0))
	return nil
}

func (a *app) handleReviewEdit(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return a.usageError("Usage: review edit <movie|tv> <mediaId> <reviewId> <rating> [comment...]")
	}

	section, err := a.reviewsSection(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	reviewID, err := a.parseID(args[2])
	if err != nil {
		return err
	}
	rating, err := a.parseRating(args[3])
	if err != nil {
		return err
	}

	if err := section.StartEditing(reviewID); err != nil {
		return err
	}
	section.SetDraft(rating, strings.Join(args[4:], " "))
	if err := section.Save(ctx); err != nil {
		section.Cancel()
		return err
	}
	fmt.Fprint(a.out, views.Reviews(section.Reviews(), 0))
	return nil
}

func (a *app) handleProfile(ctx context.Context, cmd command) error {
	if len(cmd.Args) > 0 && cmd.Args[0] == "edit" {
		return a.handleProfileEdit(ctx, cmd.Args[1:])
	}

	username := ""
	if len(cmd.Args) > 0 {
		username = cmd.Args[0]
	} else if id, ok := a.c.Session.Current(); ok {
		username = id.Username
	} else {
		return a.usageError("Usage: profile <username>, or log in first.")
	}

	p := pages.NewProfilePage(a.c.API, a.c.Session, a.c.Notifier)
	err := p.Load(ctx, username)
	if p.NotFound() {
		return a.usageError(fmt.Sprintf("No user named %s.", username))
	}

	fmt.Fprint(a.out, views.Profile(p.Username(), p.Profile(), p.Stats()))
	fmt.Fprintln(a.out)
	fmt.Fprint(a.out, views.Reviews(p.Reviews(), 0))
	return err
}

func (a *app) ownProfile(ctx context.Context) (*forms.ProfileForm, error) {
	if !a.c.Session.LoggedIn() {
		err := apperr.New(apperr.KindUnauthenticated, "profile", "")
		a.c.Notifier.Failure(err)
		return nil, err
	}
	profile, err := a.c.API.Profile(ctx)
	if err != nil {
		a.c.Notifier.Failure(err)
		return nil, err
	}
	return forms.NewProfileForm(a.c.API, a.c.Session, *profile, a.c.Notifier, a.logger), nil
}

func (a *app) handleProfileEdit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "new username")
	email := fs.String("email", "", "new email")
	description := fs.String("description", "", "new description")
	if err := fs.Parse(args); err != nil {
		return a.usageError("Usage: profile edit [--username u] [--email e] [--description d]")
	}

	var changes forms.ProfileChanges
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "username":
			changes.Username = username
		case "email":
			changes.Email = email
		case "description":
			changes.Description = description
		}
	})
	if changes == (forms.ProfileChanges{}) {
		return a.usageError("Nothing to change.")
	}

	form, err := a.ownProfile(ctx)
	if err != nil {
		return err
	}
	renamed, err := form.Save(ctx, changes)
	if err != nil {
		return err
	}
	if renamed {
		fmt.Fprintf(a.out, "next: cinelume profile %s\n", form.Profile().Username)
	}
	return nil
}

func (a *app) handlePassword(ctx context.Context, cmd command) error {
	if len(cmd.Args) != 2 {
		return a.usageError("Usage: password <current> <new>")
	}
	form := forms.NewPasswordForm(a.c.API, a.c.Session, a.c.Notifier, a.logger)
	return form.Save(ctx, cmd.Args[0], cmd.Args[1])
}

func (a *app) handleAvatar(ctx context.Context, cmd command) error {
	if len(cmd.Args) != 1 {
		return a.usageError("Usage: avatar <file>")
	}

	profile, err := a.ownProfile(ctx)
	if err != nil {
		return err
	}

	f, err := os.Open(cmd.Args[0])
	if err != nil {
		return a.usageError(fmt.Sprintf("Cannot open %s.", cmd.Args[0]))
	}
	defer f.Close()

	form := forms.NewAvatarForm(a.c.API, a.c.Uploads, profile, a.c.Notifier, a.logger)
	url, err := form.Upload(ctx, f.Name(), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "avatar: %s\n", url)
	return nil
}
