package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"canchapp/internal/catalog"
	"canchapp/internal/common/errors"
	"canchapp/internal/models"
	"canchapp/internal/profile"
)

const dayLayout = "2006-01-02"

func errUsage(msg string) error {
	return errors.NewValidationError("args", msg)
}

// newFlags builds a subcommand flag set that reports errors instead of
// exiting, so run can be driven from tests.
func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage(fmt.Sprintf("%s: %v", fs.Name(), err))
	}
	return nil
}

func requireID(name string, v int) error {
	if v <= 0 {
		return errUsage("--" + name + " is required")
	}
	return nil
}

func parseDay(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dayLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, errUsage("dates use the YYYY-MM-DD format")
	}
	return d, nil
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

// ==========================
// Account
// ==========================

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Password (defaults to $CANCHAPP_PASSWORD)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv("CANCHAPP_PASSWORD")
	}

	u, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s\n", u.DisplayName())
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	// local state is already gone even when the backend refused
	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Logged out locally (%s)\n", errors.UserMessage(err))
		return nil
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) cmdWhoami() error {
	u, err := a.session.RequireUser()
	if err != nil {
		return err
	}
	role := "player"
	if u.IsAdmin() {
		role = "admin"
	}
	fmt.Fprintf(a.out, "%s %s <%s> (%s)\n", u.FirstName, u.LastName, u.Email, role)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := newFlags("register")
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password")
	confirm := fs.String("confirm", "", "Password confirmation")
	if err := parse(fs, args); err != nil {
		return err
	}

	msg, err := a.session.Register(ctx, *name, *email, *password, *confirm)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, orDefault(msg, "Account created, check your email for the verification code"))
	return nil
}

func (a *app) cmdVerify(ctx context.Context, args []string) error {
	fs := newFlags("verify")
	email := fs.String("email", "", "Email")
	code := fs.String("code", "", "6-digit code")
	if err := parse(fs, args); err != nil {
		return err
	}

	msg, err := a.session.VerifyEmail(ctx, *email, *code)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, orDefault(msg, "Email verified"))
	return nil
}

// ==========================
// Catalog
// ==========================

func (a *app) cmdCourts(ctx context.Context, args []string) error {
	fs := newFlags("courts")
	district := fs.String("district", "", "Filter by district")
	sport := fs.String("sport", "", "Filter by sport")
	lat := fs.Float64("lat", 0, "Your latitude, to sort by distance")
	lng := fs.Float64("lng", 0, "Your longitude, to sort by distance")
	if err := parse(fs, args); err != nil {
		return err
	}

	home, err := a.catalog.LoadHome(ctx, models.CourtFilter{District: *district, Sport: *sport})
	if err != nil {
		return err
	}

	courts := home.Courts
	located := *lat != 0 || *lng != 0
	if located {
		courts = catalog.SortByDistance(courts, *lat, *lng)
	}

	if len(home.SportTypes) > 0 {
		names := make([]string, 0, len(home.SportTypes))
		for _, st := range home.SportTypes {
			names = append(names, st.Name)
		}
		fmt.Fprintf(a.out, "Sports: %s\n\n", strings.Join(names, ", "))
	}
	if len(courts) == 0 {
		fmt.Fprintln(a.out, "No courts match")
		return nil
	}

	tw := a.table()
	fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tSPORT\tPRICE/H\tDISTANCE")
	for _, c := range courts {
		dist := "-"
		if c.Distance != nil {
			dist = fmt.Sprintf("%.1f km", *c.Distance)
		}
		name := c.Name
		if c.InMaintenance() {
			name += " (maintenance)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\tS/ %s\t%s\n", c.ID, name, c.Location, c.Sport, c.Price.StringFixed(2), dist)
	}
	return tw.Flush()
}

func (a *app) cmdCourt(ctx context.Context, args []string) error {
	fs := newFlags("court")
	id := fs.Int("id", 0, "Court id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}

	c, err := a.catalog.GetCourt(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n%s\nS/ %s per hour", c.Name, c.Location, c.Price.StringFixed(2))
	if c.Rating > 0 {
		fmt.Fprintf(a.out, "  rating %.1f", c.Rating)
	}
	fmt.Fprintln(a.out)
	if c.InMaintenance() {
		fmt.Fprintln(a.out, "Under maintenance, not bookable")
	}
	if c.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", c.Description)
	}
	for _, s := range c.Services {
		fmt.Fprintf(a.out, "  - %s\n", s.Name)
	}
	if len(c.Reviews) > 0 {
		fmt.Fprintln(a.out, "\nReviews:")
		for _, r := range c.Reviews {
			fmt.Fprintf(a.out, "  %d/5 %s: %s\n", r.Rating, r.User, r.Comment)
		}
	}
	return nil
}

func (a *app) cmdReview(ctx context.Context, args []string) error {
	fs := newFlags("review")
	reservation := fs.Int("reservation", 0, "Completed reservation id")
	rating := fs.Int("rating", 0, "1 to 5")
	comment := fs.String("comment", "", "Comment")
	if err := parse(fs, args); err != nil {
		return err
	}

	msg, err := a.catalog.SubmitReview(ctx, models.CreateReviewRequest{
		ReservationID: *reservation,
		Rating:        *rating,
		Comment:       *comment,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, orDefault(msg, "Review published"))
	return nil
}

// ==========================
// Profile
// ==========================

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	switch sub {
	case "show", "":
		u, err := a.profile.GetPersonalData(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Name:     %s %s\nEmail:    %s\nDocument: %s\nPhone:    %s\nNotify:   %t\n",
			u.FirstName, u.LastName, u.Email, u.Document, u.Phone, u.ReceiveNotifications)
		return nil

	case "update":
		current, err := a.profile.GetPersonalData(ctx)
		if err != nil {
			return err
		}
		fs := newFlags("profile update")
		first := fs.String("first-name", current.FirstName, "First name")
		last := fs.String("last-name", current.LastName, "Last name")
		doc := fs.String("document", current.Document, "Document number")
		phone := fs.String("phone", current.Phone, "Phone")
		notify := fs.Bool("notify", current.ReceiveNotifications, "Receive notifications")
		if err := parse(fs, rest); err != nil {
			return err
		}

		msg, err := a.profile.UpdatePersonalData(ctx, models.PersonalData{
			FirstName:            *first,
			LastName:             *last,
			Document:             *doc,
			Phone:                *phone,
			ReceiveNotifications: *notify,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, orDefault(msg, "Profile updated"))
		return nil
	}
	return errUsage("profile: unknown subcommand " + sub)
}

func (a *app) cmdFavorites(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	if sub == "list" || sub == "" {
		courts, err := a.profile.ListFavorites(ctx)
		if err != nil {
			return err
		}
		if len(courts) == 0 {
			fmt.Fprintln(a.out, "No favorites yet")
			return nil
		}
		tw := a.table()
		fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tPRICE/H")
		for _, c := range courts {
			fmt.Fprintf(tw, "%d\t%s\t%s\tS/ %s\n", c.ID, c.Name, c.Location, c.Price.StringFixed(2))
		}
		return tw.Flush()
	}

	fs := newFlags("favorites " + sub)
	court := fs.Int("court", 0, "Court id")
	if err := parse(fs, rest); err != nil {
		return err
	}
	if err := requireID("court", *court); err != nil {
		return err
	}

	switch sub {
	case "add":
		if err := a.profile.AddFavorite(ctx, *court); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Added to favorites")
	case "remove":
		if err := a.profile.RemoveFavorite(ctx, *court); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Removed from favorites")
	case "toggle":
		set, err := a.profile.Favorites(ctx)
		if err != nil {
			return err
		}
		added, err := set.Toggle(ctx, *court)
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintln(a.out, "Added to favorites")
		} else {
			fmt.Fprintln(a.out, "Removed from favorites")
		}
	default:
		return errUsage("favorites: unknown subcommand " + sub)
	}
	return nil
}

func (a *app) findReservation(ctx context.Context, id int) (models.Reservation, error) {
	list, err := a.profile.ListReservations(ctx)
	if err != nil {
		return models.Reservation{}, err
	}
	for _, r := range list {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Reservation{}, errors.NewValidationError("id", fmt.Sprintf("reservation %d not found", id))
}

func (a *app) cmdReservations(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	if sub == "list" || sub == "" {
		list, err := a.profile.ListReservations(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(a.out, "No reservations")
			return nil
		}
		tw := a.table()
		fmt.Fprintln(tw, "ID\tCOURT\tSTART\tEND\tTOTAL\tSTATUS\tACTIONS")
		for _, r := range list {
			actions := make([]string, 0, 3)
			for _, act := range profile.Actions(r) {
				actions = append(actions, string(act))
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\tS/ %s\t%s\t%s\n",
				r.ID, r.CourtName, r.StartsAt, r.EndsAt, r.TotalPrice.StringFixed(2), r.Status, strings.Join(actions, ","))
		}
		return tw.Flush()
	}

	fs := newFlags("reservations " + sub)
	id := fs.Int("id", 0, "Reservation id")
	date := fs.String("date", "", "New day (modify)")
	slot := fs.String("time", "", "New start HH:MM (modify)")
	if err := parse(fs, rest); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}

	switch sub {
	case "cancel":
		msg, err := a.profile.CancelReservation(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, orDefault(msg, "Reservation cancelled"))
	case "modify":
		day, err := parseDay(*date)
		if err != nil {
			return err
		}
		r, err := a.findReservation(ctx, *id)
		if err != nil {
			return err
		}
		msg, err := a.profile.ModifyReservation(ctx, r, day, *slot)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, orDefault(msg, "Reservation modified"))
	case "share":
		r, err := a.findReservation(ctx, *id)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, profile.ShareText(r, a.cfg.App.SiteURL))
	default:
		return errUsage("reservations: unknown subcommand " + sub)
	}
	return nil
}

func (a *app) cmdReviews(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	if sub == "list" || sub == "" {
		reviews, err := a.profile.MyReviews(ctx)
		if err != nil {
			return err
		}
		if len(reviews) == 0 {
			fmt.Fprintln(a.out, "No reviews yet")
			return nil
		}
		for _, r := range reviews {
			fmt.Fprintf(a.out, "#%d %s %d/5 %s\n", r.ID, r.CourtName, r.Rating, r.Comment)
		}
		return nil
	}

	fs := newFlags("reviews " + sub)
	id := fs.Int("id", 0, "Review id")
	rating := fs.Int("rating", 0, "1 to 5")
	comment := fs.String("comment", "", "Comment")
	if err := parse(fs, rest); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}

	switch sub {
	case "update":
		msg, err := a.profile.UpdateReview(ctx, *id, *rating, *comment)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, orDefault(msg, "Review updated"))
	case "delete":
		if err := a.profile.DeleteReview(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Review deleted")
	default:
		return errUsage("reviews: unknown subcommand " + sub)
	}
	return nil
}

func subcommand(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", args
	}
	return args[0], args[1:]
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
