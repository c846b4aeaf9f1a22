package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	"canchapp/internal/common/errors"
	"canchapp/internal/common/metrics"
	"canchapp/internal/models"

	"github.com/shopspring/decimal"
)

// ==========================
// Business account
// ==========================

func (a *app) cmdCompany(ctx context.Context, args []string) error {
	if _, err := a.session.RequireUser(); err != nil {
		return err
	}

	sub, rest := subcommand(args)
	switch sub {
	case "request":
		fs := newFlags("company request")
		var req models.CompanyRequest
		fs.StringVar(&req.Name, "name", "", "Company name")
		fs.StringVar(&req.RUC, "ruc", "", "11-digit RUC")
		fs.StringVar(&req.Description, "description", "", "Description")
		if err := parse(fs, rest); err != nil {
			return err
		}
		msg, err := a.business.SubmitRequest(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, orDefault(msg, "Request sent, an administrator will review it"))

	case "status":
		c, err := a.business.MyRequest(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s (RUC %s): %s\n", c.Name, c.RUC, c.Status)
		if c.Status == models.CompanyRejected && c.RejectionReason != "" {
			fmt.Fprintf(a.out, "Reason: %s\n", c.RejectionReason)
		}

	case "withdraw":
		if err := a.business.WithdrawRequest(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Request withdrawn")

	case "show", "":
		c, err := a.business.Company(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s\nRUC: %s\nStatus: %s\n", c.Name, c.RUC, c.Status)
		if c.Description != "" {
			fmt.Fprintf(a.out, "%s\n", c.Description)
		}

	case "update":
		fs := newFlags("company update")
		name := fs.String("name", "", "Company name")
		desc := fs.String("description", "", "Description")
		if err := parse(fs, rest); err != nil {
			return err
		}
		msg, err := a.business.UpdateCompany(ctx, *name, *desc)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, orDefault(msg, "Company updated"))

	case "delete-check":
		check, err := a.business.CheckDeletion(ctx)
		if err != nil {
			return err
		}
		if !check.CanDelete {
			fmt.Fprintf(a.out, "The business cannot be deleted: %s\n", check.Message)
			return nil
		}
		fmt.Fprintln(a.out, "The business can be deleted, confirm with `company delete --password P`")

	case "delete":
		fs := newFlags("company delete")
		password := fs.String("password", "", "Account password")
		if err := parse(fs, rest); err != nil {
			return err
		}
		msg, err := a.business.ConfirmDeletion(ctx, *password)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, orDefault(msg, "Business deleted"))

	default:
		return errUsage("company: unknown subcommand " + sub)
	}
	return nil
}

// optionalFloat is a flag that stays nil unless given.
type optionalFloat struct{ v *float64 }

func (o *optionalFloat) String() string {
	if o.v == nil {
		return ""
	}
	return fmt.Sprint(*o.v)
}

func (o *optionalFloat) Set(s string) error {
	var f float64
	if _, err := fmt.Sscan(s, &f); err != nil {
		return err
	}
	o.v = &f
	return nil
}

var _ flag.Value = (*optionalFloat)(nil)

func (a *app) cmdVenues(ctx context.Context, args []string) error {
	if _, err := a.session.RequireUser(); err != nil {
		return err
	}

	sub, rest := subcommand(args)
	switch sub {
	case "list", "":
		venues, err := a.business.Venues(ctx)
		if err != nil {
			return err
		}
		if len(venues) == 0 {
			fmt.Fprintln(a.out, "No venues yet")
			return nil
		}
		tw := a.table()
		fmt.Fprintln(tw, "ID\tNAME\tADDRESS")
		for _, v := range venues {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", v.ID, v.Name, v.Address)
		}
		return tw.Flush()

	case "save":
		fs := newFlags("venues save")
		var v models.Venue
		var lat, lng optionalFloat
		fs.IntVar(&v.ID, "id", 0, "Venue id, omit to create")
		fs.StringVar(&v.Name, "name", "", "Venue name")
		fs.StringVar(&v.Address, "address", "", "Address")
		fs.Var(&lat, "lat", "Latitude")
		fs.Var(&lng, "lng", "Longitude")
		if err := parse(fs, rest); err != nil {
			return err
		}
		v.Latitude, v.Longitude = lat.v, lng.v

		saved, err := a.business.SaveVenue(ctx, v)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Venue %d saved\n", saved.ID)

	case "delete":
		fs := newFlags("venues delete")
		id := fs.Int("id", 0, "Venue id")
		if err := parse(fs, rest); err != nil {
			return err
		}
		if err := requireID("id", *id); err != nil {
			return err
		}
		if err := a.business.DeleteVenue(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Venue deleted")

	default:
		return errUsage("venues: unknown subcommand " + sub)
	}
	return nil
}

func (a *app) cmdMyCourts(ctx context.Context, args []string) error {
	if _, err := a.session.RequireUser(); err != nil {
		return err
	}

	sub, rest := subcommand(args)
	switch sub {
	case "list", "":
		fs := newFlags("mycourts list")
		var filter models.ManagedCourtFilter
		fs.IntVar(&filter.VenueID, "venue", 0, "Venue id")
		fs.IntVar(&filter.SportTypeID, "sport", 0, "Sport type id")
		if err := parse(fs, rest); err != nil {
			return err
		}
		courts, err := a.business.Courts(ctx, filter)
		if err != nil {
			return err
		}
		if len(courts) == 0 {
			fmt.Fprintln(a.out, "No courts yet")
			return nil
		}
		tw := a.table()
		fmt.Fprintln(tw, "ID\tNAME\tVENUE\tSPORT\tSURFACE\tPRICE/H\tACTIVE")
		for _, c := range courts {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\tS/ %s\t%t\n",
				c.ID, c.Name, c.VenueName, c.SportType, c.SurfaceType, c.PricePerHour.StringFixed(2), c.Active)
		}
		return tw.Flush()

	case "catalogs":
		cat, err := a.business.LoadFormCatalogs(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Venues:")
		for _, v := range cat.Venues {
			fmt.Fprintf(a.out, "  %d %s\n", v.ID, v.Name)
		}
		fmt.Fprintln(a.out, "Sport types:")
		for _, s := range cat.SportTypes {
			fmt.Fprintf(a.out, "  %d %s\n", s.ID, s.Name)
		}
		fmt.Fprintln(a.out, "Surface types:")
		for _, s := range cat.SurfaceTypes {
			fmt.Fprintf(a.out, "  %d %s\n", s.ID, s.Name)
		}

	case "save":
		fs := newFlags("mycourts save")
		var c models.ManagedCourt
		price := fs.String("price", "", "Price per hour")
		fs.IntVar(&c.ID, "id", 0, "Court id, omit to create")
		fs.IntVar(&c.VenueID, "venue", 0, "Venue id")
		fs.IntVar(&c.SportTypeID, "sport", 0, "Sport type id")
		fs.IntVar(&c.SurfaceTypeID, "surface", 0, "Surface type id")
		fs.StringVar(&c.Name, "name", "", "Court name")
		fs.StringVar(&c.Description, "description", "", "Description")
		fs.StringVar(&c.PhotoURL1, "photo", "", "Main photo URL")
		fs.StringVar(&c.PhotoURL2, "photo2", "", "Second photo URL")
		fs.StringVar(&c.PhotoURL3, "photo3", "", "Third photo URL")
		fs.BoolVar(&c.Active, "active", true, "Open for booking")
		if err := parse(fs, rest); err != nil {
			return err
		}
		p, err := decimal.NewFromString(strings.TrimSpace(*price))
		if err != nil {
			return errors.NewValidationError("precio_por_hora", "enter a valid price")
		}
		c.PricePerHour = p

		if err := a.business.SaveCourt(ctx, c); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Court saved")

	case "delete", "activate", "deactivate":
		fs := newFlags("mycourts " + sub)
		id := fs.Int("id", 0, "Court id")
		if err := parse(fs, rest); err != nil {
			return err
		}
		if err := requireID("id", *id); err != nil {
			return err
		}
		switch sub {
		case "delete":
			if err := a.business.DeleteCourt(ctx, *id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Court deleted")
		case "activate":
			if err := a.business.SetCourtActive(ctx, *id, true); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Court open for booking")
		default:
			if err := a.business.SetCourtActive(ctx, *id, false); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Court under maintenance")
		}

	default:
		return errUsage("mycourts: unknown subcommand " + sub)
	}
	return nil
}

// ==========================
// Administration
// ==========================

func (a *app) cmdAdmin(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	fs := newFlags("admin " + sub)
	id := fs.Int("id", 0, "Company id")
	status := fs.String("status", "", "Company status")
	reason := fs.String("reason", "", "Rejection reason")
	name := fs.String("name", "", "Company name")
	ruc := fs.String("ruc", "", "RUC")
	if err := parse(fs, rest); err != nil {
		return err
	}
	if sub != "companies" && sub != "" {
		if err := requireID("id", *id); err != nil {
			return err
		}
	}

	switch sub {
	case "companies", "":
		companies, err := a.admin.ListCompanies(ctx, models.CompanyStatus(*status))
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			fmt.Fprintln(a.out, "No companies")
			return nil
		}
		tw := a.table()
		fmt.Fprintln(tw, "ID\tNAME\tRUC\tSTATUS")
		for _, c := range companies {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.RUC, c.Status)
		}
		return tw.Flush()

	case "approve":
		if err := a.admin.Approve(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Application approved")

	case "reject":
		if err := a.admin.Reject(ctx, *id, *reason); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Application rejected")

	case "update":
		if err := a.admin.UpdateCompany(ctx, *id, *name, *ruc); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Company updated")

	case "status":
		if err := a.admin.SetStatus(ctx, *id, models.CompanyStatus(*status)); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Company %d is now %s\n", *id, *status)

	default:
		return errUsage("admin: unknown subcommand " + sub)
	}
	return nil
}

// ==========================
// Metrics
// ==========================

// cmdMetrics serves /metrics until ctx is cancelled.
func (a *app) cmdMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              a.cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Metrics server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
