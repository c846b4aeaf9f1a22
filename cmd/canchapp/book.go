package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"canchapp/internal/booking"
	"canchapp/internal/common/database"
	"canchapp/internal/common/errors"
	"canchapp/internal/models"
)

// currentWizard remembers which wizard `book` subcommands act on.
type currentWizard interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type memoryCurrent struct {
	mu sync.Mutex
	id string
}

func (m *memoryCurrent) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, nil
}

func (m *memoryCurrent) Set(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = id
	return nil
}

func (m *memoryCurrent) Clear(context.Context) error {
	return m.Set(context.Background(), "")
}

type redisCurrent struct {
	redis *database.RedisClient
	key   string
	ttl   time.Duration
}

func (r *redisCurrent) Get(ctx context.Context) (string, error) {
	var id string
	if _, err := r.redis.GetJSON(ctx, r.key, &id); err != nil {
		return "", errors.NewStoreError("load current wizard", err)
	}
	return id, nil
}

func (r *redisCurrent) Set(ctx context.Context, id string) error {
	if err := r.redis.SetJSON(ctx, r.key, id, r.ttl); err != nil {
		return errors.NewStoreError("save current wizard", err)
	}
	return nil
}

func (r *redisCurrent) Clear(ctx context.Context) error {
	if err := r.redis.Del(ctx, r.key); err != nil {
		return errors.NewStoreError("clear current wizard", err)
	}
	return nil
}

const msgNoBooking = "no booking in progress, run `book start --court N` first"

// loadWizard restores the current wizard from the store.
func (a *app) loadWizard(ctx context.Context) (*booking.Wizard, error) {
	id, err := a.current.Get(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.NewValidationError("book", msgNoBooking)
	}
	snap, found, err := a.wizards.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewValidationError("book", msgNoBooking)
	}
	return booking.Restore(a.api, snap, booking.WithLogger(a.log))
}

// step runs fn on the current wizard and saves it afterwards, also when fn
// failed: rejections change the wizard message and selection.
func (a *app) step(ctx context.Context, fn func(w *booking.Wizard) error) error {
	w, err := a.loadWizard(ctx)
	if err != nil {
		return err
	}
	stepErr := fn(w)
	if err := a.wizards.Save(ctx, w.Snapshot()); err != nil {
		return err
	}
	return stepErr
}

func (a *app) cmdBook(ctx context.Context, args []string) error {
	if _, err := a.session.RequireUser(); err != nil {
		return err
	}

	sub, rest := subcommand(args)
	switch sub {
	case "start":
		fs := newFlags("book start")
		court := fs.Int("court", 0, "Court id")
		if err := parse(fs, rest); err != nil {
			return err
		}
		if err := requireID("court", *court); err != nil {
			return err
		}
		w := booking.NewWizard(a.api, *court, booking.WithLogger(a.log))
		if err := a.wizards.Save(ctx, w.Snapshot()); err != nil {
			return err
		}
		if err := a.current.Set(ctx, w.ID()); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Booking %s started, pick a day with `book date --date YYYY-MM-DD`\n", w.ID())
		return nil

	case "date":
		fs := newFlags("book date")
		date := fs.String("date", "", "Day to book")
		if err := parse(fs, rest); err != nil {
			return err
		}
		day, err := parseDay(*date)
		if err != nil {
			return err
		}
		return a.step(ctx, func(w *booking.Wizard) error {
			if err := w.SelectDate(ctx, day); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s - %s\n", w.CourtName(), w.DateLabel())
			a.printSlots(w)
			return nil
		})

	case "slot":
		fs := newFlags("book slot")
		slot := fs.String("time", "", "Start slot HH:MM")
		if err := parse(fs, rest); err != nil {
			return err
		}
		return a.step(ctx, func(w *booking.Wizard) error {
			err := w.ClickSlot(strings.TrimSpace(*slot))
			a.printSlots(w)
			return err
		})

	case "slots":
		return a.step(ctx, func(w *booking.Wizard) error {
			a.printSlots(w)
			return nil
		})

	case "confirm":
		return a.step(ctx, func(w *booking.Wizard) error {
			s, err := w.Confirm(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Reservation %s\n  Court:  %s\n  Date:   %s\n  Time:   %s\n  Amount: S/ %s\n  Status: %s\n",
				s.Code, s.CourtName, s.DateLabel, s.HourLabel, s.Amount.StringFixed(2), s.Status)
			fmt.Fprintln(a.out, "Pay with `book pay ...`")
			return nil
		})

	case "pay":
		fs := newFlags("book pay")
		var form booking.CardForm
		fs.StringVar(&form.Number, "number", "", "Card number")
		fs.StringVar(&form.Expiry, "expiry", "", "Expiry MM/YY")
		fs.StringVar(&form.CVV, "cvv", "", "CVV")
		fs.StringVar(&form.HolderName, "holder", "", "Card holder")
		fs.StringVar(&form.Document, "document", "", "Holder document")
		fs.StringVar(&form.Email, "email", "", "Contact email")
		fs.StringVar(&form.Phone, "phone", "", "Contact phone")
		if err := parse(fs, rest); err != nil {
			return err
		}
		return a.step(ctx, func(w *booking.Wizard) error {
			if w.State() == booking.StateReservationCreated {
				if err := w.ProceedToPayment(); err != nil {
					return err
				}
			}
			if _, err := w.Pay(ctx, form); err != nil {
				return err
			}
			r, err := w.ShowReceipt()
			if err != nil {
				return err
			}
			a.printReceipt(w, r)
			return nil
		})

	case "receipt":
		return a.step(ctx, func(w *booking.Wizard) error {
			r, err := w.ShowReceipt()
			if err != nil {
				return err
			}
			a.printReceipt(w, r)
			return nil
		})

	case "resend":
		return a.step(ctx, func(w *booking.Wizard) error {
			msg, err := w.ResendReceipt(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, orDefault(msg, "Receipt sent to your email"))
			return nil
		})

	case "back":
		return a.step(ctx, func(w *booking.Wizard) error {
			if err := w.Back(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Back to %s\n", w.State())
			return nil
		})

	case "status", "":
		return a.step(ctx, func(w *booking.Wizard) error {
			fmt.Fprintf(a.out, "Booking %s: %s\n", w.ID(), w.State())
			if w.CourtName() != "" {
				fmt.Fprintf(a.out, "  Court: %s\n", w.CourtName())
			}
			if label := w.DateLabel(); label != "" {
				fmt.Fprintf(a.out, "  Date:  %s\n", label)
			}
			if label := w.HourLabel(); label != "" {
				fmt.Fprintf(a.out, "  Time:  %s (%d h, S/ %s)\n", label, w.Selection().Hours(), w.Total().StringFixed(2))
			}
			if id := w.ReservationID(); id != 0 {
				fmt.Fprintf(a.out, "  Reservation: R-%d\n", id)
			}
			if msg := w.Message(); msg != "" {
				fmt.Fprintf(a.out, "  ! %s\n", msg)
			}
			return nil
		})

	case "abandon":
		id, err := a.current.Get(ctx)
		if err != nil {
			return err
		}
		if id != "" {
			if err := a.wizards.Delete(ctx, id); err != nil {
				return err
			}
		}
		if err := a.current.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Booking discarded")
		return nil
	}
	return errUsage("book: unknown subcommand " + sub)
}

func (a *app) printSlots(w *booking.Wizard) {
	if w.State() != booking.StateSelectingSlot {
		return
	}
	var b strings.Builder
	for i, v := range w.Slots() {
		mark := " "
		switch {
		case v.Selected:
			mark = "*"
		case v.Status == models.SlotOccupied:
			mark = "x"
		case v.Status == models.SlotUnavailable:
			mark = "-"
		}
		fmt.Fprintf(&b, "[%s] %s  ", mark, v.Time)
		if i%4 == 3 {
			b.WriteString("\n")
		}
	}
	fmt.Fprintln(a.out, strings.TrimRight(b.String(), " \n"))
	fmt.Fprintf(a.out, "%d free slots", w.FreeSlotCount())
	if label := w.HourLabel(); label != "" {
		fmt.Fprintf(a.out, ", selected %s (%d h, S/ %s)", label, w.Selection().Hours(), w.Total().StringFixed(2))
	}
	fmt.Fprintln(a.out)
}

func (a *app) printReceipt(w *booking.Wizard, r *models.Receipt) {
	fmt.Fprintln(a.out, "Payment confirmed")
	fmt.Fprintf(a.out, "  Reservation: R-%d\n", r.ReservationID)
	fmt.Fprintf(a.out, "  Court:       %s\n", r.CourtName)
	fmt.Fprintf(a.out, "  Date:        %s\n", r.DateLabel)
	fmt.Fprintf(a.out, "  Time:        %s\n", r.HourLabel)
	fmt.Fprintf(a.out, "  Amount:      S/ %s\n", r.Amount.StringFixed(2))
	fmt.Fprintf(a.out, "  Method:      %s\n", r.Method)
	if r.Operation != "" {
		fmt.Fprintf(a.out, "  Operation:   %s\n", r.Operation)
	}
	if url, err := w.ReceiptPDFURL(); err == nil {
		fmt.Fprintf(a.out, "  PDF:         %s\n", url)
	}
}
