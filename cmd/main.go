package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restobook/config"
	"restobook/pkg/api"
	"restobook/pkg/logger"
	"restobook/pkg/telemetry"
	"restobook/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	shutdownTelemetry := telemetry.Setup(cfg.ServiceName, cfg.OTLPEndpoint, log)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	session := api.NewSession(cfg.TokenFile)
	if err := session.Load(); err != nil {
		log.Warning("could not load session", logger.Error(err))
	}

	client := api.New(cfg.APIBaseURL, session, log)
	client.OnUnauthorized = func(path string) {
		fmt.Fprintf(os.Stderr, "session expired; log in again and retry %s\n", path)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "login":
		err = runLogin(client, os.Args[2:])
	case "reservations":
		err = runReservations(service.New(client, log).Reservations(), os.Args[2:])
	case "board":
		err = runBoard(service.New(client, log).Board(), os.Args[2:])
	case "print":
		err = runPrint(client, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: restobook <command>

commands:
  login          -u <username> -p <password>
  reservations   [-preset today|7d|all|custom] [-from D] [-to D] [-status S] [-q text]
                 [-accept id] [-reject id] [-cancel id] [-reason text]
                 [-delete id] [-force] [-yes]
  board          [-status S] [-hours N]  (watches live updates until interrupted)
  print          -daily <date> | -placecards <date> | -placecard <id>  [-status S]`)
}

func runLogin(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	_ = fs.Parse(args)
	if *username == "" || *password == "" {
		return fmt.Errorf("both -u and -p are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	user, err := client.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", user.Username, user.Role)
	if exp, ok := client.Session().ExpiresAt(); ok {
		fmt.Printf("session valid until %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func runReservations(list *service.ReservationList, args []string) error {
	fs := flag.NewFlagSet("reservations", flag.ExitOnError)
	preset := fs.String("preset", service.PresetToday, "filter preset")
	from := fs.String("from", "", "custom range start (YYYY-MM-DD)")
	to := fs.String("to", "", "custom range end (YYYY-MM-DD)")
	status := fs.String("status", "all", "status filter")
	query := fs.String("q", "", "free-text filter")
	accept := fs.Int64("accept", 0, "accept reservation id")
	reject := fs.Int64("reject", 0, "reject reservation id")
	cancel := fs.Int64("cancel", 0, "cancel reservation id")
	reason := fs.String("reason", "", "reason for reject/cancel")
	del := fs.Int64("delete", 0, "hard-delete reservation id")
	force := fs.Bool("force", false, "force override for hard delete")
	yes := fs.Bool("yes", false, "confirm hard delete")
	_ = fs.Parse(args)

	ctx, cancelCtx := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelCtx()

	list.SetForceDelete(*force)
	if err := setFilters(ctx, list, *preset, *from, *to, *status, *query); err != nil {
		return err
	}

	switch {
	case *accept != 0:
		if err := list.Accept(ctx, *accept); err != nil {
			return err
		}
	case *reject != 0:
		if err := list.Reject(ctx, *reject, *reason); err != nil {
			return err
		}
	case *cancel != 0:
		if err := list.Cancel(ctx, *cancel, *reason); err != nil {
			return err
		}
	case *del != 0:
		if err := list.HardDelete(ctx, *del, *yes); err != nil {
			return err
		}
	}

	printReservations(list)
	return nil
}

func setFilters(ctx context.Context, list *service.ReservationList, preset, from, to, status, query string) error {
	// Each Set* reloads; only the last snapshot is printed.
	if preset == service.PresetCustom {
		if err := list.SetCustomRange(ctx, from, to); err != nil {
			return err
		}
	} else if err := list.SetPreset(ctx, preset); err != nil {
		return err
	}
	if status != "all" {
		if err := list.SetStatus(ctx, status); err != nil {
			return err
		}
	}
	if query != "" {
		if err := list.SetQuery(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func printReservations(list *service.ReservationList) {
	rows := list.Rows()
	if len(rows) == 0 {
		fmt.Println("no reservations")
		return
	}
	fmt.Printf("%-6s %-22s %-20s %-6s %-10s\n", "ID", "START (UTC)", "GUEST", "PARTY", "STATUS")
	for _, r := range rows {
		deletable := ""
		if list.CanHardDelete(r) {
			deletable = " *"
		}
		fmt.Printf("%-6d %-22s %-20s %-6d %-10s%s\n",
			r.ID, r.StartAt, r.GuestName(), r.PartySize, r.Status, deletable)
	}
}

func runPrint(client *api.Client, args []string) error {
	fs := flag.NewFlagSet("print", flag.ExitOnError)
	daily := fs.String("daily", "", "print the daily sheet for a date (YYYY-MM-DD)")
	placecards := fs.String("placecards", "", "print placecards for a date (YYYY-MM-DD)")
	placecard := fs.Int64("placecard", 0, "print the placecard of one reservation")
	status := fs.String("status", "", "limit to a status")
	_ = fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var res api.PrintResult
	var err error
	switch {
	case *daily != "":
		res, err = client.PrintDaily(ctx, *daily, *status)
	case *placecards != "":
		res, err = client.PrintPlacecards(ctx, *placecards, *status)
	case *placecard != 0:
		res, err = client.PrintPlacecard(ctx, *placecard)
	default:
		return fmt.Errorf("one of -daily, -placecards or -placecard is required")
	}
	if err != nil {
		return err
	}
	fmt.Printf("print job accepted, %d lines\n", res.Lines)
	return nil
}

func runBoard(board *service.OrderBoard, args []string) error {
	fs := flag.NewFlagSet("board", flag.ExitOnError)
	status := fs.String("status", "all", "status filter")
	hours := fs.Int("hours", 8, "lookback window in hours")
	_ = fs.Parse(args)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board.Subscribe(func() {
		if err := board.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "board error:", err)
			return
		}
		if board.Loading() {
			return
		}
		rows := board.Rows()
		fmt.Printf("-- %d orders --\n", len(rows))
		for _, o := range rows {
			fmt.Printf("%-6d %-12s %s\n", o.ID, o.Status, o.CreatedAt.Local().Format("15:04:05"))
		}
	})

	if err := board.SetStatus(ctx, *status); err != nil {
		return err
	}
	if err := board.SetHours(ctx, *hours); err != nil {
		return err
	}
	if err := board.Start(ctx); err != nil {
		return err
	}
	defer board.Stop()

	fmt.Println("watching live orders, ctrl-c to stop")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-quit
	return nil
}
