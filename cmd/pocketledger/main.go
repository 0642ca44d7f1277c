package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"pocketledger/internal/config"
	"pocketledger/internal/dashboard"
	"pocketledger/internal/domain"
	"pocketledger/internal/finance"
	"pocketledger/internal/logger"
	"pocketledger/internal/session"
	"pocketledger/internal/store"
	"pocketledger/internal/store/firestore"
	"pocketledger/internal/store/memory"
	"pocketledger/internal/suggest"
	"pocketledger/internal/view"
)

const dateLayout = "2006-01-02"

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	switch os.Args[1] {
	case "signup":
		runAuth(log, cfg, true)
	case "login":
		runAuth(log, cfg, false)
	case "add-category":
		runAddCategory(log, cfg)
	case "categories":
		runCategories(log, cfg)
	case "add":
		runAdd(log, cfg)
	case "list":
		runList(log, cfg)
	case "dashboard":
		runDashboard(log, cfg)
	case "watch":
		runWatch(log, cfg)
	case "suggest":
		runSuggest(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Pocketledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  pocketledger <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  signup        Create an account with email and password")
	fmt.Println("  login         Sign in and print the user id")
	fmt.Println("  add-category  Create or update a category")
	fmt.Println("  categories    List categories")
	fmt.Println("  add           Record a transaction")
	fmt.Println("  list          List transactions with optional filters")
	fmt.Println("  dashboard     Print the dashboard summary and monthly totals")
	fmt.Println("  watch         Stream dashboard updates until interrupted")
	fmt.Println("  suggest       Suggest a category for a note")
	fmt.Println("  help          Show this help message")
	fmt.Println("\nRun 'pocketledger <command> -h' for more information on a command.")
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) store.Store {
	switch cfg.Backend {
	case "firestore":
		var opts []option.ClientOption
		if cfg.GoogleCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
		}
		s, err := firestore.New(ctx, cfg.GoogleProjectID, opts...)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open Firestore")
		}
		return s
	default:
		return memory.New()
	}
}

func runAuth(log zerolog.Logger, cfg *config.Config, signUp bool) {
	name := "login"
	if signUp {
		name = "signup"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	fs.Parse(os.Args[2:])

	if *email == "" || *password == "" {
		log.Fatal().Msgf("Usage: pocketledger %s -email ADDR -password SECRET", name)
	}
	if cfg.IdentityAPIKey == "" {
		log.Fatal().Msg("IDENTITY_API_KEY is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	provider, err := session.NewGoogleProvider(ctx, cfg.IdentityAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create identity provider")
	}
	mgr := session.NewManager(provider)

	if signUp {
		mgr.SignUp(ctx, *email, *password)
	} else {
		mgr.SignIn(ctx, *email, *password)
	}

	state := awaitSettled(ctx, mgr)
	switch state.Kind {
	case session.Authenticated:
		fmt.Printf("Signed in as %s (uid %s)\n", state.Email, state.UID)
	case session.Error:
		log.Fatal().Str("message", state.Message).Msg("Authentication failed")
	default:
		log.Fatal().Msg("Authentication timed out")
	}
}

func awaitSettled(ctx context.Context, mgr *session.Manager) session.AuthState {
	for {
		state := mgr.State()
		if state.Kind == session.Authenticated || state.Kind == session.Error {
			return state
		}
		select {
		case <-mgr.Updates():
		case <-ctx.Done():
			return mgr.State()
		}
	}
}

func runAddCategory(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("add-category", flag.ExitOnError)
	uid := fs.String("uid", "", "User id")
	id := fs.String("id", "", "Category id (empty to create)")
	name := fs.String("name", "", "Category name")
	color := fs.String("color", "", "Hex color, e.g. #FF8800")
	fs.Parse(os.Args[2:])

	if *uid == "" {
		log.Fatal().Msg("Error: -uid is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := finance.NewRepository(openStore(ctx, cfg, log))
	cats := view.NewCategoriesView(repo, *uid)

	catID, err := cats.Save(ctx, domain.Category{ID: *id, Name: *name, ColorHex: *color})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save category")
	}
	fmt.Printf("Saved category %s\n", catID)
}

func runCategories(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("categories", flag.ExitOnError)
	uid := fs.String("uid", "", "User id")
	fs.Parse(os.Args[2:])

	if *uid == "" {
		log.Fatal().Msg("Error: -uid is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := finance.NewRepository(openStore(ctx, cfg, log))
	stream := repo.ObserveCategories(ctx, *uid)
	defer stream.Close()

	cats, err := stream.Next(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list categories")
	}
	for _, c := range cats {
		fmt.Printf("%s  %-20s %s\n", c.ID, c.Name, c.ColorHex)
	}
}

func runAdd(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	uid := fs.String("uid", "", "User id")
	id := fs.String("id", "", "Transaction id (empty to create)")
	amount := fs.String("amount", "", "Amount, e.g. 12.50")
	txType := fs.String("type", "expense", "income or expense")
	category := fs.String("category", "", "Category id")
	note := fs.String("note", "", "Free-form note")
	date := fs.String("date", "", "Date as YYYY-MM-DD (defaults to today)")
	fs.Parse(os.Args[2:])

	if *uid == "" {
		log.Fatal().Msg("Error: -uid is required")
	}

	var dateMillis int64
	if *date != "" {
		day, err := time.Parse(dateLayout, *date)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -date")
		}
		dateMillis = day.UnixMilli()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := finance.NewRepository(openStore(ctx, cfg, log))
	editor := view.NewTransactionEditor(repo, *uid)

	txID, err := editor.Save(ctx, view.EditInput{
		TxID:            *id,
		AmountText:      *amount,
		Type:            domain.ParseTxType(strings.ToUpper(*txType)),
		CategoryID:      *category,
		Note:            *note,
		DateEpochMillis: dateMillis,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save transaction")
	}
	fmt.Printf("Saved transaction %s\n", txID)
}

func runList(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	uid := fs.String("uid", "", "User id")
	txType := fs.String("type", "", "Filter by income or expense")
	category := fs.String("category", "", "Filter by category id")
	search := fs.String("search", "", "Filter notes by substring")
	start := fs.String("start", "", "Start date YYYY-MM-DD (inclusive)")
	end := fs.String("end", "", "End date YYYY-MM-DD (inclusive)")
	limit := fs.Int("limit", 0, "Maximum rows (0 = all)")
	fs.Parse(os.Args[2:])

	if *uid == "" {
		log.Fatal().Msg("Error: -uid is required")
	}

	filter := domain.TxFilter{NewestFirst: true}
	if *txType != "" {
		t := domain.ParseTxType(strings.ToUpper(*txType))
		filter.Type = &t
	}
	if *category != "" {
		filter.CategoryID = category
	}
	filter.SearchNote = *search
	filter.Limit = *limit
	if *start != "" {
		day, err := time.Parse(dateLayout, *start)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -start")
		}
		ms := day.UnixMilli()
		filter.StartEpochMillis = &ms
	}
	if *end != "" {
		day, err := time.Parse(dateLayout, *end)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -end")
		}
		ms := day.Add(24*time.Hour - time.Millisecond).UnixMilli()
		filter.EndEpochMillis = &ms
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := finance.NewRepository(openStore(ctx, cfg, log))
	stream := repo.ObserveTransactions(ctx, *uid, filter)
	defer stream.Close()

	txs, err := stream.Next(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}
	for _, tx := range txs {
		day := time.UnixMilli(tx.DateEpochMillis).UTC().Format(dateLayout)
		fmt.Printf("%s  %s  %-7s %10.2f  %-12s %s\n", tx.ID, day, tx.Type, tx.Amount, tx.CategoryID, tx.Note)
	}
}

func runDashboard(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	uid := fs.String("uid", "", "User id")
	fs.Parse(os.Args[2:])

	if *uid == "" {
		log.Fatal().Msg("Error: -uid is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := finance.NewRepository(openStore(ctx, cfg, log))
	feed := dashboard.NewFeed(ctx, repo, *uid)
	defer feed.Close()

	summary, err := feed.Next(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load dashboard")
	}
	printSummary(summary)

	stream := repo.ObserveTransactions(ctx, *uid, domain.TxFilter{NewestFirst: true})
	defer stream.Close()
	txs, err := stream.Next(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load monthly totals")
	}
	fmt.Println("\nMonthly totals:")
	for _, m := range dashboard.MonthlyTotals(txs) {
		fmt.Printf("  %04d-%02d  in %10.2f  out %10.2f  net %10.2f\n", m.Year, m.Month, m.Income, m.Expense, m.Balance())
	}
}

func printSummary(s dashboard.Summary) {
	fmt.Printf("Income  %10.2f\nExpense %10.2f\nBalance %10.2f\n", s.Income, s.Expense, s.Balance)
	if len(s.ExpenseByCategory) > 0 {
		fmt.Println("\nExpense by category:")
		for _, g := range s.ExpenseByCategory {
			fmt.Printf("  %-20s %10.2f  %s\n", g.CategoryName, g.Amount, g.ColorHex)
		}
	}
	if len(s.Recent) > 0 {
		fmt.Println("\nRecent:")
		for _, tx := range s.Recent {
			day := time.UnixMilli(tx.DateEpochMillis).UTC().Format(dateLayout)
			fmt.Printf("  %s  %-7s %10.2f  %s\n", day, tx.Type, tx.Amount, tx.Note)
		}
	}
}

func runWatch(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	uid := fs.String("uid", "", "User id")
	fs.Parse(os.Args[2:])

	if *uid == "" {
		log.Fatal().Msg("Error: -uid is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := finance.NewRepository(openStore(ctx, cfg, log))
	feed := dashboard.NewFeed(ctx, repo, *uid)
	defer feed.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case update, ok := <-feed.Updates():
				if !ok {
					return nil
				}
				if update.Err != nil {
					return update.Err
				}
				fmt.Println("---")
				printSummary(update.Summary)
			case <-ctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)
		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Watch failed")
	}
}

func runSuggest(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	uid := fs.String("uid", "", "User id")
	note := fs.String("note", "", "Transaction note to classify")
	fs.Parse(os.Args[2:])

	if *uid == "" || *note == "" {
		log.Fatal().Msg("Usage: pocketledger suggest -uid ID -note TEXT")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo := finance.NewRepository(openStore(ctx, cfg, log))
	stream := repo.ObserveCategories(ctx, *uid)
	defer stream.Close()
	cats, err := stream.Next(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list categories")
	}

	suggester, err := suggest.New(ctx, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create suggester")
	}
	cat, err := suggester.SuggestCategory(ctx, *note, cats)
	if err != nil {
		log.Fatal().Err(err).Msg("No suggestion")
	}
	fmt.Printf("Suggested category: %s (%s)\n", cat.Name, cat.ID)
}
