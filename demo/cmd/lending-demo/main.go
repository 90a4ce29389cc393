// The lending-demo binary wires the Postgres record store, the catalog and
// all lending handlers together and drives a small simulated library through
// cataloguing, registration and a few lending rounds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/openshelf/lending-engine-go/lending/catalog"
	"github.com/openshelf/lending-engine-go/lending/core"
	"github.com/openshelf/lending-engine-go/lending/features/command/borrowcopy"
	"github.com/openshelf/lending-engine-go/lending/features/command/catalogbook"
	"github.com/openshelf/lending-engine-go/lending/features/command/registerpatron"
	"github.com/openshelf/lending-engine-go/lending/features/command/renewloan"
	"github.com/openshelf/lending-engine-go/lending/features/command/reservebook"
	"github.com/openshelf/lending-engine-go/lending/features/command/returncopy"
	"github.com/openshelf/lending-engine-go/lending/features/query/patronloans"
	"github.com/openshelf/lending-engine-go/lending/shell"
	"github.com/openshelf/lending-engine-go/lending/shell/config"
	"github.com/openshelf/lending-engine-go/recordstore/oteladapters"
	"github.com/openshelf/lending-engine-go/recordstore/postgresengine"
)

const (
	defaultBooks   = 10
	defaultPatrons = 5
	defaultRounds  = 50
)

type Config struct {
	Books                int
	Patrons              int
	Rounds               int
	ObservabilityEnabled bool
}

type handlers struct {
	catalogBook    shell.ObservableCommandHandler[catalogbook.Command, catalogbook.Result]
	registerPatron shell.ObservableCommandHandler[registerpatron.Command, shell.HandlerResult]
	borrowCopy     shell.ObservableCommandHandler[borrowcopy.Command, shell.HandlerResult]
	returnCopy     shell.ObservableCommandHandler[returncopy.Command, returncopy.Result]
	renewLoan      shell.ObservableCommandHandler[renewloan.Command, shell.HandlerResult]
	reserveBook    shell.ObservableCommandHandler[reservebook.Command, shell.HandlerResult]
	patronLoans    shell.ObservableQueryHandler[patronloans.Query, patronloans.PatronLoans]
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, stopping...", sig)
		cancel()
	}()

	pgxPool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolSingleConfig())
	if err != nil {
		log.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pgxPool.Close()

	if err = pgxPool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	storeOptions, obsOptions := buildObservability(cfg)

	recordStore, err := postgresengine.NewRecordStoreFromPGXPool(pgxPool, storeOptions...)
	if err != nil {
		log.Fatalf("Failed to create record store: %v", err)
	}

	store := catalog.NewStore(recordStore)
	h := buildHandlers(store, obsOptions)

	log.Printf("Lending demo started: books=%d, patrons=%d, rounds=%d", cfg.Books, cfg.Patrons, cfg.Rounds)

	if err = run(ctx, cfg, h); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Demo failed: %v", err)
	}

	log.Printf("Lending demo finished")
}

func parseFlags() Config {
	var (
		books         = flag.Int("books", defaultBooks, "Number of books to catalogue initially")
		patrons       = flag.Int("patrons", defaultPatrons, "Number of patrons to register")
		rounds        = flag.Int("rounds", defaultRounds, "Number of lending rounds to simulate")
		observability = flag.Bool("observability-enabled", false, "Enable OpenTelemetry observability")
	)

	flag.Parse()

	return Config{
		Books:                *books,
		Patrons:              *patrons,
		Rounds:               *rounds,
		ObservabilityEnabled: *observability,
	}
}

func buildObservability(cfg Config) ([]postgresengine.Option, []shell.ObservabilityOption) {
	if !cfg.ObservabilityEnabled {
		return nil, nil
	}

	tracer := otel.Tracer("lending-demo")
	meter := otel.Meter("lending-demo")

	metricsCollector := oteladapters.NewMetricsCollector(meter)
	tracingCollector := oteladapters.NewTracingCollector(tracer)
	contextualLogger := oteladapters.NewSlogBridgeLogger("lending-demo")

	storeOptions := []postgresengine.Option{
		postgresengine.WithContextualLogger(contextualLogger),
		postgresengine.WithMetrics(metricsCollector),
		postgresengine.WithTracing(tracingCollector),
	}

	obsOptions := []shell.ObservabilityOption{
		shell.WithContextualLogger(contextualLogger),
		shell.WithMetricsCollector(metricsCollector),
		shell.WithTracingCollector(tracingCollector),
	}

	return storeOptions, obsOptions
}

func buildHandlers(store *catalog.Store, obsOptions []shell.ObservabilityOption) handlers {
	allocator := catalog.NewAllocator(store)

	catalogBookHandler := catalogbook.NewCommandHandler(store, allocator)
	registerPatronHandler := registerpatron.NewCommandHandler(store)
	borrowCopyHandler := borrowcopy.NewCommandHandler(store)
	returnCopyHandler := returncopy.NewCommandHandler(store)
	renewLoanHandler := renewloan.NewCommandHandler(store)
	reserveBookHandler := reservebook.NewCommandHandler(store)
	patronLoansHandler := patronloans.NewQueryHandler(store)

	return handlers{
		catalogBook:    shell.NewObservableCommandHandler(catalogBookHandler.Handle, obsOptions...),
		registerPatron: shell.NewObservableCommandHandler(registerPatronHandler.Handle, obsOptions...),
		borrowCopy:     shell.NewObservableCommandHandler(borrowCopyHandler.Handle, obsOptions...),
		returnCopy:     shell.NewObservableCommandHandler(returnCopyHandler.Handle, obsOptions...),
		renewLoan:      shell.NewObservableCommandHandler(renewLoanHandler.Handle, obsOptions...),
		reserveBook:    shell.NewObservableCommandHandler(reserveBookHandler.Handle, obsOptions...),
		patronLoans:    shell.NewObservableQueryHandler(patronLoansHandler.Handle, obsOptions...),
	}
}

func run(ctx context.Context, cfg Config, h handlers) error {
	bookIDs, err := catalogBooks(ctx, cfg, h)
	if err != nil {
		return err
	}

	patronIDs, err := registerPatrons(ctx, cfg, h)
	if err != nil {
		return err
	}

	if err = lendingRounds(ctx, cfg, h, bookIDs, patronIDs); err != nil {
		return err
	}

	return reportPatrons(ctx, h, patronIDs)
}

func catalogBooks(ctx context.Context, cfg Config, h handlers) ([]core.BookIDString, error) {
	bookIDs := make([]core.BookIDString, 0, cfg.Books)

	for i := 0; i < cfg.Books; i++ {
		command := catalogbook.BuildCommand(
			fmt.Sprintf("Demo Book %d", i+1),
			"Demoauthor",
			"005.133",
			1,
			1,
			1+rand.IntN(3),
		)

		result, err := h.catalogBook.Handle(ctx, command)
		if err != nil {
			return nil, fmt.Errorf("catalog book: %w", err)
		}

		bookIDs = append(bookIDs, result.BookID)
	}

	return bookIDs, nil
}

func registerPatrons(ctx context.Context, cfg Config, h handlers) ([]core.PatronIDString, error) {
	patronIDs := make([]core.PatronIDString, 0, cfg.Patrons)

	for i := 0; i < cfg.Patrons; i++ {
		patronID := fmt.Sprintf("patron-%d", i+1)
		command := registerpatron.BuildCommand(patronID, fmt.Sprintf("Demo Patron %d", i+1), true)

		if _, err := h.registerPatron.Handle(ctx, command); err != nil {
			return nil, fmt.Errorf("register patron: %w", err)
		}

		patronIDs = append(patronIDs, patronID)
	}

	return patronIDs, nil
}

func lendingRounds(
	ctx context.Context,
	cfg Config,
	h handlers,
	bookIDs []core.BookIDString,
	patronIDs []core.PatronIDString,
) error {
	for round := 0; round < cfg.Rounds; round++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		patronID := patronIDs[rand.IntN(len(patronIDs))]
		bookID := bookIDs[rand.IntN(len(bookIDs))]
		copyNumber := catalog.CopyNumberFor(bookID, 1)

		switch rand.IntN(4) {
		case 0:
			_, err := h.borrowCopy.Handle(ctx, borrowcopy.BuildCommand(patronID, copyNumber))
			if err := tolerateBusinessOutcome(err); err != nil {
				return fmt.Errorf("borrow copy: %w", err)
			}
		case 1:
			result, err := h.returnCopy.Handle(ctx, returncopy.BuildCommand(patronID, copyNumber))
			if err := tolerateBusinessOutcome(err); err != nil {
				return fmt.Errorf("return copy: %w", err)
			}
			if err == nil && !result.ReturnedOnTime {
				log.Printf("Late return by %s, fine charged: %d", patronID, result.FineAmount)
			}
		case 2:
			_, err := h.renewLoan.Handle(ctx, renewloan.BuildCommand(patronID, copyNumber))
			if err := tolerateBusinessOutcome(err); err != nil {
				return fmt.Errorf("renew loan: %w", err)
			}
		default:
			_, err := h.reserveBook.Handle(ctx, reservebook.BuildCommand(patronID, bookID))
			if err := tolerateBusinessOutcome(err); err != nil {
				return fmt.Errorf("reserve book: %w", err)
			}
		}
	}

	return nil
}

// tolerateBusinessOutcome keeps the simulation running through expected
// outcomes: rejected commands and lookups that miss are part of normal
// library traffic, everything else aborts the demo.
func tolerateBusinessOutcome(err error) error {
	if err == nil {
		return nil
	}

	if _, isRejection := shell.AsRejection(err); isRejection {
		return nil
	}

	if errors.Is(err, shell.ErrNotFound) {
		return nil
	}

	return err
}

func reportPatrons(ctx context.Context, h handlers, patronIDs []core.PatronIDString) error {
	for _, patronID := range patronIDs {
		result, err := h.patronLoans.Handle(ctx, patronloans.BuildQuery(patronID))
		if err != nil {
			return fmt.Errorf("patron loans: %w", err)
		}

		log.Printf("%s (%s): %d open loans, %d total loans, fine total %d",
			result.PatronID, result.Name, len(result.OpenLoans()), len(result.Loans), result.FineTotal)
	}

	return nil
}
