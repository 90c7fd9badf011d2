package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/config"
	"github.com/harshithgowdakt/batchguard/internal/fragment"
	"github.com/harshithgowdakt/batchguard/internal/logger"
	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/physical"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

func main() {
	configFile := flag.String("config", "", "Config file path (yaml)")
	envFile := flag.String("env", ".env", "Env file path")
	validateIters := flag.Bool("validate", false, "Wrap every operator in an iterator validator")
	fragments := flag.Int("fragments", 4, "Number of fragments to run")
	batches := flag.Int("batches", 8, "Batches per fragment")
	rows := flag.Int("rows", 1024, "Rows per batch")
	where := flag.String("where", "score >= 50", "Filter predicate: column op literal")
	show := flag.Int("show", 5, "Rows of the first fragment to print")
	miswire := flag.Bool("miswire", false, "Insert an operator that reads its input before advancing it")
	flag.Parse()

	if *rows <= 0 || *rows > selection.MaxBatchRows {
		log.Fatalf("-rows must be in [1, %d]", selection.MaxBatchRows)
	}
	predicate, err := physical.ParseComparison(*where)
	if err != nil {
		log.Fatalf("Invalid -where: %v", err)
	}

	cfg, err := config.Load(config.LoaderConfig{ConfigFile: *configFile, EnvFile: *envFile})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *validateIters {
		cfg.Exec.Debug.ValidateIterators = true
	}
	base, logOut, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logOut.Close()
	lg := base.With().Str(logger.FieldComponent, "batchguard").Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	plans := make([]fragment.Plan, *fragments)
	for i := range plans {
		plans[i] = fragment.Plan{MajorID: 1, MinorID: i, Specs: demoChain(i, *batches, *rows, predicate, *miswire)}
	}

	sink := physical.NewBufferSink()
	queryID, results, err := fragment.NewRunner(cfg, lg, sink).Run(ctx, plans)

	fmt.Printf("query %s (validate_iterators=%v, compression=%s)\n",
		queryID, cfg.Exec.Debug.ValidateIterators, cfg.Exec.Compression)
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Printf("  fragment %d:%d  batches=%d rows=%d bytes=%d  %s\n",
			r.Handle.MajorID, r.Handle.MinorID, r.Stats.Batches, r.Stats.Rows, r.Stats.Bytes, status)
	}
	if len(results) > 0 && results[0].Err == nil && *show > 0 {
		if err := printRows(sink, results[0].Handle, *show); err != nil {
			fmt.Printf("  decode: %v\n", err)
		}
	}
	if err != nil {
		logOut.Close()
		os.Exit(1)
	}
}

// printRows decodes the frames a fragment sent and prints up to limit rows.
func printRows(sink *physical.BufferSink, handle ops.FragmentHandle, limit int) error {
	blocks, err := sink.Blocks(handle)
	if err != nil {
		return err
	}
	printed := 0
	for i, b := range blocks {
		if printed >= limit {
			break
		}
		if i == 0 {
			fmt.Printf("  %s\n", strings.Join(b.ColumnNames, "\t"))
		}
		for row := 0; row < b.NumRows() && printed < limit; row++ {
			cells := make([]string, len(b.Columns))
			for c, col := range b.Columns {
				cells[c] = types.ValueToString(col.Value(row))
			}
			fmt.Printf("  %s\n", strings.Join(cells, "\t"))
			printed++
		}
	}
	return nil
}

// demoChain is values -> filter -> sort -> remover -> limit -> project.
func demoChain(seed, batches, rows int, predicate physical.Comparison, miswire bool) []physical.OperatorSpec {
	rng := rand.New(rand.NewPCG(uint64(seed), 42))
	blocks := make([]*column.Block, batches)
	for b := range blocks {
		ids := make([]int64, rows)
		scores := make([]float64, rows)
		tags := make([]string, rows)
		for r := 0; r < rows; r++ {
			ids[r] = int64(b*rows + r)
			scores[r] = rng.Float64() * 100
			tags[r] = fmt.Sprintf("t%d", rng.IntN(16))
		}
		blocks[b] = column.NewBlock(
			[]string{"id", "score", "tag"},
			[]column.Column{
				&column.Int64Column{Data: ids},
				&column.Float64Column{Data: scores},
				&column.StringColumn{Data: tags},
			},
		)
	}

	specs := []physical.OperatorSpec{
		physical.ValuesSpec{Blocks: blocks},
		physical.FilterSpec{Predicate: predicate},
	}
	if miswire {
		specs = append(specs, peekSpec{})
	}
	return append(specs,
		physical.SortSpec{Keys: []physical.SortKey{{Column: "score", Desc: true}, {Column: "id"}}},
		physical.RemoverSpec{},
		physical.LimitSpec{Count: 100},
		physical.ProjectSpec{Items: []physical.ProjectItem{{Column: "id"}, {Column: "score", Alias: "top_score"}, {Column: "tag"}}},
	)
}

// peekBatch asks its input for a record count before advancing it.
type peekBatch struct {
	record.RecordBatch
}

func (p peekBatch) Next() (record.Outcome, error) {
	_ = p.RecordBatch.RecordCount()
	return p.RecordBatch.Next()
}

type peekSpec struct{}

func (peekSpec) Name() string { return "peek" }
func (peekSpec) Create(_ *ops.FragmentContext, incoming record.RecordBatch) (record.RecordBatch, error) {
	return peekBatch{RecordBatch: incoming}, nil
}
