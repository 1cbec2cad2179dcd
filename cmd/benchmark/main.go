package main

import (
	"flag"
	"sort"
	"time"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/quantfabric/matchbook/pkg/lob"
	"github.com/quantfabric/matchbook/pkg/simulate"
)

// percentile returns the p-th percentile (0..1) of sorted latency samples.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func main() {
	orders := flag.Int("orders", 100000, "Orders to insert during measurement")
	warmup := flag.Int("warmup", 10000, "Orders to insert before measuring")
	degree := flag.Int("degree", lob.DefaultDegree, "B+-tree minimum degree")
	seed := flag.Int64("seed", 42, "Generator seed")
	flag.Parse()

	logger := log.NewLogger("benchmark").
		WithFields(log.Int("orders", *orders), log.Int("degree", *degree))
	m := metrics.New("benchmark")
	insertHist := m.NewHistogram("insert_latency_nanoseconds", "order insert latency in nanoseconds", nil)

	book := lob.NewBookWithDegree("BENCH", *degree)
	gen := simulate.New(simulate.Config{Symbol: "BENCH", Seed: *seed})

	logger.Info("warming up book", "warmup", *warmup)
	for _, o := range gen.Batch(*warmup) {
		if err := book.Submit(o); err != nil {
			logger.Fatal("warmup submit failed", log.Err(err))
		}
	}

	logger.Info("measuring inserts")
	batch := gen.Batch(*orders)
	latencies := make([]time.Duration, 0, len(batch))
	insertStart := time.Now()
	for _, o := range batch {
		start := time.Now()
		if err := book.Submit(o); err != nil {
			logger.Fatal("submit failed", log.Err(err))
		}
		elapsed := time.Since(start)
		insertHist.Observe(float64(elapsed))
		latencies = append(latencies, elapsed)
	}
	insertElapsed := time.Since(insertStart)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	logger.Info("measuring match sweep",
		"active_orders", book.ActiveOrders(),
		"bid_count", book.BidCount(),
		"ask_count", book.AskCount())
	matchStart := time.Now()
	trades, err := book.Match()
	matchElapsed := time.Since(matchStart)
	if err != nil {
		logger.Fatal("match failed", log.Err(err))
	}

	perTrade := time.Duration(0)
	if len(trades) > 0 {
		perTrade = matchElapsed / time.Duration(len(trades))
	}
	logger.Info("results",
		"inserts_per_sec", int64(float64(*orders)/insertElapsed.Seconds()),
		"insert_p50_ns", percentile(latencies, 0.5),
		"insert_p99_ns", percentile(latencies, 0.99),
		"trades", len(trades),
		"match_elapsed", matchElapsed,
		"per_trade", perTrade,
		"resting_after_match", book.ActiveOrders())
}
