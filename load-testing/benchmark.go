package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"MiniBase/internal/platform/api"
	"MiniBase/internal/platform/client"
	"MiniBase/internal/platform/logging"
)

const benchTable = "bench"

type RequestResult struct {
	Operation string
	Duration  time.Duration
	Err       error
}

type BenchmarkStats struct {
	StartTime     time.Time
	EndTime       time.Time
	mu            sync.Mutex
	total         int64
	failed        int64
	perOperation  map[string]int64
	responseTimes []time.Duration
}

func NewBenchmarkStats() *BenchmarkStats {
	return &BenchmarkStats{StartTime: time.Now(), perOperation: map[string]int64{}}
}

func (b *BenchmarkStats) AddResult(result RequestResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.total++
	b.perOperation[result.Operation]++
	if result.Err != nil {
		b.failed++
	}
	b.responseTimes = append(b.responseTimes, result.Duration)
}

func (b *BenchmarkStats) Totals() (total, failed int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total, b.failed
}

// Percentiles returns the sorted response times at the given quantiles.
func (b *BenchmarkStats) Percentiles(quantiles ...float64) []time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]time.Duration, len(quantiles))
	if len(b.responseTimes) == 0 {
		return out
	}
	sorted := append([]time.Duration(nil), b.responseTimes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i, q := range quantiles {
		idx := int(math.Ceil(q*float64(len(sorted)))) - 1
		out[i] = sorted[min(max(idx, 0), len(sorted)-1)]
	}
	return out
}

func (b *BenchmarkStats) RPS() float64 {
	seconds := b.EndTime.Sub(b.StartTime).Seconds()
	if seconds == 0 {
		return 0
	}
	total, _ := b.Totals()
	return float64(total) / seconds
}

func (b *BenchmarkStats) SuccessRate() float64 {
	total, failed := b.Totals()
	if total == 0 {
		return 0
	}
	return float64(total-failed) / float64(total) * 100
}

func timed(stats *BenchmarkStats, operation string, call func() error) {
	start := time.Now()
	err := call()
	stats.AddResult(RequestResult{Operation: operation, Duration: time.Since(start), Err: err})
}

// worker mixes inserts, scans and index lookups against the bench table.
func worker(id int, cli *client.MiniBaseClient, until time.Time, stats *BenchmarkStats, wg *sync.WaitGroup) {
	defer wg.Done()
	rng := rand.New(rand.NewSource(int64(id)))
	for time.Now().Before(until) {
		key := strconv.Itoa(rng.Intn(1000))
		switch rng.Intn(3) {
		case 0:
			timed(stats, "insert", func() error {
				_, err := cli.InsertRecord(benchTable, fmt.Sprintf("w%d", id), key)
				return err
			})
		case 1:
			timed(stats, "scan", func() error {
				_, err := cli.Records(benchTable)
				return err
			})
		default:
			timed(stats, "search", func() error {
				_, err := cli.Search(benchTable, key)
				return err
			})
		}
	}
}

func printResults(stats *BenchmarkStats) {
	total, failed := stats.Totals()
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Duration: %v\n", stats.EndTime.Sub(stats.StartTime))
	fmt.Printf("Requests: %d (failed %d)\n", total, failed)
	fmt.Printf("Success rate: %.2f%%\n", stats.SuccessRate())
	fmt.Printf("RPS: %.2f\n", stats.RPS())
	for op, n := range stats.perOperation {
		fmt.Printf("  %-6s %d\n", op, n)
	}
	p := stats.Percentiles(0.5, 0.9, 0.99)
	fmt.Printf("p50 %v | p90 %v | p99 %v\n", p[0], p[1], p[2])
	fmt.Println(strings.Repeat("=", 60))
}

func main() {
	var (
		address  = flag.String("address", "http://localhost:3000", "MiniBase server address")
		workers  = flag.Int("workers", 10, "Number of worker goroutines")
		duration = flag.Duration("duration", 30*time.Second, "Test duration")
	)
	flag.Parse()
	logger := logging.NewLogger("info")

	cli := client.NewMiniBaseClient(*address)
	cli.DropTable(benchTable)
	_, err := cli.CreateTable(api.CreateTableRequest{
		Name: benchTable,
		Fields: []api.FieldRequest{
			{Name: "worker", Type: "string", Length: 6},
			{Name: "key", Type: "int", Length: 4},
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create bench table")
	}
	if _, err := cli.CreateIndex(benchTable, "key"); err != nil {
		logger.Fatal().Err(err).Msg("failed to create bench index")
	}

	logger.Info().Int("workers", *workers).Dur("duration", *duration).Str("address", *address).Msg("benchmark started")
	stats := NewBenchmarkStats()
	until := stats.StartTime.Add(*duration)
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go worker(i, cli, until, stats, &wg)
	}
	wg.Wait()
	stats.EndTime = time.Now()
	printResults(stats)
}
