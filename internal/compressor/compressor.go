package compressor

import (
	"sort"
	"sync"
	"time"

	"sql-compact/internal/analyzer"
	"sql-compact/internal/model"

	"go.uber.org/zap"
)

// unknownSQLID stands in for records that arrive without a sql_id.
const unknownSQLID = "unknown"

// Compressor groups statement-statistic records by structural
// signature and rolls up their counters.
type Compressor struct {
	// Workers sets the fan-out for the extraction phase. Values below
	// two keep extraction sequential. The reduction phase is always
	// sequential in original input order.
	Workers int

	analyzer *analyzer.Analyzer
	logger   *zap.Logger

	cache    model.Cache
	cacheTTL time.Duration
}

func NewCompressor(a *analyzer.Analyzer, logger *zap.Logger) *Compressor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compressor{analyzer: a, logger: logger}
}

// SetCache attaches a feature cache keyed by verbatim SQL text.
// Extraction results are memoized with the given TTL.
func (c *Compressor) SetCache(cache model.Cache, ttl time.Duration) {
	c.cache = cache
	c.cacheTTL = ttl
}

// accumulator owns the mutable state of one signature group during the
// aggregation pass. It is inserted explicitly on first sight and
// mutated by exactly one goroutine.
type accumulator struct {
	group model.AggregatedGroup
}

// Compress reduces a batch of statement-statistic records to
// signature-keyed groups with rolled-up counters. A nil slice violates
// the call contract; an empty slice yields the canonical empty result.
// Records without SQL text are skipped silently.
func (c *Compressor) Compress(records []model.StatRecord) (*model.CompressionResult, error) {
	if records == nil {
		return nil, model.ErrInvalidInput
	}

	result := &model.CompressionResult{Groups: []model.AggregatedGroup{}}
	if len(records) == 0 {
		return result, nil
	}

	features := c.extractAll(records)

	order := make([]string, 0)
	accs := make(map[string]*accumulator)

	for i := range records {
		rec := &records[i]
		f := features[i]
		if f == nil {
			continue // skipped: no SQL text
		}

		acc, ok := accs[f.Signature]
		if !ok {
			acc = &accumulator{group: model.AggregatedGroup{
				Signature:         f.Signature,
				RepresentativeSQL: *rec.SQLText,
				QueryType:         f.QueryType,
				Complexity:        f.Complexity,
				SQLIDs:            []string{},
			}}
			accs[f.Signature] = acc
			order = append(order, f.Signature)
		}

		id := rec.SQLID
		if id == "" {
			id = unknownSQLID
		}
		g := &acc.group
		g.SQLIDs = append(g.SQLIDs, id)
		g.TotalExecutions += rec.Executions
		g.TotalElapsedTimeMs += rec.ElapsedTimeMs
		g.TotalCPUTimeMs += rec.CPUTimeMs
		g.TotalDiskReads += rec.DiskReads
		g.TotalBufferGets += rec.BufferGets
		g.TotalRowsProcessed += rec.RowsProcessed

		result.TotalQueries++
		result.TotalExecutions += rec.Executions
	}

	for _, sig := range order {
		g := accs[sig].group
		g.QueryCount = len(g.SQLIDs)
		if g.TotalExecutions > 0 {
			g.AvgElapsedTimeMs = g.TotalElapsedTimeMs / float64(g.TotalExecutions)
			g.AvgCPUTimeMs = g.TotalCPUTimeMs / float64(g.TotalExecutions)
		}
		result.Groups = append(result.Groups, g)
	}

	// Hottest patterns first; ties keep first-seen order.
	sort.SliceStable(result.Groups, func(i, j int) bool {
		return result.Groups[i].TotalExecutions > result.Groups[j].TotalExecutions
	})

	result.UniquePatterns = len(result.Groups)
	if result.UniquePatterns > 0 {
		result.CompressionRatio = float64(result.TotalQueries) / float64(result.UniquePatterns)
	}

	c.logger.Info("workload compressed",
		zap.Int64("total_queries", result.TotalQueries),
		zap.Int("unique_patterns", result.UniquePatterns),
		zap.Float64("compression_ratio", result.CompressionRatio))

	return result, nil
}

// extractAll computes features for every record, indexed by input
// position. Records without SQL text map to nil. Extraction is
// independent per record, so it may fan out across workers; results
// land in an index-addressed slice to keep input order intact for the
// reduction.
func (c *Compressor) extractAll(records []model.StatRecord) []*model.QueryFeatures {
	features := make([]*model.QueryFeatures, len(records))

	if c.Workers < 2 || len(records) < 2 {
		for i := range records {
			features[i] = c.extractOne(&records[i])
		}
		return features
	}

	jobs := make(chan int, len(records))
	var wg sync.WaitGroup
	for w := 0; w < c.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				features[i] = c.extractOne(&records[i])
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return features
}

func (c *Compressor) extractOne(rec *model.StatRecord) *model.QueryFeatures {
	if rec.SQLText == nil || *rec.SQLText == "" {
		return nil
	}

	if c.cache != nil {
		if v, ok := c.cache.Get(*rec.SQLText); ok {
			if f, ok := v.(*model.QueryFeatures); ok {
				return f
			}
		}
	}

	// Extraction is total for non-nil text; malformed SQL degrades to
	// the empty feature record instead of failing the batch.
	f, err := c.analyzer.Extract(rec.SQLText)
	if err != nil {
		return nil
	}

	if c.cache != nil {
		c.cache.Set(*rec.SQLText, f, c.cacheTTL)
	}
	return f
}
