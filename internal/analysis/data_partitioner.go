package analysis

import (
	"log"
	"math"
	"math/rand"

	"tabml/domain/core"
	"tabml/domain/dataset"
	"tabml/domain/training"
)

// DefaultPartitionSeed fixes the shuffle so repeated runs split identically
const DefaultPartitionSeed int64 = 42

// DataPartitioner splits table rows into disjoint train and eval sets
type DataPartitioner struct {
	randomSeed int64
}

// PartitionResult represents the outcome of data partitioning
type PartitionResult struct {
	Partition      *training.Partition
	PartitionStats PartitionStatistics
}

// PartitionStatistics provides metadata about the partitioning
type PartitionStatistics struct {
	TotalRows       int     `json:"total_rows"`
	TrainRows       int     `json:"train_rows"`
	EvalRows        int     `json:"eval_rows"`
	TrainRatio      float64 `json:"train_ratio"`
	EvalRatio       float64 `json:"eval_ratio"`
	RandomSeed      int64   `json:"random_seed"`
	PartitionMethod string  `json:"partition_method"`
}

// NewDataPartitioner creates a partitioner with the default seed
func NewDataPartitioner() *DataPartitioner {
	return NewDataPartitionerWithSeed(DefaultPartitionSeed)
}

// NewDataPartitionerWithSeed creates a partitioner with a specific seed for reproducibility
func NewDataPartitionerWithSeed(seed int64) *DataPartitioner {
	return &DataPartitioner{
		randomSeed: seed,
	}
}

// PartitionSizes applies the rounding rule: each size is round(fraction*N),
// the eval set is capped by the rows the train set left over.
func PartitionSizes(rowCount int, trainFraction, evalFraction float64) (int, int) {
	n := float64(rowCount)
	trainSize := min(int(math.Round(trainFraction*n)), rowCount)
	evalSize := min(int(math.Round(evalFraction*n)), rowCount-trainSize)
	return max(trainSize, 0), max(evalSize, 0)
}

// Partition shuffles the row indices of table and takes the first train rows,
// then the next eval rows. Either side ending up empty is an InsufficientData error.
func (dp *DataPartitioner) Partition(table *dataset.Table, trainFraction, evalFraction float64) (*PartitionResult, error) {
	totalRows := table.RowCount()
	trainSize, evalSize := PartitionSizes(totalRows, trainFraction, evalFraction)
	if trainSize < 1 || evalSize < 1 {
		return nil, core.NewInsufficientDataError(trainSize, evalSize, totalRows)
	}

	rows := dp.shuffledRows(totalRows)
	partition := &training.Partition{
		TrainRows: append([]int(nil), rows[:trainSize]...),
		EvalRows:  append([]int(nil), rows[trainSize:trainSize+evalSize]...),
	}

	stats := PartitionStatistics{
		TotalRows:       totalRows,
		TrainRows:       trainSize,
		EvalRows:        evalSize,
		TrainRatio:      float64(trainSize) / float64(totalRows),
		EvalRatio:       float64(evalSize) / float64(totalRows),
		RandomSeed:      dp.randomSeed,
		PartitionMethod: "simple_random",
	}
	log.Printf("[Partitioner] Split %d rows into train=%d eval=%d (seed %d)", totalRows, trainSize, evalSize, dp.randomSeed)

	return &PartitionResult{Partition: partition, PartitionStats: stats}, nil
}

// shuffledRows returns a deterministic permutation of 0..n-1
func (dp *DataPartitioner) shuffledRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	rng := rand.New(rand.NewSource(dp.randomSeed))
	rng.Shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})
	return rows
}
