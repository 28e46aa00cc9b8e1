package app

import (
	"context"
	"time"

	"tabml/domain/core"
	"tabml/domain/training"
	"tabml/internal/analysis"
	"tabml/internal/config"
	"tabml/internal/logging"
	"tabml/internal/preprocess"
	trainer "tabml/internal/training"
	"tabml/ports"
)

// TrainingService runs one request through Loader -> Preprocessor -> Partitioner -> Trainer
type TrainingService struct {
	loader       ports.DatasetLoader
	preprocessor *preprocess.Preprocessor
	partitioner  *analysis.DataPartitioner
	trainer      *trainer.Trainer
	policies     config.TrainingConfig
	logger       *logging.Logger
}

// NewTrainingService wires the pipeline stages with the configured policies
func NewTrainingService(loader ports.DatasetLoader, cfg config.TrainingConfig) *TrainingService {
	return &TrainingService{
		loader:       loader,
		preprocessor: preprocess.NewPreprocessor(),
		partitioner:  analysis.NewDataPartitionerWithSeed(cfg.PartitionSeed),
		trainer:      trainer.NewTrainer(cfg.MaxIterations),
		policies:     cfg,
		logger:       logging.FromEnv("TrainingService"),
	}
}

// Train executes the pipeline. Request errors are reported before any file is
// touched; every stage fails fast and cancellation is checked between stages.
func (s *TrainingService) Train(ctx context.Context, req training.Request) (*training.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	family, err := training.ParseModelFamily(req.ModelFamily)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	runID := core.NewRunID()
	s.logger.Info("Run %s: %s on %s (target %s, %d features)",
		runID, family, req.DatasetRef, req.TargetColumn, len(req.FeatureColumns))

	stage := time.Now()
	table, err := s.loader.Load(ctx, req.DatasetRef)
	if err != nil {
		s.logger.Warn("Run %s: load failed: %v", runID, err)
		return nil, err
	}
	s.logger.Debug("Run %s: loaded %d rows in %.2fms", runID, table.RowCount(), sinceMs(stage))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared, err := s.preprocessor.Prepare(table, preprocess.SpecFromRequest(req, s.policies.ScalerFitScope))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("Run %s: prepared %d rows (%d deferred scaled columns)", runID, prepared.Table.RowCount(), len(prepared.Deferred))

	split, err := s.partitioner.Partition(prepared.Table, req.TrainFraction, req.EvalFraction)
	if err != nil {
		return nil, err
	}
	partition := split.Partition
	if len(prepared.Deferred) > 0 {
		if err := preprocess.Normalize(prepared.Table, prepared.Deferred, partition.TrainRows); err != nil {
			return nil, err
		}
	}
	if err := trainer.Assemble(prepared.Table, req.TargetColumn, req.FeatureColumns, partition); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	shape := trainer.TargetShapeOf(prepared.Table.Column(req.TargetColumn), partition)
	variant, err := trainer.SelectVariant(family, shape, s.policies.LogisticTargetPolicy)
	if err != nil {
		return nil, err
	}

	stage = time.Now()
	score, err := s.trainer.FitAndScore(variant, partition)
	if err != nil {
		s.logger.Error("Run %s: %s failed: %v", runID, variant, err)
		return nil, err
	}
	s.logger.Debug("Run %s: fitted %s on %d rows in %.2fms", runID, variant, len(partition.TrainRows), sinceMs(stage))

	result := &training.Result{
		RunID:                  runID,
		ModelFamily:            family,
		Variant:                variant,
		Score:                  score,
		EffectiveTrainFraction: split.PartitionStats.TrainRatio,
		EffectiveEvalFraction:  split.PartitionStats.EvalRatio,
		TrainRows:              split.PartitionStats.TrainRows,
		EvalRows:               split.PartitionStats.EvalRows,
		Duration:               time.Since(start),
	}
	s.logger.Info("Run %s finished: %s score=%.4f in %.2fms",
		runID, variant, score, float64(result.Duration.Nanoseconds())/1e6)
	return result, nil
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Nanoseconds()) / 1e6
}
