package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/adapter-studio/adapter-studio/internal/config"
	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
	"github.com/adapter-studio/adapter-studio/internal/runner"
)

// trainDraftOptions holds the resolved examples.train_draft_model inputs.
type trainDraftOptions struct {
	Checkpoint    string
	TrainData     string
	EvalData      string
	CheckpointDir string

	Epochs          int
	LearningRate    float64
	BatchSize       int
	TargetPrecision string
	DraftPrecision  string
	WarmupEpochs    int

	GradAccumSteps      *int
	WeightDecay         *float64
	ClipGradNorm        *float64
	MaxSequenceLength   *int
	LossUpdateFrequency *int
	CheckpointFrequency *int

	ActivationCheckpointing bool
	CompileTargetModel      bool
	CompileDraftModel       bool
	FixedSizedSequences     bool
	PackSequences           bool
}

// args builds the examples.train_draft_model argument list.
func (o *trainDraftOptions) args() []string {
	var args []string
	if o.Checkpoint != "" {
		args = append(args, "--checkpoint", o.Checkpoint)
	}
	args = append(args, "--train-data", o.TrainData)
	if o.EvalData != "" {
		args = append(args, "--eval-data", o.EvalData)
	}
	args = append(args, "--checkpoint-dir", o.CheckpointDir)

	args = append(args,
		"--epochs", strconv.Itoa(o.Epochs),
		"--learning-rate", strconv.FormatFloat(o.LearningRate, 'g', -1, 64),
		"--batch-size", strconv.Itoa(o.BatchSize),
		"--target-precision", o.TargetPrecision,
		"--draft-precision", o.DraftPrecision,
		"--warmup-epochs", strconv.Itoa(o.WarmupEpochs),
	)

	if o.GradAccumSteps != nil {
		args = append(args, "--gradient-accumulation-steps", strconv.Itoa(*o.GradAccumSteps))
	}
	if o.WeightDecay != nil {
		args = append(args, "--weight-decay", strconv.FormatFloat(*o.WeightDecay, 'g', -1, 64))
	}
	if o.ClipGradNorm != nil {
		args = append(args, "--clip-grad-norm", strconv.FormatFloat(*o.ClipGradNorm, 'g', -1, 64))
	}
	if o.MaxSequenceLength != nil {
		args = append(args, "--max-sequence-length", strconv.Itoa(*o.MaxSequenceLength))
	}
	if o.LossUpdateFrequency != nil {
		args = append(args, "--loss-update-frequency", strconv.Itoa(*o.LossUpdateFrequency))
	}
	if o.CheckpointFrequency != nil {
		args = append(args, "--checkpoint-frequency", strconv.Itoa(*o.CheckpointFrequency))
	}

	if o.ActivationCheckpointing {
		args = append(args, "--activation-checkpointing")
	}
	if o.CompileTargetModel {
		args = append(args, "--compile-target-model")
	}
	if o.CompileDraftModel {
		args = append(args, "--compile-draft-model")
	}
	if o.FixedSizedSequences {
		args = append(args, "--fixed-sized-sequences")
	}
	if o.PackSequences {
		args = append(args, "--pack-sequences")
	}

	return args
}

var trainDraftCmd = &cobra.Command{
	Use:   "train-draft",
	Short: "Train a draft model for speculative decoding",
	RunE:  runTrainDraft,
}

var (
	tdCheckpoint    string
	tdTrainData     string
	tdEvalData      string
	tdCheckpointDir string

	tdEpochs          int
	tdLearningRate    float64
	tdBatchSize       int
	tdTargetPrecision string
	tdDraftPrecision  string
	tdWarmupEpochs    int

	tdGradAccumSteps      int
	tdWeightDecay         float64
	tdClipGradNorm        float64
	tdMaxSequenceLength   int
	tdLossUpdateFrequency int
	tdCheckpointFrequency int

	tdActivationCheckpointing bool
	tdCompileTargetModel      bool
	tdCompileDraftModel       bool
	tdFixedSizedSequences     bool
	tdPackSequences           bool
)

func init() {
	f := trainDraftCmd.Flags()
	f.StringVar(&tdCheckpoint, "checkpoint", "", "fine-tuned adapter checkpoint (defaults to the base model)")
	f.StringVar(&tdTrainData, "train-data", "", "training dataset (JSONL)")
	f.StringVar(&tdEvalData, "eval-data", "", "evaluation dataset (JSONL)")
	f.StringVar(&tdCheckpointDir, "checkpoint-dir", "", "draft checkpoint output directory")

	f.IntVar(&tdEpochs, "epochs", 3, "training epochs (1-100)")
	f.Float64Var(&tdLearningRate, "learning-rate", 1e-4, "learning rate (> 0)")
	f.IntVar(&tdBatchSize, "batch-size", 4, "batch size (1-128)")
	f.StringVar(&tdTargetPrecision, "target-precision", "bf16", "target model precision")
	f.StringVar(&tdDraftPrecision, "draft-precision", "bf16", "draft model precision")
	f.IntVar(&tdWarmupEpochs, "warmup-epochs", 0, "warmup epochs (0-epochs)")

	f.IntVar(&tdGradAccumSteps, "gradient-accumulation-steps", 0, "gradient accumulation steps")
	f.Float64Var(&tdWeightDecay, "weight-decay", 0, "weight decay")
	f.Float64Var(&tdClipGradNorm, "clip-grad-norm", 0, "gradient norm clip value")
	f.IntVar(&tdMaxSequenceLength, "max-sequence-length", 0, "maximum sequence length")
	f.IntVar(&tdLossUpdateFrequency, "loss-update-frequency", 0, "steps between loss reports")
	f.IntVar(&tdCheckpointFrequency, "checkpoint-frequency", 0, "epochs between checkpoints")

	f.BoolVar(&tdActivationCheckpointing, "activation-checkpointing", false, "enable activation checkpointing")
	f.BoolVar(&tdCompileTargetModel, "compile-target-model", false, "compile the target model")
	f.BoolVar(&tdCompileDraftModel, "compile-draft-model", false, "compile the draft model")
	f.BoolVar(&tdFixedSizedSequences, "fixed-sized-sequences", false, "pad sequences to a fixed size")
	f.BoolVar(&tdPackSequences, "pack-sequences", false, "pack sequences for throughput")

	rootCmd.AddCommand(trainDraftCmd)
}

func runTrainDraft(cmd *cobra.Command, args []string) error {
	fmt.Println()

	if !cmd.Flags().Changed("epochs") {
		tdEpochs = settings.Training.Epochs
	}
	if !cmd.Flags().Changed("learning-rate") {
		tdLearningRate = settings.Training.LearningRate
	}
	if !cmd.Flags().Changed("batch-size") {
		tdBatchSize = settings.Training.BatchSize
	}

	if tdEpochs < 1 || tdEpochs > 100 {
		return studioerrors.InputOutOfRange("epochs", "between 1 and 100")
	}
	if tdLearningRate <= 0 {
		return studioerrors.InputOutOfRange("learning-rate", "greater than 0")
	}
	if tdBatchSize < 1 || tdBatchSize > 128 {
		return studioerrors.InputOutOfRange("batch-size", "between 1 and 128")
	}
	if tdWarmupEpochs < 0 || tdWarmupEpochs > tdEpochs {
		return studioerrors.InputOutOfRange("warmup-epochs", "between 0 and number of epochs")
	}

	tk, err := requireToolkit()
	if err != nil {
		return err
	}

	if tdTrainData == "" {
		return studioerrors.InputMissing("train-data")
	}
	if tdCheckpointDir == "" {
		return studioerrors.InputMissing("checkpoint-dir")
	}

	opts := &trainDraftOptions{
		Epochs:                  tdEpochs,
		LearningRate:            tdLearningRate,
		BatchSize:               tdBatchSize,
		TargetPrecision:         tdTargetPrecision,
		DraftPrecision:          tdDraftPrecision,
		WarmupEpochs:            tdWarmupEpochs,
		ActivationCheckpointing: tdActivationCheckpointing,
		CompileTargetModel:      tdCompileTargetModel,
		CompileDraftModel:       tdCompileDraftModel,
		FixedSizedSequences:     tdFixedSizedSequences,
		PackSequences:           tdPackSequences,
	}
	if cmd.Flags().Changed("gradient-accumulation-steps") {
		opts.GradAccumSteps = &tdGradAccumSteps
	}
	if cmd.Flags().Changed("weight-decay") {
		opts.WeightDecay = &tdWeightDecay
	}
	if cmd.Flags().Changed("clip-grad-norm") {
		opts.ClipGradNorm = &tdClipGradNorm
	}
	if cmd.Flags().Changed("max-sequence-length") {
		opts.MaxSequenceLength = &tdMaxSequenceLength
	}
	if cmd.Flags().Changed("loss-update-frequency") {
		opts.LossUpdateFrequency = &tdLossUpdateFrequency
	}
	if cmd.Flags().Changed("checkpoint-frequency") {
		opts.CheckpointFrequency = &tdCheckpointFrequency
	}

	if tdCheckpoint != "" {
		opts.Checkpoint, err = statPath("checkpoint", tdCheckpoint)
		if err != nil {
			return err
		}
	}

	opts.TrainData, err = statReadableFile("train data", tdTrainData)
	if err != nil {
		return err
	}

	checkpointDir, err := config.NormalizePath(tdCheckpointDir)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(checkpointDir)
	if err := os.MkdirAll(checkpointDir, 0755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}
	createdCheckpointDir := os.IsNotExist(statErr)
	opts.CheckpointDir = checkpointDir

	if tdEvalData != "" {
		opts.EvalData, err = statReadableFile("eval data", tdEvalData)
		if err != nil {
			return err
		}
	}

	fmt.Println("Training draft model for speculative decoding...")
	fmt.Println()
	if opts.Checkpoint != "" {
		fmt.Printf("Adapter checkpoint: %s\n", opts.Checkpoint)
	} else {
		fmt.Println("Adapter checkpoint: base model (no fine-tuned checkpoint provided)")
	}
	fmt.Printf("Train data: %s\n", opts.TrainData)
	if opts.EvalData != "" {
		fmt.Printf("Eval data: %s\n", opts.EvalData)
	}
	fmt.Printf("Draft checkpoints: %s\n\n", opts.CheckpointDir)

	fmt.Println("Starting draft model training...")
	fmt.Println()

	ctx, cancel := notifyContext()
	defer cancel()

	code, err := runner.New(logger).Run(ctx, &runner.Invocation{
		Python:  tk.VenvPython(),
		Module:  "examples.train_draft_model",
		Args:    opts.args(),
		Dir:     tk.Path,
		Timeout: trainTimeout,
	})
	switch {
	case errors.Is(err, runner.ErrTimeout):
		fmt.Println("\nDraft training timed out (exceeded 24 hours). Consider reducing epochs or batch size.")
		cleanupCheckpoints(opts.CheckpointDir, createdCheckpointDir)
		return studioerrors.NewExitError(1)
	case errors.Is(err, runner.ErrInterrupted):
		fmt.Println("\nDraft training cancelled.")
		cleanupCheckpoints(opts.CheckpointDir, createdCheckpointDir)
		return studioerrors.NewExitError(1)
	case err != nil:
		return err
	case code != 0:
		fmt.Printf("\nDraft training failed with exit code %d.\n", code)
		cleanupCheckpoints(opts.CheckpointDir, createdCheckpointDir)
		return studioerrors.NewExitError(code)
	}

	fmt.Printf("\nDraft training complete! Checkpoints saved to: %s\n", opts.CheckpointDir)
	return nil
}
