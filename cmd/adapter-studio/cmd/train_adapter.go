package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/adapter-studio/adapter-studio/internal/config"
	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
	"github.com/adapter-studio/adapter-studio/internal/runner"
)

const trainTimeout = 24 * time.Hour

// trainAdapterOptions holds the resolved examples.train_adapter inputs.
// Pointer fields are only forwarded when the flag was supplied.
type trainAdapterOptions struct {
	TrainData     string
	EvalData      string
	CheckpointDir string

	Epochs       int
	LearningRate float64
	BatchSize    int
	Precision    string
	WarmupEpochs int

	GradAccumSteps      *int
	WeightDecay         *float64
	ClipGradNorm        *float64
	MaxSequenceLength   *int
	CheckpointFrequency *int

	ActivationCheckpointing bool
	CompileModel            bool
	FixedSizedSequences     bool
	PackSequences           bool
}

// args builds the examples.train_adapter argument list.
func (o *trainAdapterOptions) args() []string {
	args := []string{"--train-data", o.TrainData}
	if o.EvalData != "" {
		args = append(args, "--eval-data", o.EvalData)
	}
	args = append(args, "--checkpoint-dir", o.CheckpointDir)

	args = append(args,
		"--epochs", strconv.Itoa(o.Epochs),
		"--learning-rate", strconv.FormatFloat(o.LearningRate, 'g', -1, 64),
		"--batch-size", strconv.Itoa(o.BatchSize),
		"--precision", o.Precision,
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
	if o.CheckpointFrequency != nil {
		args = append(args, "--checkpoint-frequency", strconv.Itoa(*o.CheckpointFrequency))
	}

	if o.ActivationCheckpointing {
		args = append(args, "--activation-checkpointing")
	}
	if o.CompileModel {
		args = append(args, "--compile-model")
	}
	if o.FixedSizedSequences {
		// The toolkit script spells this one flag with underscores.
		args = append(args, "--fixed_sized_sequences")
	}
	if o.PackSequences {
		args = append(args, "--pack-sequences")
	}

	return args
}

var trainAdapterCmd = &cobra.Command{
	Use:   "train-adapter",
	Short: "Train a custom adapter",
	Long: `Train an adapter with your own JSONL dataset, or pass --demo to use
the toolkit's bundled toy dataset with a timestamped checkpoint
directory inside the toolkit.`,
	RunE: runTrainAdapter,
}

var (
	taDemo          bool
	taTrainData     string
	taEvalData      string
	taCheckpointDir string

	taEpochs       int
	taLearningRate float64
	taBatchSize    int
	taPrecision    string
	taWarmupEpochs int

	taGradAccumSteps      int
	taWeightDecay         float64
	taClipGradNorm        float64
	taMaxSequenceLength   int
	taCheckpointFrequency int

	taActivationCheckpointing bool
	taCompileModel            bool
	taFixedSizedSequences     bool
	taPackSequences           bool
)

func init() {
	f := trainAdapterCmd.Flags()
	f.BoolVar(&taDemo, "demo", false, "train on the bundled toy dataset")
	f.StringVar(&taTrainData, "train-data", "", "training dataset (JSONL)")
	f.StringVar(&taEvalData, "eval-data", "", "evaluation dataset (JSONL)")
	f.StringVar(&taCheckpointDir, "checkpoint-dir", "", "checkpoint output directory (must be inside the toolkit)")

	f.IntVar(&taEpochs, "epochs", 3, "training epochs (1-100)")
	f.Float64Var(&taLearningRate, "learning-rate", 1e-4, "learning rate (0-1]")
	f.IntVar(&taBatchSize, "batch-size", 4, "batch size (1-128)")
	f.StringVar(&taPrecision, "precision", "bf16", "training precision")
	f.IntVar(&taWarmupEpochs, "warmup-epochs", 0, "warmup epochs (0-epochs)")

	f.IntVar(&taGradAccumSteps, "gradient-accumulation-steps", 0, "gradient accumulation steps")
	f.Float64Var(&taWeightDecay, "weight-decay", 0, "weight decay")
	f.Float64Var(&taClipGradNorm, "clip-grad-norm", 0, "gradient norm clip value")
	f.IntVar(&taMaxSequenceLength, "max-sequence-length", 0, "maximum sequence length")
	f.IntVar(&taCheckpointFrequency, "checkpoint-frequency", 0, "epochs between checkpoints")

	f.BoolVar(&taActivationCheckpointing, "activation-checkpointing", false, "enable activation checkpointing")
	f.BoolVar(&taCompileModel, "compile-model", false, "compile the model before training")
	f.BoolVar(&taFixedSizedSequences, "fixed-sized-sequences", false, "pad sequences to a fixed size")
	f.BoolVar(&taPackSequences, "pack-sequences", false, "pack sequences for throughput")

	rootCmd.AddCommand(trainAdapterCmd)
}

func runTrainAdapter(cmd *cobra.Command, args []string) error {
	fmt.Println()

	// settings.toml training defaults apply unless the flag was given.
	if !cmd.Flags().Changed("epochs") {
		taEpochs = settings.Training.Epochs
	}
	if !cmd.Flags().Changed("learning-rate") {
		taLearningRate = settings.Training.LearningRate
	}
	if !cmd.Flags().Changed("batch-size") {
		taBatchSize = settings.Training.BatchSize
	}
	if !cmd.Flags().Changed("precision") {
		taPrecision = settings.Training.Precision
	}

	if taEpochs < 1 || taEpochs > 100 {
		return studioerrors.InputOutOfRange("epochs", "between 1 and 100")
	}
	if taLearningRate <= 0 || taLearningRate > 1 {
		return studioerrors.InputOutOfRange("learning-rate", "between 0 and 1")
	}
	if taBatchSize < 1 || taBatchSize > 128 {
		return studioerrors.InputOutOfRange("batch-size", "between 1 and 128")
	}
	if taWarmupEpochs < 0 || taWarmupEpochs > taEpochs {
		return studioerrors.InputOutOfRange("warmup-epochs", "between 0 and number of epochs")
	}

	tk, err := requireToolkit()
	if err != nil {
		return err
	}

	opts := &trainAdapterOptions{
		Epochs:                  taEpochs,
		LearningRate:            taLearningRate,
		BatchSize:               taBatchSize,
		Precision:               taPrecision,
		WarmupEpochs:            taWarmupEpochs,
		ActivationCheckpointing: taActivationCheckpointing,
		CompileModel:            taCompileModel,
		FixedSizedSequences:     taFixedSizedSequences,
		PackSequences:           taPackSequences,
	}
	if cmd.Flags().Changed("gradient-accumulation-steps") {
		opts.GradAccumSteps = &taGradAccumSteps
	}
	if cmd.Flags().Changed("weight-decay") {
		opts.WeightDecay = &taWeightDecay
	}
	if cmd.Flags().Changed("clip-grad-norm") {
		opts.ClipGradNorm = &taClipGradNorm
	}
	if cmd.Flags().Changed("max-sequence-length") {
		opts.MaxSequenceLength = &taMaxSequenceLength
	}
	if cmd.Flags().Changed("checkpoint-frequency") {
		opts.CheckpointFrequency = &taCheckpointFrequency
	}

	var createdCheckpointDir bool

	if taDemo {
		fmt.Println("Training adapter with toy dataset (demo mode)...")
		fmt.Println()

		train, eval := tk.ToyDataset()
		if _, err := os.Stat(train); err != nil {
			return studioerrors.InputNotFound("toy dataset", filepath.Dir(train))
		}
		if _, err := os.Stat(eval); err != nil {
			return studioerrors.InputNotFound("toy dataset", filepath.Dir(eval))
		}
		opts.TrainData = train
		opts.EvalData = eval

		timestamp := time.Now().Format("20060102_150405")
		opts.CheckpointDir = filepath.Join(tk.CheckpointsDir(), "demo_"+timestamp)
		if err := os.MkdirAll(opts.CheckpointDir, 0755); err != nil {
			return fmt.Errorf("creating checkpoint directory: %w", err)
		}
		createdCheckpointDir = true

		fmt.Printf("Train data: %s\n", opts.TrainData)
		fmt.Printf("Eval data: %s\n", opts.EvalData)
		fmt.Printf("Checkpoints: %s\n\n", opts.CheckpointDir)
	} else {
		fmt.Println("Training adapter with custom dataset...")
		fmt.Println()

		if taTrainData == "" {
			return studioerrors.InputMissing("train-data").
				WithDetail("hint", "or use --demo for the toy dataset")
		}
		if taCheckpointDir == "" {
			return studioerrors.InputMissing("checkpoint-dir").
				WithDetail("hint", "or use --demo")
		}

		opts.TrainData, err = statReadableFile("train data", taTrainData)
		if err != nil {
			return err
		}

		checkpointDir, err := config.NormalizePath(taCheckpointDir)
		if err != nil {
			return err
		}
		inside, err := tk.Contains(checkpointDir)
		if err != nil {
			return err
		}
		if !inside {
			return studioerrors.Newf(studioerrors.CodeInputOutOfRange,
				"checkpoint directory must be within toolkit: %s", tk.Path)
		}
		_, statErr := os.Stat(checkpointDir)
		if err := os.MkdirAll(checkpointDir, 0755); err != nil {
			return fmt.Errorf("creating checkpoint directory: %w", err)
		}
		createdCheckpointDir = os.IsNotExist(statErr)
		opts.CheckpointDir = checkpointDir

		if taEvalData != "" {
			opts.EvalData, err = statReadableFile("eval data", taEvalData)
			if err != nil {
				return err
			}
		}

		fmt.Printf("Train data: %s\n", opts.TrainData)
		if opts.EvalData != "" {
			fmt.Printf("Eval data: %s\n", opts.EvalData)
		}
		fmt.Printf("Checkpoints: %s\n\n", opts.CheckpointDir)
	}

	fmt.Println("Starting training...")
	fmt.Println()

	ctx, cancel := notifyContext()
	defer cancel()

	code, err := runner.New(logger).Run(ctx, &runner.Invocation{
		Python:  tk.VenvPython(),
		Module:  "examples.train_adapter",
		Args:    opts.args(),
		Dir:     tk.Path,
		Timeout: trainTimeout,
	})
	switch {
	case errors.Is(err, runner.ErrTimeout):
		fmt.Println("\nTraining timed out (exceeded 24 hours). Consider reducing epochs or batch size.")
		cleanupCheckpoints(opts.CheckpointDir, createdCheckpointDir)
		return studioerrors.NewExitError(1)
	case errors.Is(err, runner.ErrInterrupted):
		fmt.Println("\nTraining cancelled.")
		cleanupCheckpoints(opts.CheckpointDir, createdCheckpointDir)
		return studioerrors.NewExitError(1)
	case err != nil:
		return err
	case code != 0:
		fmt.Printf("\nTraining failed with exit code %d.\n", code)
		cleanupCheckpoints(opts.CheckpointDir, createdCheckpointDir)
		return studioerrors.NewExitError(code)
	}

	fmt.Printf("\nTraining complete! Checkpoints saved to: %s\n", opts.CheckpointDir)
	return nil
}

// cleanupCheckpoints removes a checkpoint directory this run created, so
// a failed run does not leave incomplete checkpoints behind. Directories
// that existed beforehand are left alone.
func cleanupCheckpoints(dir string, created bool) {
	if !created || dir == "" {
		return
	}
	fmt.Println("Cleaning up checkpoint directory.")
	if err := os.RemoveAll(dir); err != nil {
		fmt.Printf("Warning: Could not clean up checkpoint directory: %v\n", err)
	}
}
