package trainer

import "fmt"

// Config controls the fit loop.
type Config struct {
	Epochs          int     `yaml:"epochs"`
	BatchSize       int     `yaml:"batch_size"`
	ValidationSplit float64 `yaml:"validation_split"`
	Shuffle         bool    `yaml:"shuffle"`
}

// DefaultConfig returns 50 epochs of 32-row batches with 20% held out.
func DefaultConfig() Config {
	return Config{
		Epochs:          50,
		BatchSize:       32,
		ValidationSplit: 0.2,
		Shuffle:         true,
	}
}

// Validate rejects configurations the fit loop cannot run.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.ValidationSplit < 0 || c.ValidationSplit >= 1 {
		return fmt.Errorf("validation split must be in [0, 1), got %v", c.ValidationSplit)
	}
	return nil
}

// StepsPerEpoch returns the number of batches per epoch for n rows.
func (c Config) StepsPerEpoch(n int) int {
	train := n - int(float64(n)*c.ValidationSplit)
	if train <= 0 || c.BatchSize <= 0 {
		return 0
	}
	return (train + c.BatchSize - 1) / c.BatchSize
}
