package optimizer

import "errors"

// Config defines search parameters loaded from configuration.
type Config struct {
	// GranularityMinutes is the candidate start-time step.
	GranularityMinutes int `json:"granularity_minutes" yaml:"granularity_minutes"`
	// CO2ToLKRWeight converts kg CO2 into LKR so the blended objective is
	// commensurable: score = alpha*cost + (1-alpha)*co2*CO2ToLKRWeight.
	CO2ToLKRWeight float64 `json:"co2_to_lkr_weight" yaml:"co2_to_lkr_weight"`
	// MaxCandidatesPerTask bounds the search space. Windows exceeding it are
	// evaluated at a coarsened granularity.
	MaxCandidatesPerTask int `json:"max_candidates_per_task" yaml:"max_candidates_per_task"`
	// Workers caps concurrent per-task evaluations. Zero means one worker
	// per task.
	Workers int `json:"workers" yaml:"workers"`
}

// SetDefaults fills zero values with production defaults.
func (c *Config) SetDefaults() {
	if c.GranularityMinutes == 0 {
		c.GranularityMinutes = 5
	}
	if c.CO2ToLKRWeight == 0 {
		c.CO2ToLKRWeight = 100
	}
	if c.MaxCandidatesPerTask == 0 {
		c.MaxCandidatesPerTask = 2000
	}
}

// Validate rejects unusable parameter combinations.
func (c *Config) Validate() error {
	if c.GranularityMinutes < 1 {
		return errors.New("granularity_minutes must be positive")
	}
	if c.CO2ToLKRWeight < 0 {
		return errors.New("co2_to_lkr_weight must not be negative")
	}
	if c.MaxCandidatesPerTask < 1 {
		return errors.New("max_candidates_per_task must be positive")
	}
	if c.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	return nil
}
