package optimizer

import (
	"time"

	"github.com/lankawattwise/lankawattwise/core/model"
)

// Variants holds the three plan flavours the client renders side by side.
type Variants struct {
	Balanced []model.Recommendation `json:"balanced"`
	Cheapest []model.Recommendation `json:"cheapest"`
	Greenest []model.Recommendation `json:"greenest"`
}

// OptimizeVariants runs the search three times: once at the caller's alpha,
// once money-only (alpha=1) and once carbon-only (alpha=0). Infeasible
// tasks from the balanced pass are reported once.
func (o *Optimizer) OptimizeVariants(date time.Time, alpha float64, tasks []model.Task, in Inputs) (Variants, []*InfeasibleTaskError, error) {
	balanced, err := o.Optimize(date, alpha, tasks, in)
	if err != nil {
		return Variants{}, nil, err
	}
	cheapest, err := o.Optimize(date, 1, tasks, in)
	if err != nil {
		return Variants{}, nil, err
	}
	greenest, err := o.Optimize(date, 0, tasks, in)
	if err != nil {
		return Variants{}, nil, err
	}
	v := Variants{
		Balanced: balanced.Plan,
		Cheapest: cheapest.Plan,
		Greenest: greenest.Plan,
	}
	return v, balanced.Infeasible, nil
}
