// Package optimizer places flexible appliance tasks on the cheapest and
// greenest feasible start times of a target day.
package optimizer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lankawattwise/lankawattwise/core/carbon"
	"github.com/lankawattwise/lankawattwise/core/logger"
	"github.com/lankawattwise/lankawattwise/core/model"
	"github.com/lankawattwise/lankawattwise/core/solar"
	"github.com/lankawattwise/lankawattwise/core/tariff"
)

// InfeasibleTaskError names a task whose window cannot fit its duration.
// It is reported per task; the batch continues for the remaining tasks.
type InfeasibleTaskError struct {
	TaskID string
	Detail string
}

func (e *InfeasibleTaskError) Error() string {
	return fmt.Sprintf("task %s infeasible: %s", e.TaskID, e.Detail)
}

// Inputs bundles the immutable models for one optimization call.
type Inputs struct {
	Tariff *tariff.Model
	Carbon *carbon.Model
	Solar  *solar.Model
}

// Result carries the recommendations in input task order plus any per-task
// infeasibility errors.
type Result struct {
	Plan       []model.Recommendation
	Infeasible []*InfeasibleTaskError
}

// Optimizer is a pure, stateless per-request computation. Per-task searches
// are independent and run worker-parallel; the output order is the input
// task order so responses are deterministic.
type Optimizer struct {
	cfg Config
	log logger.Logger
}

// New returns an Optimizer with validated configuration.
func New(cfg Config, log logger.Logger) (*Optimizer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{cfg: cfg, log: log}, nil
}

// Optimize assigns each task a start time on date minimizing
// alpha*costRs + (1-alpha)*co2Kg*CO2ToLKRWeight. Ties go to the earliest
// feasible start. alpha outside [0,1] is clamped.
func (o *Optimizer) Optimize(date time.Time, alpha float64, tasks []model.Task, in Inputs) (Result, error) {
	if in.Tariff == nil {
		return Result{}, model.NewFieldError("tariff", "required")
	}
	if in.Carbon == nil {
		return Result{}, model.NewFieldError("carbon", "required")
	}
	if in.Solar == nil {
		in.Solar = solar.New(model.SolarConfig{})
	}
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	type slot struct {
		idx int
		rec model.Recommendation
		err *InfeasibleTaskError
	}
	out := make(chan slot, len(tasks))
	sem := make(chan struct{}, o.workers(len(tasks)))
	for i, t := range tasks {
		go func(i int, t model.Task) {
			sem <- struct{}{}
			defer func() { <-sem }()
			rec, err := o.optimizeTask(date, alpha, t, in)
			out <- slot{idx: i, rec: rec, err: err}
		}(i, t)
	}

	res := Result{}
	slots := make([]slot, 0, len(tasks))
	for range tasks {
		slots = append(slots, <-out)
	}
	sort.Slice(slots, func(a, b int) bool { return slots[a].idx < slots[b].idx })
	for _, s := range slots {
		if s.err != nil {
			o.log.Warnf("task %s infeasible: %s", s.err.TaskID, s.err.Detail)
			res.Infeasible = append(res.Infeasible, s.err)
			continue
		}
		res.Plan = append(res.Plan, s.rec)
	}
	return res, nil
}

func (o *Optimizer) workers(n int) int {
	if o.cfg.Workers > 0 && o.cfg.Workers < n {
		return o.cfg.Workers
	}
	if n == 0 {
		return 1
	}
	return n
}

func (o *Optimizer) optimizeTask(date time.Time, alpha float64, t model.Task, in Inputs) (model.Recommendation, *InfeasibleTaskError) {
	if t.DurationMinutes <= 0 {
		return model.Recommendation{}, &InfeasibleTaskError{TaskID: t.ID, Detail: "durationMinutes must be positive"}
	}
	earliest, err := model.ParseMinuteOfDay(t.Earliest)
	if err != nil {
		return model.Recommendation{}, &InfeasibleTaskError{TaskID: t.ID, Detail: err.Error()}
	}
	latest, err := model.ParseMinuteOfDay(t.Latest)
	if err != nil {
		return model.Recommendation{}, &InfeasibleTaskError{TaskID: t.ID, Detail: err.Error()}
	}
	lastStart := latest - t.DurationMinutes
	if lastStart < earliest {
		return model.Recommendation{}, &InfeasibleTaskError{
			TaskID: t.ID,
			Detail: fmt.Sprintf("duration %dm exceeds window %s-%s", t.DurationMinutes, t.Earliest, t.Latest),
		}
	}

	naiveCost, naiveCO2, naiveWindow := o.evaluate(earliest, t, in)

	if o.flat(in) {
		// A flat-rate day has no preferred time: do not synthesize a
		// zero-variance choice, report the earliest start with no benefit.
		return o.recommendation(date, t, earliest, naiveCost, naiveCO2, 0,
			[]string{"NoScheduleBenefit:FlatRate", fitReason(t)}), nil
	}

	step := o.stepFor(lastStart - earliest)
	bestStart := earliest
	bestCost, bestCO2 := naiveCost, naiveCO2
	bestScore := o.score(alpha, naiveCost, naiveCO2)
	for s := earliest + step; s <= lastStart; s += step {
		cost, co2, _ := o.evaluate(s, t, in)
		if sc := o.score(alpha, cost, co2); improves(sc, bestScore) {
			bestScore, bestStart, bestCost, bestCO2 = sc, s, cost, co2
		}
	}

	saving := naiveCost - bestCost
	if saving < 0 {
		saving = 0
	}
	reasons := o.reasons(t, bestStart, naiveWindow, alpha, bestCO2, naiveCO2, in)
	return o.recommendation(date, t, bestStart, bestCost, bestCO2, saving, reasons), nil
}

// flat reports whether every candidate start scores identically: block
// pricing with constant carbon and no solar profile.
func (o *Optimizer) flat(in Inputs) bool {
	return in.Tariff.Type() == model.TariffBlock && in.Carbon.IsConstant() && !in.Solar.HasProfile()
}

// stepFor coarsens the granularity so the candidate count stays within the
// configured bound.
func (o *Optimizer) stepFor(windowMinutes int) int {
	step := o.cfg.GranularityMinutes
	for windowMinutes/step+1 > o.cfg.MaxCandidatesPerTask {
		step *= 2
	}
	return step
}

// evaluate prices the run [start, start+duration) by splitting it wherever
// the tariff window, carbon slot or solar slot changes, charging each
// sub-interval at its own rate and intensity. Returns the money cost, the
// emissions, and the tariff window name at the start instant.
func (o *Optimizer) evaluate(start int, t model.Task, in Inputs) (costRs, co2Kg float64, startWindow string) {
	end := start + t.DurationMinutes
	powerKW := t.RatedPowerW / 1000
	cumulative := in.Tariff.Tariff().UsedUnitsAtCycleStart

	cur := start
	for cur < end {
		next := nextBoundary(cur, end, in)
		minutes := next - cur
		energy := powerKW * float64(minutes) / 60

		offset := in.Solar.OffsetKWh(cur, minutes, energy)
		grid := energy - offset

		switch in.Tariff.Type() {
		case model.TariffTOU:
			rate, name, err := in.Tariff.PriceAt(cur)
			if err == nil {
				costRs += grid * rate
				if cur == start {
					startWindow = name
				}
			}
		case model.TariffBlock:
			costRs += tariff.TierCost(in.Tariff.Tariff().Blocks, cumulative, grid)
			cumulative += grid
		}
		co2Kg += grid * in.Carbon.IntensityAt(cur)
		cur = next
	}
	return costRs, co2Kg, startWindow
}

// nextBoundary returns the next minute at or before end where any rate or
// intensity source may change.
func nextBoundary(cur, end int, in Inputs) int {
	next := end
	if in.Tariff.Type() == model.TariffTOU {
		for _, iv := range in.Tariff.Intervals() {
			if iv.End > cur && iv.End < next {
				next = iv.End
			}
		}
	}
	if c := cur - cur%30 + 30; c > cur && c < next {
		next = c
	}
	if sm := in.Solar.SlotMinutes(); sm > 0 {
		if c := cur - cur%sm + sm; c > cur && c < next {
			next = c
		}
	}
	return next
}

func (o *Optimizer) score(alpha, costRs, co2Kg float64) float64 {
	return alpha*costRs + (1-alpha)*co2Kg*o.cfg.CO2ToLKRWeight
}

// scoreEpsilon is the relative tolerance below which two candidate scores
// count as equal. Sub-interval splits accumulate in a different order per
// start, so equal-priced candidates can differ in the last few ulps.
const scoreEpsilon = 1e-9

// improves reports whether sc beats best by more than accumulation noise.
// Ties, including near-ties, keep the earlier start.
func improves(sc, best float64) bool {
	tol := scoreEpsilon * math.Max(1, math.Max(math.Abs(sc), math.Abs(best)))
	return best-sc > tol
}

func (o *Optimizer) reasons(t model.Task, chosen int, naiveWindow string, alpha float64, chosenCO2, naiveCO2 float64, in Inputs) []string {
	var reasons []string
	if in.Tariff.Type() == model.TariffTOU {
		if _, name, err := in.Tariff.PriceAt(chosen); err == nil {
			reasons = append(reasons, "Window:"+name)
			if naiveWindow != "" && naiveWindow != name {
				reasons = append(reasons, "Avoid:"+naiveWindow)
			}
		}
	}
	if alpha < 1 && chosenCO2 < naiveCO2 {
		reasons = append(reasons, "CO2:LowerIntensity")
	}
	if in.Solar.HasProfile() && in.Solar.GenerationKW(chosen) > 0 {
		reasons = append(reasons, "Solar:SelfGeneration")
	}
	reasons = append(reasons, fitReason(t))
	return reasons
}

func fitReason(t model.Task) string {
	return fmt.Sprintf("Fits:%s-%s", t.Earliest, t.Latest)
}

func (o *Optimizer) recommendation(date time.Time, t model.Task, start int, costRs, co2Kg, saving float64, reasons []string) model.Recommendation {
	when := model.AtMinute(date, start).Format("2006-01-02T15:04:05")
	// Name-based UUID keeps identical inputs producing identical output.
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("rec:"+t.ID+":"+when)).String()
	return model.Recommendation{
		ID:              id,
		TaskID:          t.ID,
		ApplianceID:     t.ApplianceID,
		SuggestedStart:  when,
		DurationMinutes: t.DurationMinutes,
		Reasons:         reasons,
		EstSavingLKR:    saving,
		CostRs:          costRs,
		CO2Kg:           co2Kg,
	}
}
