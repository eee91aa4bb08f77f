package model

import "time"

// TariffType discriminates the two supported billing structures.
type TariffType string

const (
	TariffTOU   TariffType = "TOU"
	TariffBlock TariffType = "BLOCK"
)

// TariffWindow is a time-of-day price band. Times are "HH:MM" in the local
// timezone (Asia/Colombo). A window with EndTime <= StartTime wraps midnight.
type TariffWindow struct {
	Name      string  `json:"name"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	RateLKR   float64 `json:"rateLKR"`
}

// BlockTier is a cumulative-consumption tier: energy within
// (previous uptoKWh, uptoKWh] is billed at RateLKR. The last tier uses a
// large sentinel bound for "Above X" rates.
type BlockTier struct {
	UptoKWh float64 `json:"uptoKWh"`
	RateLKR float64 `json:"rateLKR"`
}

// FixedCharge maps a monthly consumption bound to the fixed charge applied
// when total consumption falls within that tier. Only BLOCK tariffs carry a
// tier-dependent fixed charge; TOU uses the flat FixedLKR.
type FixedCharge struct {
	UptoKWh  float64 `json:"uptoKWh"`
	FixedLKR float64 `json:"fixedLKR"`
}

// Tariff is the billing plan for a user. Exactly one of Windows or Blocks is
// populated depending on Type. Tariffs are replaced wholesale, never patched,
// so the partition/ordering invariants hold for the lifetime of a value.
type Tariff struct {
	Utility               string        `json:"utility,omitempty"`
	Type                  TariffType    `json:"tariffType"`
	Windows               []TariffWindow `json:"windows,omitempty"`
	Blocks                []BlockTier   `json:"blocks,omitempty"`
	FixedLKR              float64       `json:"fixedLKR"`
	FixedTable            []FixedCharge `json:"fixedTable,omitempty"`
	BillingCycleStart     string        `json:"billingCycleStart,omitempty"`
	UsedUnitsAtCycleStart float64       `json:"usedUnits,omitempty"`
}

// CarbonModelType discriminates carbon intensity models.
type CarbonModelType string

const (
	CarbonConstant  CarbonModelType = "CONSTANT"
	CarbonProfile48 CarbonModelType = "PROFILE_48"
)

// CarbonProfile is either a constant emission factor or a 48-slot half-hourly
// intensity profile. Slot i covers [i*30min, (i+1)*30min).
type CarbonProfile struct {
	ModelType CarbonModelType `json:"modelType"`
	KgPerKWh  float64         `json:"defaultKgPerKWh,omitempty"`
	Slots     []float64       `json:"profile,omitempty"`
}

// SolarScheme identifies the export settlement scheme.
type SolarScheme string

const (
	NetMetering   SolarScheme = "NET_METERING"
	NetAccounting SolarScheme = "NET_ACCOUNTING"
	NetPlus       SolarScheme = "NET_PLUS"
)

// SolarConfig describes a rooftop installation. DailyProfile holds average
// generated power in kW per slot; the day is divided evenly across its
// length (48 half-hour slots in practice). An empty profile means no
// self-generation offset, only export-price bookkeeping.
type SolarConfig struct {
	Enabled        bool        `json:"enabled"`
	Scheme         SolarScheme `json:"scheme,omitempty"`
	ExportPriceLKR float64     `json:"exportPriceLKR,omitempty"`
	DailyProfile   []float64   `json:"dailyProfile,omitempty"`
}

// Task is one flexible appliance run to be placed on the target day.
// The execution interval [start, start+duration] must fit inside
// [Earliest, Latest]; tasks do not wrap midnight.
type Task struct {
	ID              string  `json:"id"`
	ApplianceID     string  `json:"applianceId"`
	RatedPowerW     float64 `json:"ratedPowerW"`
	DurationMinutes int     `json:"durationMinutes"`
	Earliest        string  `json:"earliest"`
	Latest          string  `json:"latest"`
	RepeatsPerWeek  int     `json:"repeatsPerWeek,omitempty"`
}

// Recommendation is the optimizer output for one task. Values are produced
// fresh per optimization call; the caller decides whether to persist them.
type Recommendation struct {
	ID              string   `json:"id"`
	TaskID          string   `json:"taskId"`
	ApplianceID     string   `json:"applianceId"`
	SuggestedStart  string   `json:"suggestedStart"`
	DurationMinutes int      `json:"durationMinutes"`
	Reasons         []string `json:"reasons"`
	EstSavingLKR    float64  `json:"estSavingLKR"`
	CostRs          float64  `json:"costRs"`
	CO2Kg           float64  `json:"co2Kg"`
}

// UsageRecord is one day of historical consumption, owned by the external
// reporting collaborator and consumed read-only.
type UsageRecord struct {
	Date time.Time `json:"date"`
	KWh  float64   `json:"kWh"`
}

// BillPreview is the monthly bill estimate.
type BillPreview struct {
	EstimatedKWh     float64 `json:"estimatedKWh"`
	EstimatedCostLKR float64 `json:"estimatedCostLKR"`
	Note             string  `json:"note,omitempty"`
}

// MonthlyProjection is the end-of-month cost and emissions outlook.
type MonthlyProjection struct {
	TotalKWh      float64 `json:"totalKWh"`
	TotalCostRs   float64 `json:"totalCostRs"`
	TotalCO2Kg    float64 `json:"totalCO2Kg"`
	TreesRequired float64 `json:"treesRequired"`
}

// BlockWarning reports whether a prospective task crosses a block boundary
// and the resulting cost delta.
type BlockWarning struct {
	WillCross        bool    `json:"willCross"`
	NextThresholdKWh float64 `json:"nextThresholdKWh,omitempty"`
	DeltaFixed       float64 `json:"deltaFixed"`
	DeltaMarginal    float64 `json:"deltaMarginal"`
}
