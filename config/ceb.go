package config

import "github.com/lankawattwise/lankawattwise/core/model"

// Bundled CEB domestic tariff sheet. The config layer applies these when a
// user has not set up a tariff yet; the core never substitutes defaults on
// its own.

// DefaultCO2KgPerKWh is the national grid emission factor used when no
// carbon model is configured.
const DefaultCO2KgPerKWh = 0.53

// DefaultExportPriceLKR is the published export credit rate for net
// accounting and net plus schemes.
const DefaultExportPriceLKR = 37

// blockSentinelKWh marks the unbounded "Above 180" tier.
const blockSentinelKWh = 999999

// DefaultBlockTariff returns the CEB domestic block tariff (Type 1).
func DefaultBlockTariff() model.Tariff {
	return model.Tariff{
		Utility: "CEB",
		Type:    model.TariffBlock,
		Blocks: []model.BlockTier{
			{UptoKWh: 30, RateLKR: 12},
			{UptoKWh: 60, RateLKR: 30},
			{UptoKWh: 90, RateLKR: 36},
			{UptoKWh: 120, RateLKR: 50},
			{UptoKWh: 180, RateLKR: 50},
			{UptoKWh: blockSentinelKWh, RateLKR: 75},
		},
		FixedTable: []model.FixedCharge{
			{UptoKWh: 30, FixedLKR: 150},
			{UptoKWh: 60, FixedLKR: 300},
			{UptoKWh: 90, FixedLKR: 400},
			{UptoKWh: 120, FixedLKR: 1000},
			{UptoKWh: 180, FixedLKR: 1500},
			{UptoKWh: blockSentinelKWh, FixedLKR: 2000},
		},
	}
}

// DefaultTOUTariff returns the CEB domestic time-of-use tariff (Type 2).
func DefaultTOUTariff() model.Tariff {
	return model.Tariff{
		Utility: "CEB",
		Type:    model.TariffTOU,
		Windows: []model.TariffWindow{
			{Name: "Off-Peak", StartTime: "22:30", EndTime: "05:30", RateLKR: 25},
			{Name: "Day", StartTime: "05:30", EndTime: "18:30", RateLKR: 45},
			{Name: "Peak", StartTime: "18:30", EndTime: "22:30", RateLKR: 70},
		},
		FixedLKR: 540,
	}
}

// DefaultCarbonProfile returns the constant national emission factor.
func DefaultCarbonProfile() model.CarbonProfile {
	return model.CarbonProfile{ModelType: model.CarbonConstant, KgPerKWh: DefaultCO2KgPerKWh}
}
