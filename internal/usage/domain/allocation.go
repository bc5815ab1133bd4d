package usage

// TierAllocation splits a power rating into the three infrastructure tiers.
// The tiers always sum back to the original rating.
type TierAllocation struct {
	StandardKw float64
	CriticalKw float64
	DimmableKw float64
}

// TotalKw returns the sum of all tiers.
func (a TierAllocation) TotalKw() float64 {
	return a.StandardKw + a.CriticalKw + a.DimmableKw
}

// Allocate splits real power according to the intelligent settings. With
// PercentageOfTotal at zero everything is standard infrastructure, which
// recovers the plain always-on case without a separate code path.
func Allocate(realPowerKw float64, settings IntelligentSettings) TierAllocation {
	intelligentKw := realPowerKw * settings.PercentageOfTotal
	criticalKw := intelligentKw * settings.CriticalInfrastructurePercentage
	return TierAllocation{
		StandardKw: realPowerKw - intelligentKw,
		CriticalKw: criticalKw,
		DimmableKw: intelligentKw - criticalKw,
	}
}
