package subscription

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evbs/battery-swap-backend/internal/domain"
	"github.com/evbs/battery-swap-backend/internal/ports"
)

// Proration math. Pure functions, no persistence side effects.
//
// Monetary values are fixed 2-decimal currency; every division and
// multiplication rounds half-up immediately before the next step consumes the
// result. The intermediate rounding is part of the contract, not an
// implementation detail.

var (
	upgradeFeeRate       = decimal.NewFromFloat(0.07)
	downgradePenaltyRate = decimal.NewFromFloat(0.10)
)

// pricePerSwap returns pkg.Price / pkg.MaxSwaps rounded to 2 decimals.
func pricePerSwap(pkg *domain.ServicePackage) decimal.Decimal {
	return pkg.Price.Div(decimal.NewFromInt(int64(pkg.MaxSwaps))).Round(2)
}

// EvaluateUpgrade prices the move from the current package to a bigger one.
//
//	refundValue  = pricePerSwapOld * remainingSwaps
//	upgradeFee   = currentPrice * 7%
//	totalPayment = newPrice + upgradeFee - refundValue
//
// totalPayment may be negative; it is reported as-is.
func EvaluateUpgrade(sub *domain.DriverSubscription, current, next *domain.ServicePackage, today time.Time) (*ports.UpgradeEvaluation, error) {
	if next.Price.Cmp(current.Price) <= 0 && next.MaxSwaps <= current.MaxSwaps {
		return nil, fmt.Errorf("%w: not a genuine upgrade: new package must cost more or offer more swaps (current %s / %d swaps, new %s / %d swaps)",
			domain.ErrConflict, current.Price.StringFixed(2), current.MaxSwaps, next.Price.StringFixed(2), next.MaxSwaps)
	}

	remaining := sub.RemainingSwaps
	used := current.MaxSwaps - remaining

	pricePerSwapOld := pricePerSwap(current)
	refundValue := pricePerSwapOld.Mul(decimal.NewFromInt(int64(remaining))).Round(2)
	upgradeFee := current.Price.Mul(upgradeFeeRate).Round(2)
	totalPayment := next.Price.Add(upgradeFee).Sub(refundValue).Round(2)

	pricePerSwapNew := pricePerSwap(next)
	savingsPerSwap := pricePerSwapOld.Sub(pricePerSwapNew)

	startDate := domain.Midnight(today)

	return &ports.UpgradeEvaluation{
		CurrentSubscriptionID: sub.ID,
		CurrentPackageName:    current.Name,
		CurrentPackagePrice:   current.Price,
		CurrentMaxSwaps:       current.MaxSwaps,
		UsedSwaps:             used,
		RemainingSwaps:        remaining,
		DaysUsed:              domain.DaysBetween(sub.StartDate, today),
		DaysRemaining:         domain.DaysBetween(today, sub.EndDate),

		NewPackageID:    next.ID,
		NewPackageName:  next.Name,
		NewPackagePrice: next.Price,
		NewMaxSwaps:     next.MaxSwaps,
		NewDuration:     next.Duration,

		PricePerSwapOld: pricePerSwapOld,
		PricePerSwapNew: pricePerSwapNew,
		SavingsPerSwap:  savingsPerSwap,
		RefundValue:     refundValue,
		UpgradeFee:      upgradeFee,
		TotalPayment:    totalPayment,

		NewStartDate:   startDate,
		NewEndDate:     startDate.AddDate(0, 0, next.Duration),
		Recommendation: upgradeRecommendation(current, next, remaining, savingsPerSwap),
	}, nil
}

func upgradeRecommendation(current, next *domain.ServicePackage, remaining int, savingsPerSwap decimal.Decimal) string {
	rec := "Analysis: "

	if savingsPerSwap.IsPositive() {
		rec += fmt.Sprintf("the new package saves %s per swap compared to the current one. ", savingsPerSwap.StringFixed(2))
	}

	if remaining > current.MaxSwaps/2 {
		rec += fmt.Sprintf("You still have %d/%d swaps unused (%d%%); consider using a few more before upgrading to get full value. ",
			remaining, current.MaxSwaps, remaining*100/current.MaxSwaps)
	} else {
		rec += "Good time to upgrade. "
	}

	if extra := next.MaxSwaps - current.MaxSwaps; extra > 0 {
		rec += fmt.Sprintf("After upgrading you will have %d additional swaps (%d to %d). ", extra, current.MaxSwaps, next.MaxSwaps)
	}

	return rec
}

// EvaluateDowngrade checks eligibility and computes the penalty and extended
// term for moving to a smaller package. Ineligible downgrades come back with
// CanDowngrade=false and a reason; no error is returned for them.
//
//	penaltySwaps  = round(remainingSwaps * 10%)
//	finalSwaps    = remainingSwaps - penaltySwaps
//	swapRatio     = finalSwaps / newMaxSwaps       (4 decimals)
//	extensionDays = round(swapRatio * newDuration)
//
// Downgrades never refund money.
func EvaluateDowngrade(sub *domain.DriverSubscription, current, next *domain.ServicePackage, today time.Time) *ports.DowngradeEvaluation {
	remaining := sub.RemainingSwaps
	used := current.MaxSwaps - remaining

	eval := &ports.DowngradeEvaluation{
		CurrentSubscriptionID: sub.ID,
		CurrentPackageName:    current.Name,
		CurrentPackagePrice:   current.Price,
		CurrentMaxSwaps:       current.MaxSwaps,
		UsedSwaps:             used,
		RemainingSwaps:        remaining,
		DaysUsed:              domain.DaysBetween(sub.StartDate, today),
		DaysRemaining:         domain.DaysBetween(today, sub.EndDate),

		NewPackageID:    next.ID,
		NewPackageName:  next.Name,
		NewPackagePrice: next.Price,
		NewMaxSwaps:     next.MaxSwaps,
		NewDuration:     next.Duration,

		PricePerSwapOld: pricePerSwap(current),
		PricePerSwapNew: pricePerSwap(next),
		NoRefund:        decimal.Zero,
	}

	if next.Price.Cmp(current.Price) >= 0 && next.MaxSwaps >= current.MaxSwaps {
		eval.CanDowngrade = false
		eval.Reason = fmt.Sprintf("not a genuine downgrade: new package must cost less or offer fewer swaps (current %s / %d swaps, new %s / %d swaps)",
			current.Price.StringFixed(2), current.MaxSwaps, next.Price.StringFixed(2), next.MaxSwaps)
		eval.Warning = "This is not a downgrade; pick a cheaper package."
		return eval
	}

	if remaining > next.MaxSwaps {
		toConsume := remaining - next.MaxSwaps
		eval.CanDowngrade = false
		eval.SwapsToConsume = toConsume
		eval.Reason = fmt.Sprintf("too many unused swaps: you have %d swaps left but package %q supports at most %d; use up swaps until at most %d remain, or pick a bigger package",
			remaining, next.Name, next.MaxSwaps, next.MaxSwaps)
		eval.Warning = fmt.Sprintf("Use %d more swaps (down to %d remaining) and you qualify for this package.", toConsume, next.MaxSwaps)
		return eval
	}

	penaltySwaps := int(decimal.NewFromInt(int64(remaining)).Mul(downgradePenaltyRate).Round(0).IntPart())
	finalSwaps := remaining - penaltySwaps

	swapRatio := decimal.NewFromInt(int64(finalSwaps)).Div(decimal.NewFromInt(int64(next.MaxSwaps))).Round(4)
	extensionDays := int(swapRatio.Mul(decimal.NewFromInt(int64(next.Duration))).Round(0).IntPart())

	startDate := domain.Midnight(today)

	eval.CanDowngrade = true
	eval.PenaltySwaps = penaltySwaps
	eval.FinalRemainingSwaps = finalSwaps
	eval.ExtensionDays = extensionDays
	eval.NewStartDate = startDate
	eval.NewEndDate = startDate.AddDate(0, 0, extensionDays)
	eval.Reason = "You qualify for this downgrade. Review the warning before committing."
	eval.Warning = fmt.Sprintf("No refund on downgrade. You paid %s for package %q; moving to %q returns no money, and %d swaps are deducted as a 10%% penalty.",
		current.Price.StringFixed(2), current.Name, next.Name, penaltySwaps)
	eval.Recommendation = downgradeRecommendation(current, next, remaining, finalSwaps, extensionDays)

	return eval
}

func downgradeRecommendation(current, next *domain.ServicePackage, remaining, finalSwaps, extensionDays int) string {
	rec := "Analysis: "

	lost := current.Price.Sub(next.Price)
	rec += fmt.Sprintf("the %s price difference between the two packages is forfeited. ", lost.StringFixed(2))
	rec += fmt.Sprintf("%d swaps are deducted (10%% penalty), leaving %d. ", remaining-finalSwaps, finalSwaps)
	rec += fmt.Sprintf("The new package runs for %d days, sized to the %d remaining swaps. ", extensionDays, finalSwaps)

	if remaining > next.MaxSwaps/2 {
		rec += "Think it over: you still have plenty of swaps, so using them up before buying a smaller package may work out better. "
	} else {
		rec += "Reasonable if you really use fewer swaps than planned. "
	}

	return rec
}
