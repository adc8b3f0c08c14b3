package payroll

import "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/money"

// defaultIndemnityPercent applies when neither an override nor the contract
// provides indemnities: 5% of the base salary.
const defaultIndemnityPercent = 5

// amountResolver returns an amount and whether it is present. Present-or-
// absent semantics matter here: an explicit override of 0 is present and must
// win over later resolvers, so a falsy-coalescing chain would be wrong.
type amountResolver func() (int64, bool)

// resolveAmount evaluates resolvers in order and returns the first present
// value.
func resolveAmount(resolvers ...amountResolver) int64 {
	for _, r := range resolvers {
		if v, ok := r(); ok {
			return v
		}
	}
	return 0
}

func overrideResolver(v *int64) amountResolver {
	return func() (int64, bool) {
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}

func contractIndemnityResolver(indemnities int64) amountResolver {
	return func() (int64, bool) {
		if indemnities == 0 {
			return 0, false
		}
		return indemnities, true
	}
}

func defaultIndemnityResolver(baseSalary int64) amountResolver {
	return func() (int64, bool) {
		return money.Percent(baseSalary, defaultIndemnityPercent), true
	}
}

// resolveIndemnities applies the precedence override -> contract -> 5% of
// base salary.
func resolveIndemnities(override *int64, contractIndemnities, baseSalary int64) int64 {
	return resolveAmount(
		overrideResolver(override),
		contractIndemnityResolver(contractIndemnities),
		defaultIndemnityResolver(baseSalary),
	)
}

// resolveBaseSalary applies the precedence override -> contract base salary.
func resolveBaseSalary(override *int64, contractBase int64) int64 {
	return resolveAmount(
		overrideResolver(override),
		func() (int64, bool) { return contractBase, true },
	)
}
