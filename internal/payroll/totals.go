package payroll

import "github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/money"

// cnpsEmployerPermille is the CNPS employer contribution rate, 16.2%.
const cnpsEmployerPermille = 162

// Totals is the derived arithmetic of one payroll.
type Totals struct {
	GrossSalary   int64
	TotalRetenues int64
	NetAmount     int64
	CnpsEmployer  int64
}

// ComputeTotals derives gross, total deductions and net from the component
// fields. It is pure on purpose: every persist path calls it explicitly, so
// stored totals are always recomputable and comparable for equality.
//
// Gross sums every gain except GrossSalary itself; TotalRetenues sums every
// deduction except itself; net is gross minus retenues floored at zero. The
// employer charge derives from gross and never enters the net.
func ComputeTotals(g Gains, d Deductions) Totals {
	gross := g.BaseSalary + g.Transport + g.Risk + g.TotalIndemnities + g.OvertimeHours + g.Sursalaire
	retenues := d.Accompte + d.AutresRetenues + d.Absences

	net := gross - retenues
	if net < 0 {
		net = 0
	}

	return Totals{
		GrossSalary:   gross,
		TotalRetenues: retenues,
		NetAmount:     net,
		CnpsEmployer:  money.Permille(gross, cnpsEmployerPermille),
	}
}

// applyTotals writes the derived values back onto the payroll.
func applyTotals(p *Payroll) {
	t := ComputeTotals(p.Gains, p.Deductions)
	p.Gains.GrossSalary = t.GrossSalary
	p.Deductions.TotalRetenues = t.TotalRetenues
	p.NetAmount = t.NetAmount
	p.EmployerCharges.CnpsEmployer = t.CnpsEmployer
}
