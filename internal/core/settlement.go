package core

import (
	"math"
	"sort"
)

// PlanSettlements turns net balances into a minimal list of pairwise
// transfers that drives every balance to within Epsilon of zero.
//
// Debtors are visited most-negative first, creditors largest first, and the
// current pair is matched greedily with min(|debt|, credit). The ordering is
// a fixed policy: other minimal-transfer orderings exist, but output must be
// deterministic for identical inputs. At most len(debtors)+len(creditors)-1
// transfers are produced and sub-epsilon transfers are never emitted.
func PlanSettlements(balances []Balance) []Transfer {
	var debtors, creditors []Balance
	for _, b := range balances {
		switch {
		case b.Net < -Epsilon:
			debtors = append(debtors, b)
		case b.Net > Epsilon:
			creditors = append(creditors, b)
		}
	}

	// Stable keeps roster order between equal balances.
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].Net < debtors[j].Net })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].Net > creditors[j].Net })

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := math.Min(-debtor.Net, creditor.Net)
		if amount > Epsilon {
			transfers = append(transfers, Transfer{
				From:   debtor.ParticipantID,
				To:     creditor.ParticipantID,
				Amount: amount,
			})
		}

		debtor.Net += amount
		creditor.Net -= amount

		if -debtor.Net < Epsilon {
			i++
		}
		if creditor.Net < Epsilon {
			j++
		}
	}
	return transfers
}
