package core

// ComputeBalances folds a set of expenses into one net balance per roster
// member, returned in roster order so downstream sorts are reproducible.
//
// Every roster member appears in the result, including those with no
// expenses at all. Participant ids referenced by an expense but absent from
// the roster are skipped silently: the roster may legitimately have changed
// after the expense was recorded. The payer's contribution is counted even
// when their own share is dropped that way.
func ComputeBalances(expenses []Expense, roster []Participant) []Balance {
	balances := make([]Balance, len(roster))
	index := make(map[string]int, len(roster))
	for i, p := range roster {
		balances[i] = Balance{ParticipantID: p.ID, Name: p.Name, Color: p.Color}
		index[p.ID] = i
	}
	if len(roster) == 0 {
		return balances
	}

	for _, e := range expenses {
		if i, ok := index[e.PayerID]; ok {
			balances[i].Paid += e.Amount
		}
		for id, share := range Shares(e, normalizeParticipants(e, roster)) {
			if i, ok := index[id]; ok {
				balances[i].Owed += share
			}
		}
	}

	// Net is derived once over the accumulated totals, not incrementally per
	// expense, so rounding drift stays confined to the two running sums.
	for i := range balances {
		balances[i].Net = balances[i].Paid - balances[i].Owed
	}
	return balances
}

// BalanceMap re-keys a balance slice by participant id.
func BalanceMap(balances []Balance) map[string]Balance {
	m := make(map[string]Balance, len(balances))
	for _, b := range balances {
		m[b.ParticipantID] = b
	}
	return m
}
