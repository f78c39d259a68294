package core

// Shares computes the per-participant obligation created by one expense:
// an equal split of the amount across the given participant set. The payer
// is not exempted; their own share nets against what they paid.
//
// The participant set must already be normalized (see normalizeParticipants);
// an empty set yields no shares rather than a division by zero.
func Shares(e Expense, participants []string) map[string]float64 {
	if len(participants) == 0 {
		return nil
	}
	share := e.Amount / float64(len(participants))
	shares := make(map[string]float64, len(participants))
	for _, id := range participants {
		shares[id] += share
	}
	return shares
}

// normalizeParticipants widens an empty participant set to the full roster.
// Expenses recorded without an explicit split are shared by everyone at
// computation time, so the roster a fold runs against decides the split.
func normalizeParticipants(e Expense, roster []Participant) []string {
	if len(e.Participants) > 0 {
		return e.Participants
	}
	ids := make([]string, len(roster))
	for i, p := range roster {
		ids[i] = p.ID
	}
	return ids
}
