package http

import (
	"time"

	"chitieu/internal/core"
	"chitieu/internal/services"
)

// View types decouple the JSON surface from the core types.
type (
	participantView struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	expenseView struct {
		ID           string   `json:"id"`
		PayerID      string   `json:"payer_id"`
		Description  string   `json:"description"`
		Amount       float64  `json:"amount"`
		Category     string   `json:"category"`
		Participants []string `json:"participants"`
		Date         string   `json:"date"`
		CreatedAt    string   `json:"created_at"`
	}

	balanceView struct {
		ParticipantID string  `json:"participant_id"`
		Name          string  `json:"name"`
		Color         string  `json:"color"`
		Paid          float64 `json:"paid"`
		Owed          float64 `json:"owed"`
		Net           float64 `json:"net"`
	}

	transferView struct {
		From   string  `json:"from"`
		To     string  `json:"to"`
		Amount float64 `json:"amount"`
	}

	balancesView struct {
		Balances  []balanceView  `json:"balances"`
		Transfers []transferView `json:"transfers"`
	}

	dailyBucketView struct {
		Date       string             `json:"date"`
		Total      float64            `json:"total"`
		ByUser     map[string]float64 `json:"by_user"`
		ByCategory map[string]float64 `json:"by_category"`
	}

	userTotalView struct {
		ParticipantID string  `json:"participant_id"`
		Name          string  `json:"name"`
		Color         string  `json:"color"`
		Total         float64 `json:"total"`
	}

	statisticsView struct {
		TotalAmount  float64            `json:"total_amount"`
		AverageDaily float64            `json:"average_daily"`
		Days         []dailyBucketView  `json:"days"`
		ByCategory   map[string]float64 `json:"by_category"`
		ByUser       []userTotalView    `json:"by_user"`
	}

	rankingView struct {
		ParticipantID string  `json:"participant_id"`
		Name          string  `json:"name"`
		Color         string  `json:"color"`
		TotalAmount   float64 `json:"total_amount"`
		ExpenseCount  int     `json:"expense_count"`
		TopCategory   string  `json:"top_category"`
	}

	summaryView struct {
		Start        string          `json:"start"`
		End          string          `json:"end"`
		TotalAmount  float64         `json:"total_amount"`
		ExpenseCount int             `json:"expense_count"`
		ByUser       []userTotalView `json:"by_user"`
	}
)

const dateFormat = "2006-01-02"

func toParticipantView(p core.Participant) participantView {
	return participantView{ID: p.ID, Name: p.Name, Color: p.Color}
}

func toParticipantViews(ps []core.Participant) []participantView {
	out := make([]participantView, len(ps))
	for i, p := range ps {
		out[i] = toParticipantView(p)
	}
	return out
}

func toExpenseView(e core.Expense) expenseView {
	participants := e.Participants
	if participants == nil {
		participants = []string{}
	}
	return expenseView{
		ID:           e.ID,
		PayerID:      e.PayerID,
		Description:  e.Description,
		Amount:       e.Amount,
		Category:     e.CategoryOrDefault(),
		Participants: participants,
		Date:         e.Date.Format(dateFormat),
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}

func toExpenseViews(es []core.Expense) []expenseView {
	out := make([]expenseView, len(es))
	for i, e := range es {
		out[i] = toExpenseView(e)
	}
	return out
}

func toBalancesView(report services.BalanceReport) balancesView {
	view := balancesView{
		Balances:  make([]balanceView, len(report.Balances)),
		Transfers: make([]transferView, len(report.Transfers)),
	}
	for i, b := range report.Balances {
		view.Balances[i] = balanceView{
			ParticipantID: b.ParticipantID,
			Name:          b.Name,
			Color:         b.Color,
			Paid:          b.Paid,
			Owed:          b.Owed,
			Net:           b.Net,
		}
	}
	for i, t := range report.Transfers {
		view.Transfers[i] = transferView{From: t.From, To: t.To, Amount: t.Amount}
	}
	return view
}

func toStatisticsView(stats core.Statistics) statisticsView {
	view := statisticsView{
		TotalAmount:  stats.TotalAmount,
		AverageDaily: stats.AverageDaily,
		Days:         make([]dailyBucketView, len(stats.Days)),
		ByCategory:   stats.ByCategory,
		ByUser:       toUserTotalViews(stats.ByUser),
	}
	for i, d := range stats.Days {
		view.Days[i] = dailyBucketView{
			Date:       d.Date.Format(dateFormat),
			Total:      d.Total,
			ByUser:     d.ByUser,
			ByCategory: d.ByCategory,
		}
	}
	return view
}

func toUserTotalViews(totals []core.UserTotal) []userTotalView {
	out := make([]userTotalView, len(totals))
	for i, t := range totals {
		out[i] = userTotalView{
			ParticipantID: t.ParticipantID,
			Name:          t.Name,
			Color:         t.Color,
			Total:         t.Total,
		}
	}
	return out
}

func toRankingViews(entries []core.RankingEntry) []rankingView {
	out := make([]rankingView, len(entries))
	for i, e := range entries {
		out[i] = rankingView{
			ParticipantID: e.ParticipantID,
			Name:          e.Name,
			Color:         e.Color,
			TotalAmount:   e.TotalAmount,
			ExpenseCount:  e.ExpenseCount,
			TopCategory:   e.TopCategory,
		}
	}
	return out
}

func toSummaryView(s services.Summary) summaryView {
	return summaryView{
		Start:        s.Window.Start.Format(dateFormat),
		End:          s.Window.End.Format(dateFormat),
		TotalAmount:  s.TotalAmount,
		ExpenseCount: s.ExpenseCount,
		ByUser:       toUserTotalViews(s.ByUser),
	}
}
