// Package google writes settlement reports to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"chitieu/internal/export"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.ReportWriter = (*Client)(nil)

// NewClient creates a Sheets client for the given spreadsheet. Credentials
// come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewClient(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Settlements"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using service account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteSettlementReport replaces the sheet contents with the latest report.
// The sheet always reflects the newest snapshot, so clearing first keeps
// stale rows from previous, larger reports out.
func (c *Client) WriteSettlementReport(ctx context.Context, report export.Report) error {
	clearRange := fmt.Sprintf("%s!A:Z", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	values := reportValues(report)
	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, &gsheet.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// reportValues flattens a report into the values matrix the Sheets API
// expects: a balances block followed by a transfers block.
func reportValues(report export.Report) [][]interface{} {
	values := [][]interface{}{
		{"Generated", report.GeneratedAt.Format(time.RFC3339)},
		{},
		{"Participant", "Paid", "Owed", "Net"},
	}
	for _, b := range report.Balances {
		values = append(values, []interface{}{b.Name, b.Paid, b.Owed, b.Net})
	}

	// Transfers carry participant ids; show names where the balances block
	// knows them.
	names := make(map[string]string, len(report.Balances))
	for _, b := range report.Balances {
		names[b.ParticipantID] = b.Name
	}
	displayName := func(id string) string {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return id
	}

	values = append(values, []interface{}{}, []interface{}{"From", "To", "Amount"})
	for _, t := range report.Transfers {
		values = append(values, []interface{}{displayName(t.From), displayName(t.To), t.Amount})
	}
	return values
}
