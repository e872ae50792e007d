// Package google mirrors the transaction ledger into a Google Sheets
// spreadsheet, one row per transaction keyed by its id.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	applog "finflow/internal/log"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	// Column G holds the transaction id.
	idColumn  = "G"
	lastCol   = "G"
	valueMode = "USER_ENTERED"
)

// Config selects the spreadsheet and how to authenticate. CredentialsJSON
// wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// New creates a client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName, logger), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test
// endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string, logger *applog.Logger) *Client {
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// a1 builds an A1 range on the ledger sheet. The sheet name is always
// quoted since Vietnamese names contain spaces.
func (c *Client) a1(cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(c.sheetName, "'", "''"), cells)
}

// EnsureHeader writes the header row when the sheet is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := c.a1("A1:" + lastCol + "1")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header %s: %w", rng, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
		&gsheet.ValueRange{Values: [][]any{headerRow()}}).
		ValueInputOption(valueMode).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header %s: %w", rng, err)
	}
	c.logger.InfoContext(ctx, "Ledger header written", "sheet", c.sheetName)
	return nil
}

// Upsert rewrites the row holding r.ID, or appends a new one. It returns
// the A1 range written.
func (c *Client) Upsert(ctx context.Context, r Row) (string, error) {
	if r.ID == "" {
		return "", errors.New("row without transaction id")
	}
	rowNum, err := c.findRow(ctx, r.ID)
	if err != nil {
		return "", err
	}
	vr := &gsheet.ValueRange{Values: [][]any{r.Values()}}

	if rowNum > 0 {
		rng := c.a1(fmt.Sprintf("A%d:%s%d", rowNum, lastCol, rowNum))
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption(valueMode).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("update %s: %w", rng, err)
		}
		return rng, nil
	}

	rng := c.a1("A:" + lastCol)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption(valueMode).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", rng, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

// Delete blanks the row holding id. It reports false when no row matched.
func (c *Client) Delete(ctx context.Context, id string) (bool, error) {
	rowNum, err := c.findRow(ctx, id)
	if err != nil || rowNum == 0 {
		return false, err
	}
	rng := c.a1(fmt.Sprintf("A%d:%s%d", rowNum, lastCol, rowNum))
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("clear %s: %w", rng, err)
	}
	return true, nil
}

// ClearAll blanks every row below the header.
func (c *Client) ClearAll(ctx context.Context) error {
	rng := c.a1("A2:" + lastCol)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

// findRow returns the 1-based sheet row whose id column equals id, or 0.
func (c *Client) findRow(ctx context.Context, id string) (int, error) {
	rng := c.a1(idColumn + ":" + idColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read ids %s: %w", rng, err)
	}
	return rowOf(resp.Values, id), nil
}
