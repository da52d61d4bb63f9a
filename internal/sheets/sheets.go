package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/kwondev/buyee-mercari-scraper/internal/config"
	"github.com/kwondev/buyee-mercari-scraper/internal/models"
)

// Column layout of the list sheet: code, title, price, image, url,
// timestamp.
const (
	urlColumn       = "E"
	timestampColumn = 5 // zero-based index of the sort column
	rowWidth        = 6
)

// Client is the tabular store behind the run: the code sheet supplies
// search tasks, the list sheet holds the accumulated output rows and
// controls final ordering.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	codeSheet     string
	listSheet     string
	logger        *slog.Logger
}

func NewClient(ctx context.Context, cfg config.SheetsConfig) (*Client, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		codeSheet:     cfg.CodeSheet,
		listSheet:     cfg.ListSheet,
		logger:        slog.Default().With("component", "sheets"),
	}, nil
}

// Tasks reads the code sheet below its header row: column A is the
// keyword (doubling as the result grouping code), column B the optional
// price ceiling. Blank keywords are skipped; malformed ceilings mean no
// ceiling.
func (c *Client) Tasks(ctx context.Context) ([]models.SearchTask, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!A2:B", c.codeSheet)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read code sheet: %w", err)
	}

	var tasks []models.SearchTask
	for _, row := range resp.Values {
		keyword := strings.TrimSpace(cell(row, 0))
		if keyword == "" {
			continue
		}
		tasks = append(tasks, models.SearchTask{
			Keyword: keyword,
			Ceiling: models.ParseCeiling(cell(row, 1)),
		})
	}

	return tasks, nil
}

// ExistingURLs reads the url column of the list sheet, the store's view
// of everything already recorded. Empty cells are returned as empty
// strings so an already-written sentinel row suppresses further ones.
func (c *Client) ExistingURLs(ctx context.Context) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Get(c.spreadsheetID, fmt.Sprintf("%s!%s2:%s", c.listSheet, urlColumn, urlColumn)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read existing urls: %w", err)
	}

	urls := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		urls = append(urls, cell(row, 0))
	}

	return urls, nil
}

// InsertRows inserts new rows at the top of the list sheet (row 2,
// right below the header), leaving previously recorded rows intact.
func (c *Client) InsertRows(ctx context.Context, rows []models.OutputRow) error {
	if len(rows) == 0 {
		return nil
	}

	sheetID, err := c.sheetID(ctx, c.listSheet)
	if err != nil {
		return err
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			InsertDimension: &sheets.InsertDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: 1,
					EndIndex:   int64(1 + len(rows)),
				},
				InheritFromBefore: false,
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}

	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Values())
	}

	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, fmt.Sprintf("%s!A2", c.listSheet), &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	c.logger.Info("rows written to list sheet", "count", len(rows))

	return nil
}

// SortByTimestamp re-sorts all data rows descending by the capture
// timestamp column, newest first.
func (c *Client) SortByTimestamp(ctx context.Context) error {
	sheetID, err := c.sheetID(ctx, c.listSheet)
	if err != nil {
		return err
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			SortRange: &sheets.SortRangeRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1,
					StartColumnIndex: 0,
					EndColumnIndex:   rowWidth,
				},
				SortSpecs: []*sheets.SortSpec{{
					DimensionIndex: timestampColumn,
					SortOrder:      "DESCENDING",
				}},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to sort list sheet: %w", err)
	}

	return nil
}

func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet.Properties.SheetId, nil
		}
	}

	return 0, fmt.Errorf("sheet %q not found", title)
}

func cell(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}
