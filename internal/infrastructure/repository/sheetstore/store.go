// Package sheetstore keeps the fixture, roster and weekly ground tables in a
// Google Sheets spreadsheet, one sheet per table.
package sheetstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/ground-setup/internal/platform/logging"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const (
	valueInputRaw         = "RAW"
	valueInputUserEntered = "USER_ENTERED"

	defaultFixturesSheet = "Fixtures"
	defaultTeamsSheet    = "Teams"
)

type Config struct {
	SpreadsheetID string
	FixturesSheet string
	TeamsSheet    string
	// ContactFormulas writes week view contacts as lookups into the roster
	// sheet instead of copying the resolved values.
	ContactFormulas bool
	Location        *time.Location
}

type Store struct {
	svc    *gsheets.Service
	cfg    Config
	logger *logging.Logger
	now    func() time.Time
}

// NewService builds a Sheets client. Without credentials JSON the client
// falls back to application default credentials.
func NewService(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*gsheets.Service, error) {
	if len(credentialsJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, gsheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse google credentials: %w", err)
		}
		opts = append([]option.ClientOption{option.WithCredentials(creds)}, opts...)
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func New(svc *gsheets.Service, cfg Config, logger *logging.Logger) (*Store, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if cfg.FixturesSheet == "" {
		cfg.FixturesSheet = defaultFixturesSheet
	}
	if cfg.TeamsSheet == "" {
		cfg.TeamsSheet = defaultTeamsSheet
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Store{
		svc:    svc,
		cfg:    cfg,
		logger: logger.WithComponent("sheetstore"),
		now:    time.Now,
	}, nil
}

func (s *Store) Fixtures() *FixtureRepository {
	return &FixtureRepository{store: s}
}

func (s *Store) Roster() *RosterRepository {
	return &RosterRepository{store: s}
}

func (s *Store) GroundViews() *GroundViewRepository {
	return &GroundViewRepository{store: s}
}

func (s *Store) sheetTitles(ctx context.Context) (map[string]struct{}, error) {
	resp, err := s.svc.Spreadsheets.Get(s.cfg.SpreadsheetID).
		Fields("sheets.properties(sheetId,title,index)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}

	out := make(map[string]struct{}, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			out[sheet.Properties.Title] = struct{}{}
		}
	}
	return out, nil
}

func (s *Store) hasSheet(ctx context.Context, title string) (bool, error) {
	titles, err := s.sheetTitles(ctx)
	if err != nil {
		return false, err
	}
	_, ok := titles[title]
	return ok, nil
}

// addSheet creates a sheet at the end, or in front of every other sheet when
// first is set.
func (s *Store) addSheet(ctx context.Context, title string, first bool) error {
	props := &gsheets.SheetProperties{Title: title}
	if first {
		props.Index = 0
		props.ForceSendFields = []string{"Index"}
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{AddSheet: &gsheets.AddSheetRequest{Properties: props}}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.cfg.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %q: %w", title, err)
	}
	s.logger.InfoContext(ctx, "sheet created", "title", title)
	return nil
}

// ensureTable creates a missing table sheet with its header row.
func (s *Store) ensureTable(ctx context.Context, title string, header []string) error {
	ok, err := s.hasSheet(ctx, title)
	if err != nil || ok {
		return err
	}
	if err := s.addSheet(ctx, title, false); err != nil {
		return err
	}
	return s.writeValues(ctx, a1(title, "A1"), [][]any{stringRow(header)}, valueInputRaw)
}

// readRows reads width columns from row 2 down. Blank rows are dropped and
// short rows padded.
func (s *Store) readRows(ctx context.Context, title string, width int) ([][]string, error) {
	rng := a1(title, "A2:"+columnName(width))
	resp, err := s.svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, width)
		blank := true
		for i := 0; i < width && i < len(raw); i++ {
			row[i] = cellString(raw[i])
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *Store) writeValues(ctx context.Context, rng string, values [][]any, inputOption string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := s.svc.Spreadsheets.Values.Update(s.cfg.SpreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption(inputOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	return nil
}

// replaceRows writes a table body from row 2 and clears the old rows left
// below it. Blank rows are dropped on read, so the written body can be
// shorter than what the sheet held.
func (s *Store) replaceRows(ctx context.Context, title string, width int, values [][]any) error {
	if err := s.writeValues(ctx, a1(title, "A2"), values, valueInputRaw); err != nil {
		return err
	}
	return s.clearRange(ctx, a1(title, fmt.Sprintf("A%d:%s", len(values)+2, columnName(width))))
}

func (s *Store) clearRange(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.cfg.SpreadsheetID, rng, &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func a1(title, cells string) string {
	return quoteSheet(title) + "!" + cells
}

// columnName converts a 1-based column count to its letter; tables here are
// never wider than Z.
func columnName(n int) string {
	return string(rune('A' + n - 1))
}

func stringRow(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func cellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
