package catalog

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	"github.com/m3rciful/shopbot/core/logger"
	"log/slog"
)

// Sheet columns, in order: id, name, category, price, stock, description, photo_url, active.
const sheetColumns = "A:H"

// SheetsCatalog reads and appends products in a Google spreadsheet worksheet.
type SheetsCatalog struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	timeout       time.Duration
}

// NewSheetsCatalog builds the Sheets client from service account credentials
// supplied as base64 JSON or a file path.
func NewSheetsCatalog(ctx context.Context, cfg coreconfig.SheetsConfig) (*SheetsCatalog, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id is required")
	}

	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := sheets.NewService(ctx, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("sheets: service init: %w", err)
	}

	return &SheetsCatalog{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     cfg.Worksheet,
		timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

func loadCredentials(cfg coreconfig.SheetsConfig) ([]byte, error) {
	if b64 := strings.TrimSpace(cfg.CredentialsB64); b64 != "" {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("sheets: decode credentials: %w", err)
		}
		return raw, nil
	}
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("sheets: read credentials file: %w", err)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("sheets: service account credentials are required")
}

func (s *SheetsCatalog) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SheetsCatalog) valueRange() string {
	return fmt.Sprintf("%s!%s", s.worksheet, sheetColumns)
}

// ListActive fetches the worksheet and returns active products in sheet order.
// Malformed rows are skipped, never fail the listing.
func (s *SheetsCatalog) ListActive(ctx context.Context) ([]Product, error) {
	all, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]Product, 0, len(all))
	for _, p := range all {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func (s *SheetsCatalog) listAll(ctx context.Context) ([]Product, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.valueRange()).Context(callCtx).Do()
	took := time.Since(start)
	if err != nil {
		logger.CAT.Error("sheet fetch failed",
			slog.String("event", "catalog.list"),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("sheets: fetch values: %w", err)
	}

	products := make([]Product, 0, len(resp.Values))
	skipped := 0
	for i, row := range resp.Values {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		p, ok := decodeRow(row)
		if !ok {
			skipped++
			continue
		}
		products = append(products, p)
	}

	logger.CAT.Debug("sheet fetched",
		slog.String("event", "catalog.list"),
		slog.Int("rows", len(resp.Values)),
		slog.Int("products", len(products)),
		slog.Int("skipped", skipped),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return products, nil
}

// FindByID scans the sheet for the given id; the sheet is small and fetched
// fresh on purpose.
func (s *SheetsCatalog) FindByID(ctx context.Context, id string) (Product, error) {
	all, err := s.listAll(ctx)
	if err != nil {
		return Product{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Append adds the product as a new row at the end of the worksheet.
func (s *SheetsCatalog) Append(ctx context.Context, p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	active := "no"
	if p.Active {
		active = "yes"
	}
	row := &sheets.ValueRange{
		Values: [][]interface{}{{
			p.ID, p.Name, p.Category, p.Price, p.Stock, p.Description, p.PhotoURL, active,
		}},
	}

	start := time.Now()
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.valueRange(), row).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(callCtx).Do()
	took := time.Since(start)
	if err != nil {
		logger.CAT.Error("sheet append failed",
			slog.String("event", "catalog.append"),
			slog.String("product_id", p.ID),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("sheets: append row: %w", err)
	}

	logger.CAT.Info("product appended",
		slog.String("event", "catalog.append"),
		slog.String("product_id", p.ID),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return nil
}

func isHeaderRow(row []interface{}) bool {
	if len(row) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(cellString(row, 0)), "id")
}

// decodeRow converts one sheet row to a Product. Rows without an id or with
// unparseable numbers are reported as malformed.
func decodeRow(row []interface{}) (Product, bool) {
	id := strings.TrimSpace(cellString(row, 0))
	if id == "" {
		return Product{}, false
	}

	price := 0.0
	if raw := strings.TrimSpace(cellString(row, 3)); raw != "" {
		v, err := ParsePrice(raw)
		if err != nil {
			return Product{}, false
		}
		price = v
	}

	stock := 0
	if raw := strings.TrimSpace(cellString(row, 4)); raw != "" {
		v, err := ParseStock(raw)
		if err != nil {
			return Product{}, false
		}
		stock = v
	}

	return Product{
		ID:          id,
		Name:        cellString(row, 1),
		Category:    cellString(row, 2),
		Price:       price,
		Stock:       stock,
		Description: cellString(row, 5),
		PhotoURL:    strings.TrimSpace(cellString(row, 6)),
		Active:      ParseActive(cellString(row, 7)),
	}, true
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
