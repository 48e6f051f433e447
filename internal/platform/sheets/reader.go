package sheets

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

type Config struct {
	SpreadsheetID string
	Range         string

	// APIKey wins over the service account when both are set.
	APIKey string

	ServiceAccountEmail string
	PrivateKeyPEM       string
	TokenURL            string

	// Endpoint overrides the Sheets API base URL.
	Endpoint string
}

// SheetData is the raw value grid plus the source row number of Rows[0].
type SheetData struct {
	Rows     [][]any
	StartRow int
}

type Reader interface {
	Read(ctx context.Context) (SheetData, error)
}

type reader struct {
	log    *logger.Logger
	cfg    Config
	tokens accessTokenSource
}

// NewReader validates credentials lazily: a reader with nothing configured still builds and
// fails closed on Read, so explicit planilha rows keep working.
func NewReader(log *logger.Logger, cfg Config, httpClient *http.Client, cache TokenCache) (Reader, error) {
	r := &reader{log: log.With("service", "SheetsReader"), cfg: cfg}
	if strings.TrimSpace(cfg.APIKey) == "" && cfg.ServiceAccountEmail != "" && cfg.PrivateKeyPEM != "" {
		tokens, err := newServiceAccountTokens(r.log, cfg.ServiceAccountEmail, cfg.PrivateKeyPEM, cfg.TokenURL, httpClient, cache)
		if err != nil {
			return nil, err
		}
		r.tokens = tokens
	}
	return r, nil
}

func (r *reader) Read(ctx context.Context) (SheetData, error) {
	if strings.TrimSpace(r.cfg.SpreadsheetID) == "" || strings.TrimSpace(r.cfg.Range) == "" {
		return SheetData{}, &ConfigError{Msg: "spreadsheet id and range are required"}
	}

	opts := []option.ClientOption{}
	switch {
	case strings.TrimSpace(r.cfg.APIKey) != "":
		opts = append(opts, option.WithAPIKey(r.cfg.APIKey))
	case r.tokens != nil:
		tok, err := r.tokens.AccessToken(ctx)
		if err != nil {
			return SheetData{}, err
		}
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: tok,
			TokenType:   "Bearer",
		})))
	default:
		return SheetData{}, &ConfigError{Msg: "set GOOGLE_SHEETS_API_KEY or GOOGLE_SA_EMAIL and GOOGLE_SA_PRIVATE_KEY"}
	}
	if r.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(r.cfg.Endpoint))
	}

	srv, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return SheetData{}, &UpstreamError{Op: "sheets client", Message: err.Error()}
	}
	resp, err := srv.Spreadsheets.Values.Get(r.cfg.SpreadsheetID, r.cfg.Range).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return SheetData{}, &UpstreamError{Op: "sheets values.get", Status: gerr.Code, Message: gerr.Message}
		}
		return SheetData{}, &UpstreamError{Op: "sheets values.get", Message: err.Error()}
	}

	rows := make([][]any, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, row)
	}
	r.log.Debug("planilha fetched", "rows", len(rows), "range", r.cfg.Range)
	return SheetData{Rows: rows, StartRow: ParseRangeStartRow(r.cfg.Range)}, nil
}
