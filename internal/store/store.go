// Package store persists processed requests in a SQLite database next to
// the PDF artifacts, so runs can be queried later:
//
//	SELECT id, reference_num, start_date FROM requests;
//	SELECT * FROM summary_items WHERE request_id = ? ORDER BY row_order;
//
// Totals, grand totals, and "due to claimant" rows carry
// row_type='total'; line items carry row_type='item'.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/porticus-lab/minerva-archive/internal/detail"
)

// DefaultFile is the database filename inside the output directory.
const DefaultFile = "details.db"

// Store wraps the archive database.
type Store struct {
	db *sql.DB
}

// Request is one processed report row.
type Request struct {
	ID           int64  `json:"id" yaml:"id"`
	Years        string `json:"years" yaml:"years"`
	RowIndex     int    `json:"row_index" yaml:"row_index"`
	RequestDate  string `json:"request_date" yaml:"request_date"`
	StartDate    string `json:"start_date" yaml:"start_date"`
	ReferenceNum string `json:"reference_num" yaml:"reference_num"`
	QueueTitle   string `json:"queue_title" yaml:"queue_title"`
	PDFPath      string `json:"pdf_path" yaml:"pdf_path"`
	TxtPath      string `json:"txt_path" yaml:"txt_path"`
	CreatedAt    string `json:"created_at" yaml:"created_at"`
}

// Open opens or creates the database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			years TEXT,
			row_index INTEGER,
			request_date TEXT,
			start_date TEXT,
			reference_num TEXT,
			queue_title TEXT,
			pdf_path TEXT,
			txt_path TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id INTEGER,
			section_name TEXT,
			content TEXT,
			FOREIGN KEY(request_id) REFERENCES requests(id)
		)`,
		`CREATE TABLE IF NOT EXISTS summary_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id INTEGER,
			row_order INTEGER,
			row_type TEXT,
			item_no TEXT,
			trans_date TEXT,
			description TEXT,
			trans_amount TEXT,
			non_mc_expense TEXT,
			allowable_expense TEXT,
			currency TEXT,
			exch_rate TEXT,
			cad_amount TEXT,
			label TEXT,
			FOREIGN KEY(request_id) REFERENCES requests(id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRequest inserts a request with its sections and summary items in
// one transaction and returns the new request id.
func (s *Store) SaveRequest(ctx context.Context, req Request, sections []detail.Section, items []detail.Item) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO requests (years, row_index, request_date, start_date, reference_num, queue_title, pdf_path, txt_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Years, req.RowIndex, req.RequestDate, req.StartDate,
		req.ReferenceNum, req.QueueTitle, req.PDFPath, req.TxtPath,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("store: inserting request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: reading request id: %w", err)
	}

	for _, sec := range sections {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sections (request_id, section_name, content) VALUES (?, ?, ?)`,
			id, sec.Name, sec.Content,
		); err != nil {
			return 0, fmt.Errorf("store: inserting section: %w", err)
		}
	}
	for _, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO summary_items (
				request_id, row_order, row_type, item_no, trans_date, description,
				trans_amount, non_mc_expense, allowable_expense, currency, exch_rate,
				cad_amount, label
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, it.RowOrder, it.RowType, it.ItemNo, it.TransDate, it.Description,
			it.TransAmount, it.NonMcGillExpense, it.AllowableExpense, it.Currency,
			it.ExchRate, it.CADAmount, it.Label,
		); err != nil {
			return 0, fmt.Errorf("store: inserting summary item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: committing: %w", err)
	}
	return id, nil
}

// Requests returns every stored request in insertion order.
func (s *Store) Requests(ctx context.Context) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, years, row_index, request_date, start_date, reference_num,
		        queue_title, pdf_path, txt_path, created_at
		 FROM requests ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: querying requests: %w", err)
	}
	defer rows.Close()

	var reqs []Request
	for rows.Next() {
		var r Request
		if err := rows.Scan(&r.ID, &r.Years, &r.RowIndex, &r.RequestDate,
			&r.StartDate, &r.ReferenceNum, &r.QueueTitle,
			&r.PDFPath, &r.TxtPath, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scanning request: %w", err)
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}

// Sections returns the stored sections for one request, in insertion
// order.
func (s *Store) Sections(ctx context.Context, requestID int64) ([]detail.Section, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT section_name, content FROM sections WHERE request_id = ? ORDER BY id`,
		requestID)
	if err != nil {
		return nil, fmt.Errorf("store: querying sections: %w", err)
	}
	defer rows.Close()

	var sections []detail.Section
	for rows.Next() {
		var sec detail.Section
		if err := rows.Scan(&sec.Name, &sec.Content); err != nil {
			return nil, fmt.Errorf("store: scanning section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// Items returns the stored summary items for one request, ordered by row
// position.
func (s *Store) Items(ctx context.Context, requestID int64) ([]detail.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_order, row_type, item_no, trans_date, description,
		        trans_amount, non_mc_expense, allowable_expense, currency,
		        exch_rate, cad_amount, label
		 FROM summary_items WHERE request_id = ? ORDER BY row_order`,
		requestID)
	if err != nil {
		return nil, fmt.Errorf("store: querying summary items: %w", err)
	}
	defer rows.Close()

	var items []detail.Item
	for rows.Next() {
		var it detail.Item
		if err := rows.Scan(&it.RowOrder, &it.RowType, &it.ItemNo, &it.TransDate,
			&it.Description, &it.TransAmount, &it.NonMcGillExpense,
			&it.AllowableExpense, &it.Currency, &it.ExchRate,
			&it.CADAmount, &it.Label); err != nil {
			return nil, fmt.Errorf("store: scanning summary item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
