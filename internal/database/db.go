package database

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AKI-NANA/ebay-price-solver/internal/pricing"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps the SQLite database
type DB struct {
	*sql.DB
}

// Account represents an eBay seller account for data tracking
type Account struct {
	ID            int64      `json:"id"`
	AccountKey    string     `json:"accountKey"`    // Unique key: "username_env_marketplace"
	DisplayName   string     `json:"displayName"`   // Human readable: "username Production"
	EbayUserID    string     `json:"ebayUserId"`    // eBay's immutable user ID
	EbayUsername  string     `json:"ebayUsername"`  // eBay username
	Environment   string     `json:"environment"`   // "production" or "sandbox"
	MarketplaceID string     `json:"marketplaceId"` // "EBAY_US"
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// CalculationRecord is one persisted pricing run: the inputs, the full result,
// and the headline figures promoted to columns for listing without unmarshaling.
type CalculationRecord struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"accountId"`
	Success      bool      `json:"success"`
	ErrorKind    string    `json:"errorKind,omitempty"`
	Category     string    `json:"category"`
	Destination  string    `json:"destination"`
	ProductPrice float64   `json:"productPrice"`
	Margin       float64   `json:"margin"`
	InputsJSON   string    `json:"-"`
	ResultJSON   string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`

	Inputs *pricing.CostInputs        `json:"inputs,omitempty"`
	Result *pricing.CalculationResult `json:"result,omitempty"`
}

// Open opens or creates the database
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db}, nil
}

// GetOrCreateAccount gets an account by key or creates it if it doesn't exist
func (db *DB) GetOrCreateAccount(accountKey, displayName, environment, marketplaceID string) (*Account, error) {
	// Try to get existing
	var acc Account
	err := db.QueryRow(`
		SELECT id, account_key, display_name, COALESCE(ebay_user_id, ''), COALESCE(ebay_username, ''),
		       environment, marketplace_id, created_at, updated_at
		FROM accounts
		WHERE account_key = ?
	`, accountKey).Scan(&acc.ID, &acc.AccountKey, &acc.DisplayName, &acc.EbayUserID, &acc.EbayUsername,
		&acc.Environment, &acc.MarketplaceID, &acc.CreatedAt, &acc.UpdatedAt)

	if err == nil {
		return &acc, nil
	}

	if err != sql.ErrNoRows {
		return nil, err
	}

	// Create new
	result, err := db.Exec(`
		INSERT INTO accounts (account_key, display_name, environment, marketplace_id)
		VALUES (?, ?, ?, ?)
	`, accountKey, displayName, environment, marketplaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	acc.ID = id
	acc.AccountKey = accountKey
	acc.DisplayName = displayName
	acc.Environment = environment
	acc.MarketplaceID = marketplaceID
	acc.CreatedAt = time.Now()
	acc.UpdatedAt = time.Now()

	return &acc, nil
}

// UpdateAccountWithEbayInfo updates an account with eBay user information after OAuth
func (db *DB) UpdateAccountWithEbayInfo(accountID int64, ebayUserID, ebayUsername string) error {
	_, err := db.Exec(`
		UPDATE accounts
		SET ebay_user_id = ?, ebay_username = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, ebayUserID, ebayUsername, accountID)
	return err
}

// GetAccounts returns all tracked accounts
func (db *DB) GetAccounts() ([]Account, error) {
	rows, err := db.Query(`
		SELECT id, account_key, display_name, COALESCE(ebay_user_id, ''), COALESCE(ebay_username, ''),
		       environment, marketplace_id, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var acc Account
		err := rows.Scan(&acc.ID, &acc.AccountKey, &acc.DisplayName, &acc.EbayUserID, &acc.EbayUsername,
			&acc.Environment, &acc.MarketplaceID, &acc.CreatedAt, &acc.UpdatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// GetAccountByKey retrieves an account by its unique key
func (db *DB) GetAccountByKey(accountKey string) (*Account, error) {
	var acc Account
	err := db.QueryRow(`
		SELECT id, account_key, display_name, COALESCE(ebay_user_id, ''), COALESCE(ebay_username, ''),
		       environment, marketplace_id, created_at, updated_at
		FROM accounts
		WHERE account_key = ?
	`, accountKey).Scan(&acc.ID, &acc.AccountKey, &acc.DisplayName, &acc.EbayUserID, &acc.EbayUsername,
		&acc.Environment, &acc.MarketplaceID, &acc.CreatedAt, &acc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// SaveCalculation persists a pricing run, successful or not, as the audit
// record the engine itself never keeps.
func (db *DB) SaveCalculation(accountID int64, inputs pricing.CostInputs, result *pricing.CalculationResult) (*CalculationRecord, error) {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal inputs: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	res, err := db.Exec(`
		INSERT INTO calculations (account_id, success, error_kind, category, destination,
		                          product_price, margin, inputs_json, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, accountID, result.Success, string(result.Error), inputs.Category, inputs.Destination,
		result.ProductPrice, result.ProfitMarginNoRefund, string(inputsJSON), string(resultJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to save calculation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &CalculationRecord{
		ID:           id,
		AccountID:    accountID,
		Success:      result.Success,
		ErrorKind:    string(result.Error),
		Category:     inputs.Category,
		Destination:  inputs.Destination,
		ProductPrice: result.ProductPrice,
		Margin:       result.ProfitMarginNoRefund,
		CreatedAt:    time.Now(),
	}, nil
}

// GetCalculations returns recent calculation records for an account,
// newest first, without the full JSON payloads.
func (db *DB) GetCalculations(accountID int64, limit int) ([]CalculationRecord, error) {
	rows, err := db.Query(`
		SELECT id, account_id, success, COALESCE(error_kind, ''), category, destination,
		       product_price, margin, created_at
		FROM calculations
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []CalculationRecord
	for rows.Next() {
		var rec CalculationRecord
		err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Success, &rec.ErrorKind,
			&rec.Category, &rec.Destination, &rec.ProductPrice, &rec.Margin, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetCalculation retrieves one record with its full inputs and result.
func (db *DB) GetCalculation(id int64) (*CalculationRecord, error) {
	var rec CalculationRecord
	err := db.QueryRow(`
		SELECT id, account_id, success, COALESCE(error_kind, ''), category, destination,
		       product_price, margin, inputs_json, result_json, created_at
		FROM calculations
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.AccountID, &rec.Success, &rec.ErrorKind,
		&rec.Category, &rec.Destination, &rec.ProductPrice, &rec.Margin,
		&rec.InputsJSON, &rec.ResultJSON, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var inputs pricing.CostInputs
	if err := json.Unmarshal([]byte(rec.InputsJSON), &inputs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inputs for calculation %d: %w", id, err)
	}
	var result pricing.CalculationResult
	if err := json.Unmarshal([]byte(rec.ResultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result for calculation %d: %w", id, err)
	}
	rec.Inputs = &inputs
	rec.Result = &result
	return &rec, nil
}

// Setting represents an application setting (key-value pair)
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetSetting retrieves one setting by key; nil if unset.
func (db *DB) GetSetting(key string) (*Setting, error) {
	var s Setting
	err := db.QueryRow(`
		SELECT key, value, updated_at FROM settings WHERE key = ?
	`, key).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSetting upserts a setting value
func (db *DB) UpdateSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// SaveToken stores an encrypted OAuth token blob for an account
func (db *DB) SaveToken(accountID int64, encrypted []byte) error {
	_, err := db.Exec(`
		INSERT INTO tokens (account_id, token)
		VALUES (?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			token = excluded.token,
			updated_at = CURRENT_TIMESTAMP
	`, accountID, encrypted)
	return err
}

// LoadToken retrieves the encrypted token blob for an account; nil if absent.
func (db *DB) LoadToken(accountID int64) ([]byte, error) {
	var token []byte
	err := db.QueryRow(`SELECT token FROM tokens WHERE account_id = ?`, accountID).Scan(&token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}
