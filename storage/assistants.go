// Package storage persists assistant configurations and their knowledge
// bases. Conversations are deliberately not stored: a chat session lives and
// dies with its screen.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"aide/model"
)

// Cipher protects the API key column at rest. config.EncryptionManager
// satisfies it; tests can pass a pass-through.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// AssistantStore handles assistant persistence over sqlite.
type AssistantStore struct {
	db     *sql.DB
	cipher Cipher
}

// NewAssistantStore opens (creating if needed) <dataDir>/assistants.db.
func NewAssistantStore(dataDir string, cipher Cipher) (*AssistantStore, error) {
	dbPath := filepath.Join(dataDir, "assistants.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &AssistantStore{db: db, cipher: cipher}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *AssistantStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assistants (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		instructions TEXT NOT NULL,
		provider TEXT NOT NULL,
		model_version TEXT NOT NULL,
		api_key BLOB NOT NULL,
		organization_id TEXT,
		max_tokens INTEGER NOT NULL,
		temperature REAL NOT NULL,
		welcome_message TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assistants_owner ON assistants(owner);

	CREATE TABLE IF NOT EXISTS knowledge_items (
		assistant_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (assistant_id, position)
	);
	CREATE INDEX IF NOT EXISTS idx_knowledge_assistant ON knowledge_items(assistant_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *AssistantStore) Close() error {
	return s.db.Close()
}

// Save creates or updates an assistant and replaces its knowledge base
// wholesale (delete-all-then-insert) in one transaction. A missing ID means
// create: the assistant gets a fresh UUID and creation timestamp.
func (s *AssistantStore) Save(a *model.Assistant) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	a.UpdatedAt = time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = a.UpdatedAt
	}

	encKey, err := s.cipher.Encrypt([]byte(a.Credentials.APIKey))
	if err != nil {
		return fmt.Errorf("failed to encrypt API key: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO assistants
			(id, owner, name, instructions, provider, model_version, api_key,
			 organization_id, max_tokens, temperature, welcome_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			owner = excluded.owner,
			name = excluded.name,
			instructions = excluded.instructions,
			provider = excluded.provider,
			model_version = excluded.model_version,
			api_key = excluded.api_key,
			organization_id = excluded.organization_id,
			max_tokens = excluded.max_tokens,
			temperature = excluded.temperature,
			welcome_message = excluded.welcome_message,
			updated_at = excluded.updated_at`,
		a.ID, a.Owner, a.Name, a.Instructions, a.Provider, a.ModelVersion, encKey,
		a.Credentials.OrganizationID, a.MaxTokens, a.Temperature, a.WelcomeMessage,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save assistant: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM knowledge_items WHERE assistant_id = ?`, a.ID); err != nil {
		return fmt.Errorf("failed to clear knowledge items: %w", err)
	}

	for i, item := range a.Knowledge {
		_, err := tx.Exec(`
			INSERT INTO knowledge_items (assistant_id, position, name, content)
			VALUES (?, ?, ?, ?)`,
			a.ID, i, item.Name, item.Content)
		if err != nil {
			return fmt.Errorf("failed to insert knowledge item %q: %w", item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}

	return nil
}

// Get loads one assistant with its knowledge base.
func (s *AssistantStore) Get(id string) (*model.Assistant, error) {
	row := s.db.QueryRow(`
		SELECT id, owner, name, instructions, provider, model_version, api_key,
		       organization_id, max_tokens, temperature, welcome_message, created_at, updated_at
		FROM assistants WHERE id = ?`, id)

	a, err := s.scanAssistant(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("assistant not found: %s", id)
		}
		return nil, err
	}

	items, err := s.loadKnowledge(a.ID)
	if err != nil {
		return nil, err
	}
	a.Knowledge = items

	return a, nil
}

// List returns all assistants for an owner, newest first, including their
// knowledge bases.
func (s *AssistantStore) List(owner string) ([]*model.Assistant, error) {
	rows, err := s.db.Query(`
		SELECT id, owner, name, instructions, provider, model_version, api_key,
		       organization_id, max_tokens, temperature, welcome_message, created_at, updated_at
		FROM assistants WHERE owner = ? ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list assistants: %w", err)
	}
	defer rows.Close()

	var assistants []*model.Assistant
	for rows.Next() {
		a, err := s.scanAssistant(rows)
		if err != nil {
			return nil, err
		}
		assistants = append(assistants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assistants: %w", err)
	}

	for _, a := range assistants {
		items, err := s.loadKnowledge(a.ID)
		if err != nil {
			return nil, err
		}
		a.Knowledge = items
	}

	return assistants, nil
}

// Delete removes an assistant and its knowledge items.
func (s *AssistantStore) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM knowledge_items WHERE assistant_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete knowledge items: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM assistants WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete assistant: %w", err)
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *AssistantStore) scanAssistant(row rowScanner) (*model.Assistant, error) {
	var a model.Assistant
	var encKey []byte
	var orgID, welcome sql.NullString

	err := row.Scan(&a.ID, &a.Owner, &a.Name, &a.Instructions, &a.Provider,
		&a.ModelVersion, &encKey, &orgID, &a.MaxTokens, &a.Temperature,
		&welcome, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	key, err := s.cipher.Decrypt(encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt API key for %s: %w", a.ID, err)
	}
	a.Credentials.APIKey = string(key)
	a.Credentials.OrganizationID = orgID.String
	a.WelcomeMessage = welcome.String

	return &a, nil
}

func (s *AssistantStore) loadKnowledge(assistantID string) ([]model.KnowledgeItem, error) {
	rows, err := s.db.Query(`
		SELECT name, content FROM knowledge_items
		WHERE assistant_id = ? ORDER BY position`, assistantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge items: %w", err)
	}
	defer rows.Close()

	var items []model.KnowledgeItem
	for rows.Next() {
		var item model.KnowledgeItem
		if err := rows.Scan(&item.Name, &item.Content); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
