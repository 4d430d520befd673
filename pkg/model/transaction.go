package model

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dd0wney/cluso-conduit/pkg/logging"
	"github.com/dd0wney/cluso-conduit/pkg/wal"
)

// ParameterWrite is one buffered parameter assignment.
type ParameterWrite struct {
	TxID    uint64    `json:"tx"`
	Element ElementID `json:"element"`
	Name    string    `json:"name"`
	Value   string    `json:"value"`
}

type commitRecord struct {
	TxID   uint64 `json:"tx"`
	Writes int    `json:"writes"`
}

// Transaction buffers parameter writes until Commit.
// Nothing is visible to readers of the model before Commit returns.
type Transaction struct {
	m          *Model
	id         uint64
	active     bool
	committed  bool
	rolledBack bool
	writes     []ParameterWrite
	mu         sync.Mutex
}

// Begin starts a new transaction.
func (m *Model) Begin() (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrModelClosed
	}
	m.nextTxID++
	return &Transaction{m: m, id: m.nextTxID, active: true}, nil
}

// ID returns the transaction ID.
func (tx *Transaction) ID() uint64 {
	return tx.id
}

// Pending returns the number of buffered writes.
func (tx *Transaction) Pending() int {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return len(tx.writes)
}

// SetParameter buffers an assignment to an already-defined parameter.
func (tx *Transaction) SetParameter(id ElementID, name, value string) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if !tx.active {
		return ErrTransactionNotActive
	}

	if _, err := tx.m.Parameter(id, name); err != nil {
		return NewError("SetParameter").Element(id).Parameter(name).Cause(causeOf(err)).Err()
	}

	tx.writes = append(tx.writes, ParameterWrite{TxID: tx.id, Element: id, Name: name, Value: value})
	return nil
}

// Commit journals and applies every buffered write atomically.
// A journal failure leaves the model unchanged and ends the transaction.
func (tx *Transaction) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed || tx.rolledBack {
		return ErrTransactionAlreadyEnded
	}
	if !tx.active {
		return ErrTransactionNotActive
	}

	m := tx.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		tx.end(false)
		return ErrModelClosed
	}

	if m.journal != nil && len(tx.writes) > 0 {
		if err := m.journalWrites(tx.id, tx.writes); err != nil {
			tx.end(false)
			return NewError("Commit").Context(fmt.Sprintf("tx %d", tx.id)).Cause(err).Err()
		}
	}

	for _, w := range tx.writes {
		m.elements[w.Element].Parameters[w.Name] = w.Value
	}
	m.stats.Commits++
	m.stats.ParameterWrites += uint64(len(tx.writes))

	tx.end(true)
	return nil
}

// Rollback discards buffered writes. It is a no-op once the transaction has ended.
func (tx *Transaction) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if !tx.active {
		return nil
	}
	tx.end(false)
	return nil
}

func (tx *Transaction) end(committed bool) {
	tx.active = false
	tx.committed = committed
	tx.rolledBack = !committed
	if !committed {
		tx.writes = nil
	}
}

// Update runs fn inside a transaction. The transaction commits when fn returns nil
// and rolls back when fn returns an error or panics.
func (m *Model) Update(fn func(tx *Transaction) error) (err error) {
	tx, err := m.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// journalWrites appends the writes followed by a commit marker. Caller holds m.mu.
func (m *Model) journalWrites(txID uint64, writes []ParameterWrite) error {
	for _, w := range writes {
		data, err := json.Marshal(w)
		if err != nil {
			return err
		}
		if _, err := m.journal.Append(wal.OpSetParameter, data); err != nil {
			return err
		}
	}

	data, err := json.Marshal(commitRecord{TxID: txID, Writes: len(writes)})
	if err != nil {
		return err
	}
	if _, err := m.journal.Append(wal.OpCommit, data); err != nil {
		return err
	}

	m.logger.Debug("transaction journaled", logging.Uint64("tx", txID), logging.Count(len(writes)))
	return nil
}

// causeOf unwraps a ModelError to its sentinel so callers see one level of context.
func causeOf(err error) error {
	if me, ok := err.(*ModelError); ok && me.Cause != nil {
		return me.Cause
	}
	return err
}
