package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sentinelpay/fraudlog/internal/fraud/entity"
	"github.com/sentinelpay/fraudlog/internal/pkg/pkgerror"
)

type InMemoryStore struct {
	mu           sync.RWMutex
	transactions map[string]entity.Transaction
	rules        map[string]entity.Rule
	activity     map[string][]int64 // account -> unix timestamps, ascending
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		transactions: make(map[string]entity.Transaction),
		rules:        make(map[string]entity.Rule),
		activity:     make(map[string][]int64),
	}
}

func (s *InMemoryStore) SaveTransaction(ctx context.Context, tx entity.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[tx.ID]; exists {
		return pkgerror.NewBusiness("transaction already exists", pkgerror.CodeConflict)
	}

	s.transactions[tx.ID] = tx

	return nil
}

func (s *InMemoryStore) UpdateTransaction(ctx context.Context, id string, fn func(tx *entity.Transaction)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return pkgerror.ErrNotFound
	}

	fn(&tx)
	s.transactions[id] = tx

	return nil
}

func (s *InMemoryStore) GetTransaction(ctx context.Context, id string) (entity.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return entity.Transaction{}, pkgerror.ErrNotFound
	}

	return tx, nil
}

// RecordActivity appends one timestamp to the account's history so velocity
// rules can count it later.
func (s *InMemoryStore) RecordActivity(ctx context.Context, account string, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activity[account] = append(s.activity[account], ts)

	return nil
}

// CountActivity returns how many recorded timestamps for the account fall in
// [since, until]. Entries older than since are pruned.
func (s *InMemoryStore) CountActivity(ctx context.Context, account string, since, until int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.activity[account]
	idx := sort.Search(len(history), func(i int) bool { return history[i] >= since })
	history = history[idx:]
	s.activity[account] = history

	count := 0
	for _, ts := range history {
		if ts <= until {
			count++
		}
	}

	return count, nil
}

func (s *InMemoryStore) CreateRule(ctx context.Context, rule entity.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.ID]; exists {
		return pkgerror.NewBusiness("rule already exists", pkgerror.CodeConflict)
	}

	s.rules[rule.ID] = rule

	return nil
}

func (s *InMemoryStore) GetRule(ctx context.Context, id string) (entity.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[id]
	if !ok {
		return entity.Rule{}, pkgerror.ErrNotFound
	}

	return rule, nil
}

func (s *InMemoryStore) UpdateRule(ctx context.Context, id string, fn func(rule *entity.Rule)) (entity.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[id]
	if !ok {
		return entity.Rule{}, pkgerror.ErrNotFound
	}

	fn(&rule)
	rule.ID = id
	s.rules[id] = rule

	return rule, nil
}

func (s *InMemoryStore) DeleteRule(ctx context.Context, id string) (entity.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[id]
	if !ok {
		return entity.Rule{}, pkgerror.ErrNotFound
	}

	delete(s.rules, id)

	return rule, nil
}

// ListRules returns all rules sorted by name for stable output.
func (s *InMemoryStore) ListRules(ctx context.Context) ([]entity.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]entity.Rule, 0, len(s.rules))
	for _, rule := range s.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name < rules[j].Name })

	return rules, nil
}
