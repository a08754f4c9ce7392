package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethan-stone/charging-session-cost-calculation/internal/models"
)

type memStore struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*models.Session
	readings []models.EnergyReading
	statuses []models.ConnectorStatusEvent
	rates    map[string]models.Rate
	billing  map[string]models.BillingRecord
	raw      []models.RawEvent

	upsertErr error
}

func newMemStore() *memStore {
	return &memStore{
		sessions: map[string]*models.Session{},
		rates:    map[string]models.Rate{},
		billing:  map[string]models.BillingRecord{},
	}
}

func (m *memStore) nextId(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) Start(_ context.Context, s models.Session) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.SessionId = m.nextId("session")
	m.sessions[s.SessionId] = &s
	return s.SessionId, nil
}

func (m *memStore) find(match func(*models.Session) bool) *models.Session {
	var best *models.Session
	for _, s := range m.sessions {
		if match(s) && (best == nil || s.StartedAt.After(best.StartedAt)) {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

func (m *memStore) FindByTx(_ context.Context, cp string, tx int) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(s *models.Session) bool { return s.ChargePointId == cp && s.TransactionId == tx }), nil
}

func (m *memStore) FindOpenByConnector(_ context.Context, cp string, connectorId int) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(func(s *models.Session) bool {
		return s.ChargePointId == cp && s.ConnectorId == connectorId && s.EndedAt == nil
	}), nil
}

func (m *memStore) End(_ context.Context, sessionId string, endedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionId]; ok && s.EndedAt == nil {
		s.EndedAt = &endedAt
	}
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) SetCost(_ context.Context, sessionId string, cost int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionId]; ok {
		s.Cost = &cost
	}
	return nil
}

func (m *memStore) InsertReading(_ context.Context, r models.EnergyReading) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ReadingId = m.nextId("reading")
	m.readings = append(m.readings, r)
	return r.ReadingId, nil
}

func (m *memStore) InsertStatusEvent(_ context.Context, ev models.ConnectorStatusEvent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.EventId = m.nextId("status")
	m.statuses = append(m.statuses, ev)
	return ev.EventId, nil
}

func (m *memStore) ListReadings(_ context.Context, sessionId string) ([]models.EnergyReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.EnergyReading
	for _, r := range m.readings {
		if r.SessionId == sessionId {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *memStore) ListStatusEvents(_ context.Context, sessionId string) ([]models.ConnectorStatusEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ConnectorStatusEvent
	for _, ev := range m.statuses {
		if ev.SessionId == sessionId {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *memStore) Create(_ context.Context, rate models.Rate) (models.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rate.RateId == "" {
		rate.RateId = m.nextId("rate")
	}
	m.rates[rate.RateId] = rate
	return rate, nil
}

func (m *memStore) Get(_ context.Context, rateId string) (*models.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rates[rateId]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memStore) InsertRaw(_ context.Context, ev models.RawEvent) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.Id = int64(len(m.raw) + 1)
	m.raw = append(m.raw, ev)
	return ev.Id, nil
}

// memLedger is kept apart from memStore because BillingLedger.Get and RateStore.Get
// share a method name.
type memLedger struct {
	store *memStore
}

func (l memLedger) Upsert(_ context.Context, rec models.BillingRecord) (models.BillingRecord, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	if l.store.upsertErr != nil {
		return models.BillingRecord{}, l.store.upsertErr
	}
	l.store.billing[rec.SessionId] = rec
	return rec, nil
}

func (l memLedger) Get(_ context.Context, sessionId string) (*models.BillingRecord, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	rec, ok := l.store.billing[sessionId]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type fakePublisher struct {
	err       error
	published []models.BillingRecord
}

func (p *fakePublisher) Publish(_ context.Context, rec models.BillingRecord) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, rec)
	return nil
}
