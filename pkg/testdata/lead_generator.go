// Package testdata generates realistic sample leads for local development
// and load testing.
package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jordanlanch/leadcrm/pkg/fieldschema"
	"github.com/jordanlanch/leadcrm/pkg/leads"
	"github.com/jordanlanch/leadcrm/pkg/status"
)

// GeneratorConfig configures lead generation parameters.
type GeneratorConfig struct {
	Count           int
	CreatedBy       string
	OrganizationID  string
	EmailChance     float64 // 0.0-1.0
	PhoneChance     float64
	HistoryMaxHops  int    // max status transitions per lead
	ApplicationType string // empty picks a random known type per lead
}

// DefaultConfig returns sensible defaults for local seeding.
func DefaultConfig(count int) GeneratorConfig {
	return GeneratorConfig{
		Count:          count,
		EmailChance:    0.8,
		PhoneChance:    0.9,
		HistoryMaxHops: 4,
	}
}

// Generator creates fake leads.
type Generator struct {
	faker *gofakeit.Faker
	rng   *rand.Rand
}

// NewGenerator creates a generator with the given seed. The same seed always
// produces the same data set.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Generate builds cfg.Count leads without persisting them.
func (g *Generator) Generate(cfg GeneratorConfig) []*leads.Lead {
	out := make([]*leads.Lead, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		out = append(out, g.one(cfg))
	}
	return out
}

// Seed persists cfg.Count generated leads through the store.
func (g *Generator) Seed(ctx context.Context, store leads.Store, cfg GeneratorConfig) (int, error) {
	created := 0
	for _, l := range g.Generate(cfg) {
		if err := store.Insert(ctx, l); err != nil {
			return created, fmt.Errorf("insert lead %d: %w", created, err)
		}
		created++
	}
	return created, nil
}

func (g *Generator) one(cfg GeneratorConfig) *leads.Lead {
	appType := cfg.ApplicationType
	if appType == "" {
		types := fieldschema.Types()
		appType = types[g.rng.Intn(len(types))]
	}

	l := &leads.Lead{
		FirstName:       g.faker.FirstName(),
		LastName:        g.faker.LastName(),
		ApplicationType: appType,
		Lawsuit:         appType,
		Status:          status.Initial,
		CreatedBy:       cfg.CreatedBy,
		OrganizationID:  cfg.OrganizationID,
		CreatedAt:       g.faker.DateRange(time.Now().Add(-30*24*time.Hour), time.Now()).UTC(),
	}
	if g.rng.Float64() < cfg.EmailChance {
		l.Email = g.faker.Email()
	}
	if g.rng.Float64() < cfg.PhoneChance {
		l.Phone = "+1" + g.faker.Numerify("##########")
	}
	l.DOB = g.faker.DateRange(
		time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	).Format("2006-01-02")
	l.Address = g.faker.Street() + ", " + g.faker.City() + ", " + g.faker.StateAbr()

	l.Fields = g.fieldsFor(appType)
	g.walkHistory(l, cfg)
	return l
}

// fieldsFor fills a subset of the application type's dynamic fields.
func (g *Generator) fieldsFor(appType string) []leads.Field {
	defs, ok := fieldschema.Get(appType)
	if !ok {
		return nil
	}
	var fields []leads.Field
	for _, d := range defs {
		if !d.Required && g.rng.Float64() < 0.4 {
			continue
		}
		var value string
		switch d.Type {
		case "date":
			value = g.faker.DateRange(time.Now().Add(-5*365*24*time.Hour), time.Now()).Format("2006-01-02")
		case "radio":
			value = []string{"yes", "no"}[g.rng.Intn(2)]
		case "email":
			value = g.faker.Email()
		case "phone":
			value = "+1" + g.faker.Numerify("##########")
		default:
			value = g.faker.Sentence(3)
		}
		fields = append(fields, leads.Field{Key: d.Key, Value: value})
	}
	return fields
}

// walkHistory moves the lead through a few random transitions so seeded
// data exercises the history views. The status and last history entry stay
// consistent.
func (g *Generator) walkHistory(l *leads.Lead, cfg GeneratorConfig) {
	if cfg.HistoryMaxHops <= 0 {
		return
	}
	hops := g.rng.Intn(cfg.HistoryMaxHops + 1)
	at := l.CreatedAt
	for i := 0; i < hops; i++ {
		next := status.All[g.rng.Intn(len(status.All))]
		at = at.Add(time.Duration(1+g.rng.Intn(48)) * time.Hour)
		l.StatusHistory = append(l.StatusHistory, leads.HistoryEntry{
			FromStatus: l.Status,
			ToStatus:   next,
			Notes:      g.faker.Sentence(5),
			ChangedBy:  cfg.CreatedBy,
			Timestamp:  at,
		})
		l.Status = next
	}
}
