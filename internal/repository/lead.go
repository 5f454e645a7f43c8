package repository

import "github.com/jackc/pgx/v5/pgxpool"

// LeadRepository resolves what is known about a lead: the contact name and
// the course recorded on its conversation card.
type LeadRepository struct {
	*ContactRepository
	*SummaryRepository
}

func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{
		ContactRepository: NewContactRepository(pool),
		SummaryRepository: NewSummaryRepository(pool),
	}
}
