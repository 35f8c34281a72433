package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

const incidentColumns = `id, title, description, creation_date, status, priority, category, reporter_id, technician_id`

type incidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository instantiates a Postgres-backed repository.
func NewIncidentRepository(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepository{pool: pool}
}

func (r *incidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	const query = `
        INSERT INTO incidents (title, description, creation_date, status, priority, category, reporter_id, technician_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.CreationDate,
		string(incident.Status),
		incident.Priority,
		string(incident.Category),
		refID(incident.Reporter),
		refID(incident.AssignedTechnician),
	).Scan(&incident.ID)
}

func (r *incidentRepository) Save(ctx context.Context, incident *domain.Incident) error {
	const query = `
        UPDATE incidents SET title=$1, description=$2, creation_date=$3, status=$4, priority=$5,
            category=$6, reporter_id=$7, technician_id=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		incident.Title,
		incident.Description,
		incident.CreationDate,
		string(incident.Status),
		incident.Priority,
		string(incident.Category),
		refID(incident.Reporter),
		refID(incident.AssignedTechnician),
		incident.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *incidentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM incidents WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *incidentRepository) GetByID(ctx context.Context, id string) (*domain.Incident, error) {
	incident, err := scanIncident(r.pool.QueryRow(ctx, `SELECT `+incidentColumns+` FROM incidents WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return incident, nil
}

func (r *incidentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM incidents WHERE id=$1`, id)
	return err
}

func (r *incidentRepository) List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		clauses = append(clauses, fmt.Sprintf("UPPER(category)=UPPER($%d)", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM incidents WHERE %s ORDER BY seq`,
		incidentColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Incident{}
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *incident)
	}
	return result, rows.Err()
}

func scanIncident(row pgx.Row) (*domain.Incident, error) {
	var (
		incident     domain.Incident
		status       string
		category     string
		reporterID   *string
		technicianID *string
	)
	if err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.CreationDate,
		&status,
		&incident.Priority,
		&category,
		&reporterID,
		&technicianID,
	); err != nil {
		return nil, err
	}
	incident.Status = domain.IncidentStatus(status)
	incident.Category = domain.Category(category)
	incident.Reporter = refFromID(reporterID)
	incident.AssignedTechnician = refFromID(technicianID)
	return &incident, nil
}
