package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"exam-eligibility/internal/eligibility"

	"github.com/lib/pq"
)

// PostgresSource reads exams from a table with columns
// (code text, label text, position int, data jsonb).
type PostgresSource struct {
	db       *sql.DB
	loadAll  string
	getByKey string
}

func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	t := pq.QuoteIdentifier(table)
	return &PostgresSource{
		db:       db,
		loadAll:  fmt.Sprintf(`SELECT code, label, data FROM %s ORDER BY position, code`, t),
		getByKey: fmt.Sprintf(`SELECT code, label, data FROM %s WHERE code = $1`, t),
	}
}

func (s *PostgresSource) LoadAll(ctx context.Context) ([]eligibility.ExamSource, error) {
	rows, err := s.db.QueryContext(ctx, s.loadAll)
	if err != nil {
		return nil, fmt.Errorf("query exams: %w", err)
	}
	defer rows.Close()

	exams := []eligibility.ExamSource{}
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exams: %w", err)
	}
	return exams, nil
}

func (s *PostgresSource) Get(ctx context.Context, code string) (eligibility.ExamSource, error) {
	exam, err := scanExam(s.db.QueryRowContext(ctx, s.getByKey, code))
	if errors.Is(err, sql.ErrNoRows) {
		return eligibility.ExamSource{}, fmt.Errorf("%w: %s", ErrExamNotFound, code)
	}
	return exam, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExam(row scanner) (eligibility.ExamSource, error) {
	var (
		exam  eligibility.ExamSource
		label sql.NullString
		data  []byte
	)
	if err := row.Scan(&exam.Code, &label, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exam, err
		}
		return exam, fmt.Errorf("scan exam: %w", err)
	}
	exam.Label = label.String
	exam.Data = data
	return exam, nil
}
