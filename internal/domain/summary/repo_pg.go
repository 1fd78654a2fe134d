package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardops/wardops/internal/domain/census"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed daily-summary repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const summaryCols = `ward_id, census_date,
	morning_form_id, morning_patient_census, morning_nursing_total, morning_admissions_total, morning_discharges_total, morning_nurse_ratio,
	night_form_id, night_patient_census, night_nursing_total, night_admissions_total, night_discharges_total, night_nurse_ratio,
	combined_nursing_total, combined_admissions_total, combined_discharges_total,
	all_forms_approved, created_at, updated_at`

func scanSummary(row pgx.Row) (*DailySummary, error) {
	var s DailySummary
	var mFormID, nFormID *string
	var mCensus, mNursing, mAdm, mDis *int
	var mRatio *float64
	var nCensus, nNursing, nAdm, nDis *int
	var nRatio *float64
	var cNursing, cAdm, cDis *int

	err := row.Scan(
		&s.WardID, &s.Date,
		&mFormID, &mCensus, &mNursing, &mAdm, &mDis, &mRatio,
		&nFormID, &nCensus, &nNursing, &nAdm, &nDis, &nRatio,
		&cNursing, &cAdm, &cDis,
		&s.AllFormsApproved, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if mFormID != nil {
		s.Morning = &ShiftSection{FormID: *mFormID, PatientCensus: *mCensus,
			NursingTotal: *mNursing, AdmissionsTotal: *mAdm, DischargesTotal: *mDis, NurseRatio: *mRatio}
	}
	if nFormID != nil {
		s.Night = &ShiftSection{FormID: *nFormID, PatientCensus: *nCensus,
			NursingTotal: *nNursing, AdmissionsTotal: *nAdm, DischargesTotal: *nDis, NurseRatio: *nRatio}
	}
	if cNursing != nil {
		s.Combined = &Totals{NursingTotal: *cNursing, AdmissionsTotal: *cAdm, DischargesTotal: *cDis}
	}
	return &s, nil
}

func (r *repoPG) Get(ctx context.Context, wardID string, date time.Time) (*DailySummary, error) {
	return scanSummary(r.pool.QueryRow(ctx,
		`SELECT `+summaryCols+` FROM daily_summary WHERE ward_id = $1 AND census_date = $2`,
		census.NormalizeWardID(wardID), census.DateOnly(date)))
}

func sectionArgs(sec *ShiftSection) []interface{} {
	if sec == nil {
		return []interface{}{nil, nil, nil, nil, nil, nil}
	}
	return []interface{}{sec.FormID, sec.PatientCensus, sec.NursingTotal,
		sec.AdmissionsTotal, sec.DischargesTotal, sec.NurseRatio}
}

func (r *repoPG) Create(ctx context.Context, s *DailySummary) error {
	args := []interface{}{s.WardID, s.Date}
	args = append(args, sectionArgs(s.Morning)...)
	args = append(args, sectionArgs(s.Night)...)
	if s.Combined != nil {
		args = append(args, s.Combined.NursingTotal, s.Combined.AdmissionsTotal, s.Combined.DischargesTotal)
	} else {
		args = append(args, nil, nil, nil)
	}
	args = append(args, s.AllFormsApproved)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO daily_summary (`+summaryColsInsert+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		args...)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

const summaryColsInsert = `ward_id, census_date,
	morning_form_id, morning_patient_census, morning_nursing_total, morning_admissions_total, morning_discharges_total, morning_nurse_ratio,
	night_form_id, night_patient_census, night_nursing_total, night_admissions_total, night_discharges_total, night_nurse_ratio,
	combined_nursing_total, combined_admissions_total, combined_discharges_total,
	all_forms_approved`

func (r *repoPG) PatchShift(ctx context.Context, wardID string, date time.Time, shift census.Shift, sec *ShiftSection, expectedFormID *string) error {
	prefix := "morning"
	if shift == census.ShiftNight {
		prefix = "night"
	}
	query := fmt.Sprintf(`
		UPDATE daily_summary SET
			%[1]s_form_id=$3, %[1]s_patient_census=$4, %[1]s_nursing_total=$5,
			%[1]s_admissions_total=$6, %[1]s_discharges_total=$7, %[1]s_nurse_ratio=$8,
			updated_at=NOW()
		WHERE ward_id = $1 AND census_date = $2 AND %[1]s_form_id IS NOT DISTINCT FROM $9`, prefix)

	tag, err := r.pool.Exec(ctx, query,
		census.NormalizeWardID(wardID), census.DateOnly(date),
		sec.FormID, sec.PatientCensus, sec.NursingTotal,
		sec.AdmissionsTotal, sec.DischargesTotal, sec.NurseRatio,
		expectedFormID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStale
	}
	return nil
}

func (r *repoPG) SetTotals(ctx context.Context, wardID string, date time.Time, totals Totals, allApproved bool) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE daily_summary SET
			combined_nursing_total=$3, combined_admissions_total=$4, combined_discharges_total=$5,
			all_forms_approved=$6, updated_at=NOW()
		WHERE ward_id = $1 AND census_date = $2`,
		census.NormalizeWardID(wardID), census.DateOnly(date),
		totals.NursingTotal, totals.AdmissionsTotal, totals.DischargesTotal, allApproved)
	return err
}
