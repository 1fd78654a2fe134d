package census

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed shift-record repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const recordCols = `record_key, ward_id, census_date, shift, status, rejection_reason,
	patient_census, nurse_manager, rn, pn, wc,
	new_admit, transfer_in, refer_in,
	discharge, transfer_out, refer_out, dead,
	available, unavailable, planned_discharge,
	comment, recorder_first_name, recorder_last_name,
	created_by, updated_by, approved_by, rejected_by,
	created_at, updated_at, finalized_at, approved_at, rejected_at`

func scanRecord(row pgx.Row) (*ShiftCensusRecord, error) {
	var r ShiftCensusRecord
	err := row.Scan(
		&r.Key, &r.WardID, &r.Date, &r.Shift, &r.Status, &r.RejectionReason,
		&r.PatientCensus, &r.NurseManager, &r.RN, &r.PN, &r.WC,
		&r.NewAdmit, &r.TransferIn, &r.ReferIn,
		&r.Discharge, &r.TransferOut, &r.ReferOut, &r.Dead,
		&r.Available, &r.Unavailable, &r.PlannedDischarge,
		&r.Comment, &r.RecorderFirstName, &r.RecorderLastName,
		&r.CreatedBy, &r.UpdatedBy, &r.ApprovedBy, &r.RejectedBy,
		&r.CreatedAt, &r.UpdatedAt, &r.FinalizedAt, &r.ApprovedAt, &r.RejectedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *repoPG) Get(ctx context.Context, key string) (*ShiftCensusRecord, error) {
	return scanRecord(r.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM shift_record WHERE record_key = $1`, key))
}

func (r *repoPG) Insert(ctx context.Context, rec *ShiftCensusRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shift_record (
			record_key, ward_id, census_date, shift, status, rejection_reason,
			patient_census, nurse_manager, rn, pn, wc,
			new_admit, transfer_in, refer_in,
			discharge, transfer_out, refer_out, dead,
			available, unavailable, planned_discharge,
			comment, recorder_first_name, recorder_last_name,
			created_by, finalized_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)`,
		rec.Key, rec.WardID, rec.Date, rec.Shift, rec.Status, rec.RejectionReason,
		rec.PatientCensus, rec.NurseManager, rec.RN, rec.PN, rec.WC,
		rec.NewAdmit, rec.TransferIn, rec.ReferIn,
		rec.Discharge, rec.TransferOut, rec.ReferOut, rec.Dead,
		rec.Available, rec.Unavailable, rec.PlannedDischarge,
		rec.Comment, rec.RecorderFirstName, rec.RecorderLastName,
		rec.CreatedBy, rec.FinalizedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

const editableSet = `
	patient_census=$2, nurse_manager=$3, rn=$4, pn=$5, wc=$6,
	new_admit=$7, transfer_in=$8, refer_in=$9,
	discharge=$10, transfer_out=$11, refer_out=$12, dead=$13,
	available=$14, unavailable=$15, planned_discharge=$16,
	comment=$17, recorder_first_name=$18, recorder_last_name=$19,
	updated_by=$20, updated_at=NOW()`

func editableArgs(rec *ShiftCensusRecord) []interface{} {
	return []interface{}{
		rec.Key,
		rec.PatientCensus, rec.NurseManager, rec.RN, rec.PN, rec.WC,
		rec.NewAdmit, rec.TransferIn, rec.ReferIn,
		rec.Discharge, rec.TransferOut, rec.ReferOut, rec.Dead,
		rec.Available, rec.Unavailable, rec.PlannedDischarge,
		rec.Comment, rec.RecorderFirstName, rec.RecorderLastName,
		rec.UpdatedBy,
	}
}

func (r *repoPG) UpdateDraft(ctx context.Context, rec *ShiftCensusRecord) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shift_record SET `+editableSet+` WHERE record_key = $1 AND status = 'draft'`,
		editableArgs(rec)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *repoPG) Promote(ctx context.Context, rec *ShiftCensusRecord, from Status) error {
	args := append(editableArgs(rec), rec.FinalizedAt, from)
	tag, err := r.pool.Exec(ctx,
		`UPDATE shift_record SET `+editableSet+`,
			status='final', finalized_at=$21,
			rejection_reason=NULL, rejected_by=NULL, rejected_at=NULL
		WHERE record_key = $1 AND status = $22`,
		args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *repoPG) Approve(ctx context.Context, key, actorID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shift_record SET status='approved', approved_by=$2, approved_at=$3, updated_at=NOW()
		WHERE record_key = $1 AND status = 'final'`,
		key, actorID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *repoPG) Reject(ctx context.Context, key, actorID, reason string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE shift_record SET status='rejected', rejected_by=$2, rejection_reason=$3, rejected_at=$4, updated_at=NOW()
		WHERE record_key = $1 AND status = 'final'`,
		key, actorID, reason, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *repoPG) LatestApproved(ctx context.Context, wardID string, date time.Time, shift Shift) (*ShiftCensusRecord, error) {
	return scanRecord(r.pool.QueryRow(ctx, `
		SELECT `+recordCols+` FROM shift_record
		WHERE ward_id = $1 AND census_date = $2 AND shift = $3 AND status = 'approved'
		ORDER BY updated_at DESC LIMIT 1`,
		NormalizeWardID(wardID), DateOnly(date), shift))
}

func (r *repoPG) WardsWithApproved(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ward_id FROM shift_record
		WHERE census_date = $1 AND status = 'approved'
		ORDER BY ward_id`,
		DateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var wards []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		wards = append(wards, w)
	}
	return wards, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
