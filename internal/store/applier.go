package store

// applier.go implements the apply collaborators for the import operations.
//
// Create inserts one row per record. Update resolves the client by its key
// field, diffs the provided columns for previews, and issues a dynamic
// UPDATE for commits. Both treat every row independently: a failure is
// reported on that row's outcome and affects nothing else.

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/clientimport/internal/core"
	"github.com/JonMunkholm/clientimport/internal/csv"
)

// Applier returns the apply collaborator for an operation definition.
// Definitions with a key field update existing clients; the rest insert.
func (s *Store) Applier(def core.OperationDefinition) core.Applier {
	validator := core.NewRowValidator(def.Specs)
	if def.KeyField != "" {
		return &updateApplier{pool: s.pool, def: def, validator: validator}
	}
	return &createApplier{pool: s.pool, def: def, validator: validator}
}

// ============================================================================
// Create
// ============================================================================

type createApplier struct {
	pool      *pgxpool.Pool
	def       core.OperationDefinition
	validator *core.RowValidator
}

func (a *createApplier) ValidateAndPreview(ctx context.Context, rec csv.Record) core.RowOutcome {
	if result := a.validator.ValidateRecord(rec); !result.Valid {
		return core.RowOutcome{Error: result.Summary()}
	}

	incoming := providedValues(a.validator, a.def.Specs, "", rec)

	// The unique index catches this on commit; checking here gives the
	// preview the same verdict the commit would reach.
	if email := incoming["email"]; email != "" {
		taken, err := a.emailTaken(ctx, email)
		if err != nil {
			return core.RowOutcome{Error: dbErrorMessage(err)}
		}
		if taken {
			return core.RowOutcome{Error: fmt.Sprintf("duplicate key: a client with email %q already exists", email)}
		}
	}

	return core.RowOutcome{
		Success: true,
		Preview: &core.Preview{Action: "create", Incoming: incoming},
	}
}

func (a *createApplier) ValidateAndApply(ctx context.Context, rec csv.Record) core.RowOutcome {
	if result := a.validator.ValidateRecord(rec); !result.Valid {
		return core.RowOutcome{Error: result.Summary()}
	}

	cols := make([]string, len(a.def.Specs))
	vals := make([]any, len(a.def.Specs))
	for i, spec := range a.def.Specs {
		cols[i] = spec.Column
		vals[i] = sqlValue(a.validator.NormalizedValue(rec, spec), spec)
	}

	var id pgtype.UUID
	query := buildInsertQuery(clientsTable, cols)
	if err := a.pool.QueryRow(ctx, query, vals...).Scan(&id); err != nil {
		return core.RowOutcome{Error: dbErrorMessage(err)}
	}

	return core.RowOutcome{Success: true, RecordID: core.PgUUIDToString(id)}
}

func (a *createApplier) emailTaken(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := a.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM clients WHERE email = $1)", email).Scan(&exists)
	return exists, err
}

// ============================================================================
// Update
// ============================================================================

type updateApplier struct {
	pool      *pgxpool.Pool
	def       core.OperationDefinition
	validator *core.RowValidator
}

func (a *updateApplier) keySpec() core.FieldSpec {
	spec, _ := a.def.Spec(a.def.KeyField)
	return spec
}

func (a *updateApplier) ValidateAndPreview(ctx context.Context, rec csv.Record) core.RowOutcome {
	if result := a.validator.ValidateRecord(rec); !result.Valid {
		return core.RowOutcome{Error: result.Summary()}
	}

	key := a.keySpec()
	id := canonicalValue(a.validator.NormalizedValue(rec, key), key)
	incoming := providedValues(a.validator, a.def.Specs, a.def.KeyField, rec)

	current, err := a.fetchCurrent(ctx, id, incoming)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.RowOutcome{Error: "client not found: " + id}
		}
		return core.RowOutcome{Error: dbErrorMessage(err)}
	}

	return core.RowOutcome{
		Success: true,
		Preview: &core.Preview{
			Action:   "update",
			Current:  current,
			Incoming: incoming,
			Changed:  changedColumns(current, incoming),
		},
	}
}

func (a *updateApplier) ValidateAndApply(ctx context.Context, rec csv.Record) core.RowOutcome {
	if result := a.validator.ValidateRecord(rec); !result.Valid {
		return core.RowOutcome{Error: result.Summary()}
	}

	key := a.keySpec()
	id := canonicalValue(a.validator.NormalizedValue(rec, key), key)

	var cols []string
	var vals []any
	for _, spec := range a.def.Specs {
		if spec.Name == a.def.KeyField || !rec.Has(spec.Name) {
			continue
		}
		raw := a.validator.NormalizedValue(rec, spec)
		if raw == "" {
			continue
		}
		cols = append(cols, spec.Column)
		vals = append(vals, sqlValue(raw, spec))
	}

	if len(cols) == 0 {
		// Nothing to change; still verify the client exists.
		var exists bool
		err := a.pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM clients WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			return core.RowOutcome{Error: dbErrorMessage(err)}
		}
		if !exists {
			return core.RowOutcome{Error: "client not found: " + id}
		}
		return core.RowOutcome{Success: true, RecordID: id}
	}

	vals = append(vals, id)
	query := buildUpdateQuery(clientsTable, cols)
	tag, err := a.pool.Exec(ctx, query, vals...)
	if err != nil {
		return core.RowOutcome{Error: dbErrorMessage(err)}
	}
	if tag.RowsAffected() == 0 {
		return core.RowOutcome{Error: "client not found: " + id}
	}

	return core.RowOutcome{Success: true, RecordID: id}
}

// fetchCurrent loads the stored values for the provided columns of one
// client. Selecting id alongside them makes the lookup double as the
// existence check, reported as pgx.ErrNoRows.
func (a *updateApplier) fetchCurrent(ctx context.Context, id string, incoming map[string]string) (map[string]string, error) {
	names := make([]string, 0, len(incoming))
	for name := range incoming {
		names = append(names, name)
	}
	sort.Strings(names)

	quoted := make([]string, 0, len(names)+1)
	quoted = append(quoted, quoteIdentifier("id"))
	for _, name := range names {
		spec, _ := a.def.Spec(name)
		quoted = append(quoted, quoteIdentifier(spec.Column))
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1",
		strings.Join(quoted, ", "),
		quoteIdentifier(clientsTable),
	)

	rows, err := a.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	values, err := rows.Values()
	if err != nil {
		return nil, err
	}

	current := make(map[string]string, len(names))
	for i, name := range names {
		current[name] = formatValue(values[i+1])
	}
	return current, nil
}

// ============================================================================
// Helpers
// ============================================================================

// providedValues collects the canonical values of the record's provided
// fields, keyed by column header name. The key field is skipped; it is
// handled separately by the update applier.
func providedValues(v *core.RowValidator, specs []core.FieldSpec, keyField string, rec csv.Record) map[string]string {
	out := make(map[string]string)
	for _, spec := range specs {
		if spec.Name == keyField || !rec.Has(spec.Name) {
			continue
		}
		val := canonicalValue(v.NormalizedValue(rec, spec), spec)
		if val == "" {
			continue
		}
		out[spec.Name] = val
	}
	return out
}

// canonicalValue converts a normalized raw value into the string form the
// database would echo back, so previews diff cleanly against stored rows.
func canonicalValue(raw string, spec core.FieldSpec) string {
	if raw == "" {
		return ""
	}
	switch spec.Type {
	case core.FieldBool:
		if b := core.ToPgBool(raw); b.Valid {
			return strconv.FormatBool(b.Bool)
		}
	case core.FieldInt:
		if n := core.ToPgInt4(raw); n.Valid {
			return strconv.FormatInt(int64(n.Int32), 10)
		}
	case core.FieldUUID:
		if u := core.ToPgUUID(raw); u.Valid {
			return core.PgUUIDToString(u)
		}
	}
	return raw
}

// sqlValue converts a normalized raw value to its database parameter.
// Empty values become NULL.
func sqlValue(raw string, spec core.FieldSpec) any {
	if raw == "" {
		return nil
	}
	switch spec.Type {
	case core.FieldNumeric:
		return core.ToPgNumeric(raw)
	case core.FieldDate:
		return core.ToPgDate(raw)
	case core.FieldBool:
		return core.ToPgBool(raw)
	case core.FieldInt:
		return core.ToPgInt4(raw)
	case core.FieldUUID:
		return core.ToPgUUID(raw)
	default:
		return core.ToPgText(raw)
	}
}

// formatValue renders a database value the way canonicalValue renders CSV
// input, so the two sides of a diff compare byte for byte.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case [16]byte:
		return core.PgUUIDToString(pgtype.UUID{Bytes: val, Valid: true})
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// changedColumns lists the provided columns whose incoming value differs
// from what is stored, sorted for stable output.
func changedColumns(current, incoming map[string]string) []string {
	var changed []string
	for name, want := range incoming {
		if current[name] != want {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}

// dbErrorMessage renders a database error for a row outcome. Known error
// shapes get the support-coded message; anything else surfaces verbatim.
func dbErrorMessage(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}

func buildInsertQuery(table string, cols []string) string {
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		quoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "),
	)
}

func buildUpdateQuery(table string, cols []string) string {
	sets := make([]string, 0, len(cols)+1)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", quoteIdentifier(col), i+1))
	}
	sets = append(sets, "updated_at = now()")
	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d",
		quoteIdentifier(table),
		strings.Join(sets, ", "),
		len(cols)+1,
	)
}
