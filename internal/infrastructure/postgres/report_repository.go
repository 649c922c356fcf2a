package postgres

import (
	"context"
	"database/sql/driver"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/StockCount-api/internal/domain/entity"
	"github.com/jhoicas/StockCount-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

var procedureName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ReportRepo ejecuta las funciones de agregación (migración 002).
type ReportRepo struct {
	db Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(db Querier) *ReportRepo {
	return &ReportRepo{db: db}
}

// Aggregate llama a la función por nombre. Las funciones generales reciben
// (p_plant_id, p_material_type, p_search) y las FG (p_plant_id, p_search); las columnas del
// resultado se leen por nombre porque cada variante devuelve un subconjunto distinto.
func (r *ReportRepo) Aggregate(ctx context.Context, procedure string, params repository.AggregateParams) ([]entity.ReportRow, error) {
	if !procedureName.MatchString(procedure) {
		return nil, fmt.Errorf("report: nombre de procedimiento inválido %q", procedure)
	}
	ident := pgx.Identifier{procedure}.Sanitize()

	var (
		rows pgx.Rows
		err  error
	)
	if params.MaterialType != nil {
		rows, err = r.db.Query(ctx, fmt.Sprintf(`SELECT * FROM %s($1::uuid, $2, $3)`, ident),
			params.PlantID, *params.MaterialType, params.Search)
	} else {
		rows, err = r.db.Query(ctx, fmt.Sprintf(`SELECT * FROM %s($1::uuid, $2)`, ident),
			params.PlantID, params.Search)
	}
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", procedure, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []entity.ReportRow
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", procedure, err)
		}
		var row entity.ReportRow
		for i, fd := range fields {
			if err := assignReportColumn(&row, fd.Name, vals[i]); err != nil {
				return nil, fmt.Errorf("report %s: columna %s: %w", procedure, fd.Name, err)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("report %s: %w", procedure, err)
	}
	return out, nil
}

func assignReportColumn(row *entity.ReportRow, name string, v any) error {
	switch name {
	case "plant_code":
		row.PlantCode = asString(v)
	case "location_code":
		if v != nil {
			s := asString(v)
			row.LocationCode = &s
		}
	case "material_name":
		row.MaterialName = asString(v)
	case "entry_uom":
		row.EntryUOM = asString(v)
	case "status":
		if v != nil {
			s := asString(v)
			row.Status = &s
		}
	case "total_qty":
		d, err := asDecimal(v)
		if err != nil {
			return err
		}
		row.TotalQty = d
	case "total_pack":
		if v != nil {
			d, err := asDecimal(v)
			if err != nil {
				return err
			}
			row.TotalPack = &d
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// asDecimal acepta lo que devuelve pgx para NUMERIC (con o sin el codec de decimal) y enteros.
func asDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return t, nil
	case int64:
		return decimal.NewFromInt(t), nil
	case int32:
		return decimal.NewFromInt32(t), nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		return decimal.NewFromString(t)
	case driver.Valuer:
		raw, err := t.Value()
		if err != nil {
			return decimal.Zero, err
		}
		return asDecimal(raw)
	case fmt.Stringer:
		return decimal.NewFromString(t.String())
	}
	return decimal.Zero, fmt.Errorf("tipo no soportado %T", v)
}
