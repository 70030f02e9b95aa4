package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pable/zeratul/internal/model"
)

// MetricAggregate returns the total and average of one per-player counter,
// optionally restricted to a race and to winning or losing teams. The column
// comes from the closed Metric set, never from caller text.
func (db *DB) MetricAggregate(ctx context.Context, m model.Metric, f model.MetricFilter) (model.MetricAggregate, error) {
	if !m.Valid() {
		return model.MetricAggregate{}, fmt.Errorf("unknown metric %d", int(m))
	}
	col := "gp." + m.Key()

	q := sq.Select(
		fmt.Sprintf("COALESCE(SUM(%s), 0)", col),
		fmt.Sprintf("COALESCE(AVG(%s), 0)", col),
	).From("game_players gp")
	if f.Race != "" {
		q = q.Where(sq.Eq{"gp.race": string(f.Race)})
	}
	if f.Result != "" {
		q = q.Join("game_teams gt ON gt.id = gp.team_id").Where(sq.Eq{"gt.result": string(f.Result)})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.MetricAggregate{}, fmt.Errorf("build metric query: %w", err)
	}
	var out model.MetricAggregate
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&out.Total, &out.Average); err != nil {
		return model.MetricAggregate{}, fmt.Errorf("metric %s: %w", m, err)
	}
	return out, nil
}
