package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Schedule is one event day with its time window.
type Schedule struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	EventDate string `json:"event_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// NewSchedule holds the fields of a schedule to create. An empty StartTime
// or EndTime defaults to the start or end of the event date.
type NewSchedule struct {
	Name      string
	EventDate string
	StartTime string
	EndTime   string
}

const scheduleColumns = "id, name, event_date, start_time, end_time"

var scheduleFields = map[string]string{
	"name":       "name",
	"event_date": "event_date",
	"start_time": "start_time",
	"end_time":   "end_time",
}

// DayBounds returns the first and last second of date in TimeLayout.
func DayBounds(date string) (start, end string, err error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", "", &ValidationError{Msg: fmt.Sprintf("invalid event_date %q", date)}
	}
	start = d.Format(TimeLayout)
	end = d.Add(24*time.Hour - time.Second).Format(TimeLayout)
	return start, end, nil
}

// ListSchedules returns schedules ordered by start time, then id.
func (s *Store) ListSchedules(ctx context.Context) ([]Schedule, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+scheduleColumns+" FROM schedules ORDER BY start_time, id")
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Schedule{}
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("list schedules: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// GetSchedule returns the schedule with id or ErrNotFound.
func (s *Store) GetSchedule(ctx context.Context, id int64) (Schedule, error) {
	return getSchedule(ctx, s.db, id)
}

func getSchedule(ctx context.Context, q querier, id int64) (Schedule, error) {
	sc, err := scanSchedule(q.QueryRowContext(ctx, "SELECT "+scheduleColumns+" FROM schedules WHERE id = ?", id))
	if err != nil {
		return Schedule{}, notFound(err)
	}
	return sc, nil
}

// CreateSchedule inserts a schedule and returns it with its id.
func (s *Store) CreateSchedule(ctx context.Context, in NewSchedule) (Schedule, error) {
	start, end, err := DayBounds(in.EventDate)
	if err != nil {
		return Schedule{}, err
	}
	if in.StartTime != "" {
		start = in.StartTime
	}
	if in.EndTime != "" {
		end = in.EndTime
	}
	if err := timeRange(start, end); err != nil {
		return Schedule{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO schedules (name, event_date, start_time, end_time) VALUES (?, ?, ?, ?)",
		in.Name, in.EventDate, start, end,
	)
	if err != nil {
		return Schedule{}, fmt.Errorf("create schedule: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Schedule{}, fmt.Errorf("create schedule: %w", err)
	}
	return Schedule{ID: id, Name: in.Name, EventDate: in.EventDate, StartTime: start, EndTime: end}, nil
}

// UpdateSchedule applies changes and returns the updated schedule. The
// resulting start time must precede the end time. Empty changes return the
// schedule unchanged.
func (s *Store) UpdateSchedule(ctx context.Context, id int64, c Changes) (Schedule, error) {
	if len(c) == 0 {
		return s.GetSchedule(ctx, id)
	}

	var out Schedule
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cur, err := getSchedule(ctx, tx, id)
		if err != nil {
			return err
		}
		start, end := cur.StartTime, cur.EndTime
		if v, ok := c["start_time"].(string); ok {
			start = v
		}
		if v, ok := c["end_time"].(string); ok {
			end = v
		}
		if err := timeRange(start, end); err != nil {
			return err
		}
		if v, ok := c["event_date"].(string); ok {
			if _, err := time.Parse(DateLayout, v); err != nil {
				return &ValidationError{Msg: fmt.Sprintf("invalid event_date %q", v)}
			}
		}

		if err := update(ctx, tx, "schedules", id, scheduleFields, c); err != nil {
			return err
		}
		out, err = getSchedule(ctx, tx, id)
		return err
	})
	return out, err
}

// DeleteSchedule removes a schedule together with its tasks.
func (s *Store) DeleteSchedule(ctx context.Context, id int64) error {
	return remove(ctx, s.db, "schedules", id)
}

func scanSchedule(sc scanner) (Schedule, error) {
	var out Schedule
	if err := sc.Scan(&out.ID, &out.Name, &out.EventDate, &out.StartTime, &out.EndTime); err != nil {
		return Schedule{}, err
	}
	return out, nil
}
