package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"homecal/internal/layout"
	appLog "homecal/internal/log"
	"homecal/internal/model"
)

// eventDTO is the JSON-friendly view of a single event instance.
type eventDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Location  string    `json:"location,omitempty"`
	Color     string    `json:"color,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	Household bool      `json:"household"`
	AllDay    bool      `json:"all_day"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// multiDayDTO is one positioned multi-day bar.
type multiDayDTO struct {
	Event    eventDTO `json:"event"`
	StartCol int      `json:"start_col"`
	EndCol   int      `json:"end_col"`
	Row      int      `json:"row"`
}

// weekBandDTO is the multi-day band of one week strip.
type weekBandDTO struct {
	WeekIndex  int           `json:"week_index"`
	Placements []multiDayDTO `json:"placements"`
	Rows       int           `json:"rows"`
	Hidden     int           `json:"hidden"`
}

// timedDTO is one positioned hour-grid event.
type timedDTO struct {
	Event    eventDTO `json:"event"`
	Top      float64  `json:"top"`
	Height   float64  `json:"height"`
	Col      int      `json:"col"`
	ColCount int      `json:"col_count"`
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Events          []eventDTO `json:"events"`
	TruncatedUIDs   []string   `json:"truncated_uids,omitempty"`
	RangeStart      time.Time  `json:"range_start"`
	RangeEnd        time.Time  `json:"range_end"`
	DisplayTimeZone string     `json:"display_timezone"`
	WeekStart       string     `json:"week_start"`
}

// monthResponse is the JSON response shape for /api/layout/month.
type monthResponse struct {
	Days      []string      `json:"days"`
	Weeks     []weekBandDTO `json:"weeks"`
	DayEvents [][]eventDTO  `json:"day_events"`
	WeekStart string        `json:"week_start"`
}

// weekResponse is the JSON response shape for /api/layout/week.
type weekResponse struct {
	Days    []string     `json:"days"`
	AllDay  weekBandDTO  `json:"all_day"`
	Columns [][]timedDTO `json:"columns"`
}

// dayResponse is the JSON response shape for /api/layout/day.
type dayResponse struct {
	Day    string      `json:"day"`
	AllDay weekBandDTO `json:"all_day"`
	Timed  []timedDTO  `json:"timed"`
}

// handleEvents returns expanded event instances for the configured sources
// within a requested time window.
//
// GET /api/events?days=7&backfill=1
//   - days:     how many future days to include (default 7)
//   - backfill: how many past days to include (default 1)
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, func() (any, error) {
		q := r.URL.Query()
		days := parseIntDefault(q.Get("days"), 7)
		if days <= 0 {
			days = 7
		}
		backfill := parseIntDefault(q.Get("backfill"), 1)
		if backfill < 0 {
			backfill = 0
		}

		cfg := s.config()
		loc := cfg.Location()
		now := time.Now().In(loc)
		rangeStart := now.AddDate(0, 0, -backfill)
		rangeEnd := now.AddDate(0, 0, days)

		events, truncated, err := s.load(r.Context(), rangeStart, rangeEnd, loc)
		if err != nil {
			return nil, err
		}

		dtos := make([]eventDTO, 0, len(events))
		for _, ev := range events {
			dtos = append(dtos, toEventDTO(ev))
		}
		return eventsResponse{
			Events:          dtos,
			TruncatedUIDs:   truncated,
			RangeStart:      rangeStart,
			RangeEnd:        rangeEnd,
			DisplayTimeZone: loc.String(),
			WeekStart:       cfg.WeekStart,
		}, nil
	})
}

// handleLayoutMonth returns the month view render plan.
//
// GET /api/layout/month?year=2024&month=1 (defaults: current month)
func (s *Server) handleLayoutMonth(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, func() (any, error) {
		cfg := s.config()
		loc := cfg.Location()
		now := time.Now().In(loc)

		q := r.URL.Query()
		year := parseIntDefault(q.Get("year"), now.Year())
		month := time.Month(parseIntDefault(q.Get("month"), int(now.Month())))
		if month < time.January || month > time.December {
			month = now.Month()
		}

		lcfg := s.layoutConfig()
		vr := layout.MonthRange(year, month, loc, lcfg.WeekStart)
		events, _, err := s.load(r.Context(), vr.Start(), vr.End(), loc)
		if err != nil {
			return nil, err
		}

		plan := layout.MonthView(events, year, month, loc, lcfg)
		resp := monthResponse{
			Days:      formatDays(plan.Range.Days()),
			Weeks:     make([]weekBandDTO, 0, len(plan.Weeks)),
			DayEvents: make([][]eventDTO, len(plan.DayEvents)),
			WeekStart: cfg.WeekStart,
		}
		for _, band := range plan.Weeks {
			resp.Weeks = append(resp.Weeks, toWeekBandDTO(band))
		}
		for i, bucket := range plan.DayEvents {
			resp.DayEvents[i] = toEventDTOs(bucket)
		}
		return resp, nil
	})
}

// handleLayoutWeek returns the week view render plan.
//
// GET /api/layout/week?date=2024-01-07 (default: today)
func (s *Server) handleLayoutWeek(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, func() (any, error) {
		loc := s.config().Location()
		anchor, err := parseDateParam(r.URL.Query().Get("date"), loc)
		if err != nil {
			return nil, errBadRequest
		}

		lcfg := s.layoutConfig()
		vr := layout.WeekRange(anchor, lcfg.WeekStart)
		events, _, err := s.load(r.Context(), vr.Start(), vr.End(), loc)
		if err != nil {
			return nil, err
		}

		plan := layout.WeekView(events, anchor, lcfg)
		resp := weekResponse{
			Days:    formatDays(plan.Range.Days()),
			AllDay:  toWeekBandDTO(plan.AllDay),
			Columns: make([][]timedDTO, len(plan.Columns)),
		}
		for i, col := range plan.Columns {
			resp.Columns[i] = toTimedDTOs(col)
		}
		return resp, nil
	})
}

// handleLayoutDay returns the day view render plan.
//
// GET /api/layout/day?date=2024-01-07 (default: today)
func (s *Server) handleLayoutDay(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, func() (any, error) {
		loc := s.config().Location()
		day, err := parseDateParam(r.URL.Query().Get("date"), loc)
		if err != nil {
			return nil, errBadRequest
		}

		lcfg := s.layoutConfig()
		vr := layout.DayRange(day)
		events, _, err := s.load(r.Context(), vr.Start(), vr.End(), loc)
		if err != nil {
			return nil, err
		}

		plan := layout.DayView(events, day, lcfg)
		return dayResponse{
			Day:    plan.Day.Format("2006-01-02"),
			AllDay: toWeekBandDTO(plan.AllDay),
			Timed:  toTimedDTOs(plan.Timed),
		}, nil
	})
}

// layoutConfig snapshots the layout knobs from the current config.
func (s *Server) layoutConfig() layout.Config {
	cfg := s.config()
	return layout.Config{
		HourUnit:  float64(cfg.Layout.HourUnit),
		MinHeight: float64(cfg.Layout.MinHeight),
		MaxRows:   cfg.Layout.MaxRows,
		WeekStart: cfg.FirstWeekday(),
	}
}

// errBadRequest marks handler failures caused by the request rather than the
// backend; serveCached maps it to a 400.
var errBadRequest = errBadRequestType{}

type errBadRequestType struct{}

func (errBadRequestType) Error() string { return "bad request" }

// serveCached runs build and writes its JSON result, reusing a cached body
// for identical request URLs within responseCacheTTL.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, build func() (any, error)) {
	key := r.URL.RequestURI()
	now := time.Now()

	s.cacheMu.Lock()
	entry, ok := s.cache[key]
	s.cacheMu.Unlock()
	if ok && now.Sub(entry.updatedAt) < responseCacheTTL {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(entry.body)
		return
	}

	v, err := build()
	if err != nil {
		if err == errBadRequest {
			writeError(w, http.StatusBadRequest, "invalid request parameters")
			return
		}
		appLog.Error("request handling failed", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	body, err := json.Marshal(v)
	if err != nil {
		appLog.Error("failed to marshal response", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.cacheMu.Lock()
	s.cache[key] = cacheEntry{body: body, updatedAt: now}
	s.cacheMu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func toEventDTO(ev model.Event) eventDTO {
	return eventDTO{
		ID:        ev.ID,
		Title:     ev.Title,
		Location:  ev.Location,
		Color:     ev.Color,
		Owner:     ev.Owner,
		Household: ev.Household,
		AllDay:    ev.AllDay,
		Start:     ev.Start,
		End:       ev.End,
	}
}

func toEventDTOs(events []model.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventDTO(ev))
	}
	return out
}

func toWeekBandDTO(band layout.WeekLayout) weekBandDTO {
	out := weekBandDTO{
		WeekIndex:  band.WeekIndex,
		Placements: make([]multiDayDTO, 0, len(band.Placements)),
		Rows:       band.Rows,
		Hidden:     band.Hidden,
	}
	for _, p := range band.Placements {
		out.Placements = append(out.Placements, multiDayDTO{
			Event:    toEventDTO(p.Event),
			StartCol: p.StartCol,
			EndCol:   p.EndCol,
			Row:      p.Row,
		})
	}
	return out
}

func toTimedDTOs(placements []layout.TimedPlacement) []timedDTO {
	out := make([]timedDTO, 0, len(placements))
	for _, p := range placements {
		out = append(out, timedDTO{
			Event:    toEventDTO(p.Event),
			Top:      p.Top,
			Height:   p.Height,
			Col:      p.Col,
			ColCount: p.ColCount,
		})
	}
	return out
}

func formatDays(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format("2006-01-02")
	}
	return out
}

func parseDateParam(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
