// Package expio reads and writes the experiment datasets: simulated state
// traces, reach-tube rectangles, waypoint path datasets, and obstacle
// layouts. All files are CSV with deterministic headers.
package expio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/reach"
)

// SaveStates writes one state per row with header dim0..dimN-1.
func SaveStates(path string, states [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("expio: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(states) == 0 {
		w.Flush()
		return w.Error()
	}

	header := make([]string, len(states[0]))
	for d := range header {
		header[d] = fmt.Sprintf("dim%d", d)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, s := range states {
		rec := make([]string, len(s))
		for d, v := range s {
			rec[d] = formatFloat(v)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// SaveRects writes timed rectangles with header rect_time,min0,max0,...
func SaveRects(path string, rects []reach.TimedRect) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("expio: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(rects) == 0 {
		w.Flush()
		return w.Error()
	}

	if err := w.Write(rectHeader(rects[0].Rect.NumDims(), false)); err != nil {
		return err
	}
	for _, r := range rects {
		if err := w.Write(rectRecord(r, nil)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// SaveTubes writes one time-indexed reach tube per query with header
// time,rect_time,min0,max0,...
func SaveTubes(path string, tubes [][]reach.TimedRect) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("expio: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	dims := 0
	for _, tube := range tubes {
		if len(tube) > 0 {
			dims = tube[0].Rect.NumDims()
			break
		}
	}
	if dims == 0 {
		w.Flush()
		return w.Error()
	}

	if err := w.Write(rectHeader(dims, true)); err != nil {
		return err
	}
	for i, tube := range tubes {
		idx := strconv.Itoa(i)
		for _, r := range tube {
			if err := w.Write(rectRecord(r, []string{idx})); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func rectHeader(dims int, withTubeIndex bool) []string {
	var header []string
	if withTubeIndex {
		header = append(header, "time")
	}
	header = append(header, "rect_time")
	for d := 0; d < dims; d++ {
		header = append(header, fmt.Sprintf("min%d", d), fmt.Sprintf("max%d", d))
	}
	return header
}

func rectRecord(r reach.TimedRect, prefix []string) []string {
	rec := append([]string(nil), prefix...)
	rec = append(rec, formatFloat(r.Time))
	for _, dim := range r.Rect.Dims {
		rec = append(rec, formatFloat(dim.Min), formatFloat(dim.Max))
	}
	return rec
}

// LoadStates reads a state trace written by SaveStates.
func LoadStates(path string) ([][]float64, error) {
	records, err := readAll(path, true)
	if err != nil {
		return nil, err
	}
	states := make([][]float64, 0, len(records))
	for _, rec := range records {
		s := make([]float64, len(rec))
		for d, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("expio: bad state value %q: %w", field, err)
			}
			s[d] = v
		}
		states = append(states, s)
	}
	return states, nil
}

// LoadTubes reads a reach-tube file written by SaveTubes, regrouping rows
// by tube index.
func LoadTubes(path string) ([][]reach.TimedRect, error) {
	records, err := readAll(path, true)
	if err != nil {
		return nil, err
	}

	var tubes [][]reach.TimedRect
	for _, rec := range records {
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("expio: bad tube index %q: %w", rec[0], err)
		}
		tm, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("expio: bad rect_time %q: %w", rec[1], err)
		}
		dims := (len(rec) - 2) / 2
		r := geom.NewRect(dims)
		for d := 0; d < dims; d++ {
			min, err := strconv.ParseFloat(rec[2+2*d], 64)
			if err != nil {
				return nil, fmt.Errorf("expio: bad min%d %q: %w", d, rec[2+2*d], err)
			}
			max, err := strconv.ParseFloat(rec[3+2*d], 64)
			if err != nil {
				return nil, fmt.Errorf("expio: bad max%d %q: %w", d, rec[3+2*d], err)
			}
			r.Dims[d] = geom.NewInterval(min, max)
		}
		for idx >= len(tubes) {
			tubes = append(tubes, nil)
		}
		tubes[idx] = append(tubes[idx], reach.TimedRect{Time: tm, Rect: r})
	}
	return tubes, nil
}

// LoadPaths reads a waypoint path dataset with columns path_id,x,y,z and
// returns the paths grouped by id, in file order.
func LoadPaths(path string) ([][][3]float64, error) {
	records, err := readAll(path, true)
	if err != nil {
		return nil, err
	}

	var paths [][][3]float64
	var cur [][3]float64
	curID := 0
	for _, rec := range records {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("expio: bad path_id %q: %w", rec[0], err)
		}
		pt, err := parsePoint(rec[1:4])
		if err != nil {
			return nil, err
		}
		if id != curID {
			paths = append(paths, cur)
			cur = nil
			curID = id
		}
		cur = append(cur, pt)
	}
	if cur != nil {
		paths = append(paths, cur)
	}
	return paths, nil
}

// LoadObstacles reads obstacle centres, one (x, y) pair per row.
func LoadObstacles(path string) ([][2]float64, error) {
	records, err := readAll(path, true)
	if err != nil {
		return nil, err
	}
	centers := make([][2]float64, 0, len(records))
	for _, rec := range records {
		x, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("expio: bad obstacle x %q: %w", rec[0], err)
		}
		y, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("expio: bad obstacle y %q: %w", rec[1], err)
		}
		centers = append(centers, [2]float64{x, y})
	}
	return centers, nil
}

// LoadWallPoints reads headerless (x, y) wall points.
func LoadWallPoints(path string) ([][2]float64, error) {
	records, err := readAll(path, false)
	if err != nil {
		return nil, err
	}
	pts := make([][2]float64, 0, len(records))
	for _, rec := range records {
		x, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("expio: bad wall x %q: %w", rec[0], err)
		}
		y, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("expio: bad wall y %q: %w", rec[1], err)
		}
		pts = append(pts, [2]float64{x, y})
	}
	return pts, nil
}

func readAll(path string, header bool) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("expio: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("expio: parse %s: %w", path, err)
	}
	if header && len(records) > 0 {
		records = records[1:]
	}
	return records, nil
}

func parsePoint(fields []string) ([3]float64, error) {
	var pt [3]float64
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return pt, fmt.Errorf("expio: bad coordinate %q: %w", s, err)
		}
		pt[i] = v
	}
	return pt, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
