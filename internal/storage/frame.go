package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/choreo/internal/dynamo"
)

// Frame is one recorded sample of the three bodies.
type Frame struct {
	Frame  int                           `json:"frame"`
	Time   float64                       `json:"time"`
	Bodies [dynamo.NumBodies]dynamo.Body `json:"bodies"`
}

const columnsPerBody = 6

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeFrames(w io.Writer, frames []Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader()); err != nil {
		return err
	}

	row := make([]string, 0, 2+dynamo.NumBodies*columnsPerBody)
	for _, f := range frames {
		row = append(row[:0], strconv.Itoa(f.Frame), formatFloat(f.Time))
		for _, b := range f.Bodies {
			row = append(row,
				formatFloat(b.Position.X), formatFloat(b.Position.Y), formatFloat(b.Position.Z),
				formatFloat(b.Velocity.X), formatFloat(b.Velocity.Y), formatFloat(b.Velocity.Z),
			)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func parseFrame(record []string) (Frame, error) {
	want := 2 + dynamo.NumBodies*columnsPerBody
	if len(record) != want {
		return Frame{}, fmt.Errorf("expected %d columns, got %d", want, len(record))
	}

	var f Frame
	var err error
	if f.Frame, err = strconv.Atoi(record[0]); err != nil {
		return Frame{}, err
	}

	vals := make([]float64, len(record)-1)
	for i, s := range record[1:] {
		if vals[i], err = strconv.ParseFloat(s, 64); err != nil {
			return Frame{}, err
		}
	}

	f.Time = vals[0]
	for i := range f.Bodies {
		v := vals[1+i*columnsPerBody:]
		f.Bodies[i] = dynamo.Body{
			Position: dynamo.Vec(v[0], v[1], v[2]),
			Velocity: dynamo.Vec(v[3], v[4], v[5]),
		}
	}
	return f, nil
}

// Column extracts one scalar series from frames, e.g. the x coordinate of
// body 0.
func Column(frames []Frame, pick func(Frame) float64) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = pick(f)
	}
	return out
}
