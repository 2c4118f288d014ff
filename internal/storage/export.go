package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	RunMetadata
	Frames []Frame `json:"frames"`
}

func WriteJSON(w io.Writer, meta *RunMetadata, frames []Frame) error {
	data := ExportData{RunMetadata: *meta, Frames: frames}
	if data.Frames == nil {
		data.Frames = []Frame{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, meta *RunMetadata, frames []Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, meta, frames); err != nil {
		return err
	}
	return file.Close()
}
