package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/cablerouter/internal/model"
)

// SaveJob writes a routing job to a JSON file.
func SaveJob(path string, job model.Job) error {
	return writeJSON(path, job)
}

// LoadJob reads a routing job from a JSON file. Settings absent from the
// file keep their defaults.
func LoadJob(path string) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, err
	}

	job := model.NewJob()
	if err := json.Unmarshal(data, &job); err != nil {
		return model.Job{}, fmt.Errorf("failed to parse job file: %w", err)
	}
	if job.Cables == nil {
		job.Cables = []model.Cable{}
	}
	if err := job.Settings.Validate(); err != nil {
		return model.Job{}, err
	}
	return job, nil
}
