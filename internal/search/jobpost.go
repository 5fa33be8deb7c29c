package search

import (
	"encoding/json"
	"fmt"

	"github.com/helixir/job-board-service/internal/domain"
)

// DecodeJobPost maps a hit to a JobPostDTO and rejects documents that
// could not have been written by the job post service.
func DecodeJobPost(id string, source json.RawMessage) (domain.JobPostDTO, error) {
	dto, err := DecodeSource[domain.JobPostDTO](id, source)
	if err != nil {
		return dto, err
	}
	if dto.ID == "" {
		return dto, fmt.Errorf("job post hit %q has no id", id)
	}
	if !dto.WorkModel.IsValid() {
		return dto, fmt.Errorf("job post %s has invalid work model %q", dto.ID, dto.WorkModel)
	}
	return dto, nil
}
