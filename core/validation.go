// Copyright 2026 Podgraph Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"slices"
	"time"
)

// ValidateEntity validates an Entity according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Type must be one of EntityTypes
//
// NOT validated:
//   - Props (type-specific, optional)
//   - ID (0 means "derive from tuple" at the storage layer)
func ValidateEntity(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrInvalidEntity)
	}

	if entity.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, ErrEmptyName)
	}

	if !slices.Contains(EntityTypes, entity.Type) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidEntity, ErrUnknownEntityType, entity.Type)
	}

	return nil
}

// ValidateRelationship validates a Relationship according to domain rules.
//
// Validation rules:
//   - Type must be one of RelationshipTypes
//   - FromId and ToId must be non-zero
func ValidateRelationship(rel *Relationship) error {
	if rel == nil {
		return fmt.Errorf("%w: relationship is nil", ErrInvalidRelationship)
	}

	if !slices.Contains(RelationshipTypes, rel.Type) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidRelationship, ErrUnknownRelationshipType, rel.Type)
	}

	if rel.FromId == 0 || rel.ToId == 0 {
		return fmt.Errorf("%w: endpoints must be non-zero", ErrInvalidRelationship)
	}

	return nil
}

// ValidatePassage validates a Passage according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - StartTime must not exceed EndTime
//   - PublishDate, when set, must be YYYY-MM-DD
//
// NOT validated (populated by the ingestion pipeline):
//   - Vector (can be empty until the embedding worker runs)
//   - ID (0 means "derive from video id and start time" at the storage layer)
func ValidatePassage(passage *Passage) error {
	if passage == nil {
		return fmt.Errorf("%w: passage is nil", ErrInvalidPassage)
	}

	if passage.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrEmptyText)
	}

	if passage.StartTime > passage.EndTime {
		return fmt.Errorf("%w: %w", ErrInvalidPassage, ErrInvalidTimeRange)
	}

	if passage.PublishDate != "" && !IsValidDate(passage.PublishDate) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidPassage, ErrInvalidDate, passage.PublishDate)
	}

	return nil
}

// ValidateFilters validates query filters.
// Date bounds, when set, must be YYYY-MM-DD and StartDate must not be after
// EndDate. A nil filter set is valid.
func ValidateFilters(filters *Filters) error {
	if filters == nil {
		return nil
	}

	for _, date := range []string{filters.StartDate, filters.EndDate} {
		if date != "" && !IsValidDate(date) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidFilters, ErrInvalidDate, date)
		}
	}

	if filters.HasDateRange() && filters.StartDate > filters.EndDate {
		return fmt.Errorf("%w: start date after end date", ErrInvalidFilters)
	}

	return nil
}

// IsValidDate reports whether date parses as YYYY-MM-DD.
func IsValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
