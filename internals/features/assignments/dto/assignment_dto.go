package dto

import (
	"fmt"
	"strconv"
	"time"

	templateDTO "district_platform/internals/features/forms/templates/dto"
)

type AssignRequest struct {
	DistrictUserIDs []int64 `json:"districtUserIds" validate:"required,min=1"`
}

// ValueInput is one (field_key, value) pair from the district form. The
// frontend is loose about value types, so anything JSON arrives here and is
// coerced to a string on save.
type ValueInput struct {
	FieldKey string `json:"field_key"`
	Value    any    `json:"value"`
}

// ValueString renders the submitted value the way it will be stored.
func (v ValueInput) ValueString() string {
	switch val := v.Value.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; keep integers free of ".000000"
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

type SaveValuesRequest struct {
	Values []ValueInput `json:"values"`
}

type SubmissionListItemDTO struct {
	ID               int64      `json:"id"`
	Status           string     `json:"status"`
	SentAt           *time.Time `json:"sent_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	TemplateName     string     `json:"template_name"`
	DistrictUsername string     `json:"district_username"`
	DistrictName     string     `json:"district_name"`
}

// ValueRowDTO is one ordered label/value row of a submission, the shape the
// admin detail view, the export and the notification email all consume.
type ValueRowDTO struct {
	FieldKey string `json:"field_key"`
	Label    string `json:"label"`
	Value    string `json:"value"`
}

type SubmissionDetailDTO struct {
	ID           int64         `json:"id"`
	Status       string        `json:"status"`
	SentAt       *time.Time    `json:"sent_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	TemplateName string        `json:"template_name"`
	DistrictName string        `json:"district_name"`
	Values       []ValueRowDTO `json:"values"`
}

type DistrictAssignmentListItemDTO struct {
	ID           int64      `json:"id"`
	Status       string     `json:"status"`
	SentAt       *time.Time `json:"sent_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	TemplateName string     `json:"template_name"`
}

type ValueKVDTO struct {
	FieldKey string `json:"field_key"`
	Value    string `json:"value"`
}

type DistrictAssignmentDetailDTO struct {
	ID           int64                  `json:"id"`
	TemplateName string                 `json:"template_name"`
	Status       string                 `json:"status"`
	SentAt       *time.Time             `json:"sent_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Fields       []templateDTO.FieldDTO `json:"fields"`
	Values       []ValueKVDTO           `json:"values"`
}

// SendResultDTO is the read-only payload handed to the notification sink
// after a successful state flip.
type SendResultDTO struct {
	DistrictName string        `json:"district_name"`
	TemplateName string        `json:"template_name"`
	SentAt       time.Time     `json:"sent_at"`
	Rows         []ValueRowDTO `json:"rows"`
}
