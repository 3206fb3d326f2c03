package services

import "github.com/ekaya-inc/synmap/pkg/models"

// MappingReview describes a manually edited mapping. Nothing in it blocks the
// mapping from being used; it is shown to the user before materialization.
type MappingReview struct {
	models.MappingSummary
	// UnknownAttributes are mapped attributes that are not part of the class.
	UnknownAttributes []string `json:"unknown_attributes"`
	// UnknownFields are chosen fields that the layer does not have.
	UnknownFields []string `json:"unknown_fields"`
}

// ReviewMapping lays edited out onto the class attributes and reports
// duplicates, unmapped attributes and references to unknown names.
// An empty attributes list takes the attributes from edited itself; an empty
// fields list skips the field check.
func ReviewMapping(attributes []string, fields models.FieldSet, edited *models.AttributeMapping) (*models.AttributeMapping, MappingReview) {
	if edited == nil {
		edited = models.NewAttributeMapping(nil)
	}
	if len(attributes) == 0 {
		attributes = edited.Attributes()
	}

	mapping := models.NewAttributeMapping(attributes)
	known := make(map[string]bool, len(attributes))
	for _, attr := range attributes {
		known[attr] = true
	}

	review := MappingReview{
		UnknownAttributes: []string{},
		UnknownFields:     []string{},
	}

	layerFields := make(map[string]bool, len(fields))
	for _, f := range fields {
		layerFields[f] = true
	}
	reportedFields := make(map[string]bool)

	for _, attr := range edited.Attributes() {
		field, ok := edited.Field(attr)
		if !known[attr] {
			if ok {
				review.UnknownAttributes = append(review.UnknownAttributes, attr)
			}
			continue
		}
		if !ok {
			continue
		}
		mapping.Set(attr, field)
		if len(fields) > 0 && !layerFields[field] && !reportedFields[field] {
			reportedFields[field] = true
			review.UnknownFields = append(review.UnknownFields, field)
		}
	}

	review.MappingSummary = mapping.Summary()
	return mapping, review
}
