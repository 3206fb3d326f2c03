package services

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/matching"
	"github.com/ekaya-inc/synmap/pkg/models"
)

// DefaultThreshold is the minimum similarity score used by interactive mapping.
const DefaultThreshold = 70

// AutoMapper proposes an attribute to field mapping for one class and one layer.
type AutoMapper interface {
	// Map assigns each attribute, in order, the best-scoring layer field not
	// already taken by an earlier attribute. Attributes with no field scoring
	// at least threshold stay unmapped. A nil synonym table means no synonyms.
	Map(attributes []string, fields models.FieldSet, synonyms *matching.SynonymTable, threshold int) (*models.AttributeMapping, error)
}

type autoMapper struct {
	scorer matching.Scorer
	logger *zap.Logger
}

// NewAutoMapper creates an auto-mapper backed by scorer.
// If logger is nil, a no-op logger is used.
func NewAutoMapper(scorer matching.Scorer, logger *zap.Logger) AutoMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &autoMapper{
		scorer: scorer,
		logger: logger,
	}
}

// ValidateThreshold checks that threshold is a score in [0,100].
func ValidateThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: got %d", apperrors.ErrInvalidThreshold, threshold)
	}
	return nil
}

// fieldScore is a normalized layer field that cleared the threshold.
type fieldScore struct {
	normalized string
	score      int
	position   int
}

func (m *autoMapper) Map(attributes []string, fields models.FieldSet, synonyms *matching.SynonymTable, threshold int) (*models.AttributeMapping, error) {
	if m.scorer == nil {
		return nil, fmt.Errorf("%w: no similarity scorer available", apperrors.ErrDependencyMissing)
	}
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	// Normalized fields and the first position of each normalized text.
	normalized := make([]string, len(fields))
	firstPosition := make(map[string]int, len(fields))
	for i, field := range fields {
		normalized[i] = matching.Normalize(field)
		if _, ok := firstPosition[normalized[i]]; !ok {
			firstPosition[normalized[i]] = i
		}
	}

	mapping := models.NewAttributeMapping(attributes)
	used := make(map[string]bool)

	for _, attr := range mapping.Attributes() {
		ranked := m.rankFields(candidatesFor(attr, synonyms), normalized, firstPosition, threshold)

		for _, fs := range ranked {
			if used[fs.normalized] {
				continue
			}
			used[fs.normalized] = true
			mapping.Set(attr, fields[fs.position])
			m.logger.Debug("Mapped attribute",
				zap.String("attribute", attr),
				zap.String("field", fields[fs.position]),
				zap.Int("score", fs.score))
			break
		}
	}

	m.logger.Debug("Auto-mapping complete",
		zap.Int("attributes", len(mapping.Attributes())),
		zap.Int("fields", len(fields)),
		zap.Int("mapped", mapping.MappedCount()),
		zap.Int("threshold", threshold))

	return mapping, nil
}

// candidatesFor returns the normalized attribute followed by its normalized synonyms.
func candidatesFor(attr string, synonyms *matching.SynonymTable) []string {
	alternates := synonyms.SynonymsOf(attr)
	candidates := make([]string, 0, 1+len(alternates))
	candidates = append(candidates, matching.Normalize(attr))
	for _, syn := range alternates {
		candidates = append(candidates, matching.Normalize(syn))
	}
	return candidates
}

// rankFields keeps, per normalized field, the best score any candidate reaches
// at or above threshold, ordered by score descending then layer-field order.
func (m *autoMapper) rankFields(candidates, normalized []string, firstPosition map[string]int, threshold int) []fieldScore {
	best := make(map[string]int)
	for _, candidate := range candidates {
		for _, match := range m.scorer.BestMatches(candidate, normalized) {
			if match.Score < threshold {
				continue
			}
			if prev, ok := best[match.Target]; !ok || match.Score > prev {
				best[match.Target] = match.Score
			}
		}
	}

	ranked := make([]fieldScore, 0, len(best))
	for norm, score := range best {
		ranked = append(ranked, fieldScore{
			normalized: norm,
			score:      score,
			position:   firstPosition[norm],
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].position < ranked[j].position
	})
	return ranked
}

// Ensure autoMapper implements AutoMapper at compile time.
var _ AutoMapper = (*autoMapper)(nil)
