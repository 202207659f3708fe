package services

import (
	"sort"

	"github.com/aalfraarauscher/loan-app-admin/internal/models"
)

// PayloadCompiler assembles one delivery payload from an integration's field
// mappings and a resolved application record.
type PayloadCompiler struct {
	resolver *FieldResolver
	catalog  *TransformerCatalog
}

// NewPayloadCompiler creates a new payload compiler
func NewPayloadCompiler(resolver *FieldResolver, catalog *TransformerCatalog) *PayloadCompiler {
	return &PayloadCompiler{
		resolver: resolver,
		catalog:  catalog,
	}
}

// Compile applies the mappings in ascending display order and returns the
// payload object. A required mapping that still resolves to no value after
// defaulting fails the whole compilation: a partial payload silently accepted
// downstream is worse than a loud, attributable failure here.
func (c *PayloadCompiler) Compile(record *models.ApplicationRecord, mappings []*models.FieldMapping) (models.JSONMap, error) {
	ordered := make([]*models.FieldMapping, len(mappings))
	copy(ordered, mappings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	payload := make(models.JSONMap)

	for _, mapping := range ordered {
		var value interface{}
		var present bool

		if mapping.IsStatic() {
			// static uses the default value verbatim, ignoring the record
			if mapping.HasDefault {
				value, present = mapping.DefaultValue, true
			}
		} else {
			value, present = c.resolver.Resolve(record, mapping.SourcePath)
			if !present && mapping.HasDefault {
				value, present = mapping.DefaultValue, true
			}
		}

		value, present = c.catalog.Apply(mapping.Transformer, value, present, record)
		if !present && mapping.HasDefault {
			// A transformer degrading on malformed input falls back to the
			// default, the same as an absent source.
			value, present = mapping.DefaultValue, true
		}

		if !present {
			if mapping.Required {
				return nil, &CompileError{TargetKey: mapping.TargetKey, SourcePath: mapping.SourcePath}
			}
			continue
		}

		setNestedValue(payload, mapping.TargetKey, value)
	}

	return payload, nil
}

// setNestedValue writes a value under a dotted target key, creating nested
// objects as needed. A later mapping targeting the same key overwrites the
// earlier value (last write wins in display order).
func setNestedValue(payload map[string]interface{}, targetKey string, value interface{}) {
	segments := splitTargetKey(targetKey)
	current := payload
	for i, segment := range segments {
		if i == len(segments)-1 {
			current[segment] = value
			return
		}
		next, ok := current[segment].(map[string]interface{})
		if !ok {
			// Overwrites a scalar previously written at this segment
			next = make(map[string]interface{})
			current[segment] = next
		}
		current = next
	}
}

func splitTargetKey(targetKey string) []string {
	var segments []string
	start := 0
	for i := 0; i < len(targetKey); i++ {
		if targetKey[i] == '.' {
			if i > start {
				segments = append(segments, targetKey[start:i])
			}
			start = i + 1
		}
	}
	if start < len(targetKey) {
		segments = append(segments, targetKey[start:])
	}
	if len(segments) == 0 {
		segments = []string{targetKey}
	}
	return segments
}
