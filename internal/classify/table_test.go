// EcoEye - Wildlife Threat Detection and Alerting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ecoeye

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/ecoeye/internal/models"
)

func TestDefaultTableCoverage(t *testing.T) {
	table := DefaultTable(nil)

	// 1 person + 10 ranger + 10 weapon + 3 suspicious classes.
	require.Len(t, table, 24)

	assert.Equal(t, models.LabelPoacher, table[0].Label)
	for _, id := range []int{14, 23} {
		assert.Equal(t, models.LabelRanger, table[id].Label, "class %d", id)
	}
	for _, id := range []int{25, 43, 76} {
		assert.Equal(t, models.LabelWeapon, table[id].Label, "class %d", id)
	}
	for _, id := range []int{63, 73, 74} {
		assert.Equal(t, models.LabelSuspicious, table[id].Label, "class %d", id)
	}

	for id, entry := range table {
		assert.Equal(t, defaultMinConfidence, entry.MinConfidence, "class %d", id)
	}
}

func TestDefaultTableOverrides(t *testing.T) {
	table := DefaultTable(map[string]float64{
		"weapon":  0.3,
		"poacher": 0.5,
	})

	assert.Equal(t, 0.5, table[0].MinConfidence)
	for _, id := range weaponClasses {
		assert.Equal(t, 0.3, table[id].MinConfidence, "class %d", id)
	}
	// Unmentioned labels keep the default floor.
	for _, id := range rangerClasses {
		assert.Equal(t, defaultMinConfidence, table[id].MinConfidence, "class %d", id)
	}
	for _, id := range suspiciousClasses {
		assert.Equal(t, defaultMinConfidence, table[id].MinConfidence, "class %d", id)
	}
}

func TestDefaultTableIgnoresUnknownOverrideKeys(t *testing.T) {
	table := DefaultTable(map[string]float64{"dragon": 0.9})
	require.Len(t, table, 24)
	for id, entry := range table {
		assert.Equal(t, defaultMinConfidence, entry.MinConfidence, "class %d", id)
	}
}
