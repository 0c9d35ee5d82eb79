// Package testutil provides shared fixtures for tests: hierarchy documents,
// timeline CSVs and helpers to put them on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// HierarchyYAML is a complete hierarchy document modelled on a real export:
// five prefixed groups, one mixed group for sign-routed categories and a
// small category tree.
const HierarchyYAML = `version: "2.1"
category_column: "Categorías"
groups:
  necesario:
    code: N
    prefix: "N-"
    display_name: Necesario
    description: Vivienda, salud, alimentación
    color: "#E74C3C"
    kind: expense
    tier: essential
  basico:
    code: B
    prefix: "B-"
    display_name: Básico
    color: "#F39C12"
    kind: expense
    tier: basic
  discrecional:
    code: D
    prefix: "D-"
    display_name: Discrecional
    color: "#9B59B6"
    kind: expense
    tier: discretionary
  ingreso_regular:
    code: R
    prefix: "R-"
    display_name: Ingreso Regular
    color: "#27AE60"
    kind: income
  ingreso_ocasional:
    code: O
    prefix: "O-"
    display_name: Ingreso Ocasional
    color: "#2ECC71"
    kind: income
  especiales:
    code: S
    prefix: null
    display_name: Especiales
    color: "#95A5A6"
    kind: mixed
classification_rules:
  - kind: prefix
    priority: 1
    patterns:
      - prefix: "N-"
        group_id: necesario
      - prefix: "B-"
        group_id: basico
      - prefix: "D-"
        group_id: discrecional
      - prefix: "R-"
        group_id: ingreso_regular
      - prefix: "O-"
        group_id: ingreso_ocasional
category_hierarchy:
  necesario:
    N-Vivienda:
      subcategories: [Alquiler, Expensas]
    N-Alimentación:
      subcategories: []
  basico:
    B-Transporte:
      subcategories: [Combustible, Mantenimiento Auto]
  discrecional:
    D-Salidas:
      subcategories: []
  especiales:
    Inversiones:
      subcategories: []
contextual_categories:
  Otros:
    classify_by: amount_sign
    if_positive:
      group_id: ingreso_ocasional
      category: Otros Ingresos
    if_negative:
      group_id: discrecional
      category: Otros Gastos
summary_rows: [Gastos, Ingresos, Ganancia Neta]
ideal_mix:
  essential: 50
  basic: 30
  discretionary: 20
currency_format:
  symbol: "$"
  thousands_sep: "."
  decimal_sep: ","
  decimal_places: 0
  symbol_position: before
`

// MinimalHierarchyYAML maps N- to an essential expense group and R- to an
// income group, with no category tree.
const MinimalHierarchyYAML = `groups:
  necesario:
    prefix: "N-"
    display_name: Necesario
    kind: expense
    tier: essential
  ingreso_regular:
    prefix: "R-"
    display_name: Ingreso Regular
    kind: income
classification_rules:
  - kind: prefix
    priority: 1
    patterns:
      - prefix: "N-"
        group_id: necesario
      - prefix: "R-"
        group_id: ingreso_regular
category_hierarchy: {}
`

// TimelineCSV is a three-month wide timeline including aggregate rows,
// parent total rows and a sign-routed category.
const TimelineCSV = `Categorías,2024-01,2024-02,2024-03
Gastos,-400000,-380000,-410000
Ingresos,600000,600000,650000
Ganancia Neta,200000,220000,240000
N-Vivienda,-200000,-200000,-200000
Alquiler,-180000,-180000,-180000
Expensas,-20000,-20000,-20000
N-Alimentación,-100000,-90000,-110000
Combustible,-40000,-30000,-45000
D-Salidas,-60000,-60000,-55000
R-Sueldo,600000,600000,600000
O-Freelance,,,50000
Otros,-5000,8000,
Regalo Misterioso,-1000,,
`

// WriteFile writes content under the test's temp dir and returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
