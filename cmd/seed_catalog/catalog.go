package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	sheetMaterials = "materials"
	sheetLocations = "locations"
)

var validTypes = map[string]bool{"RM": true, "PM": true, "P5": true, "FG": true}

type material struct {
	ID, Name, Type, UOM string
}

type location struct {
	PlantCode, Code string
}

type mapping struct {
	PlantCode, LocationCode, MaterialID string
}

type catalog struct {
	Materials []material
	Locations []location
	Mappings  []mapping
}

var upper = cases.Upper(language.Und)

func code(s string) string { return upper.String(strings.TrimSpace(s)) }

// headerIndex ubica las columnas por nombre en la primera fila (sin distinguir mayúsculas).
func headerIndex(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	out := make(map[string]int, len(names))
	for _, n := range names {
		i, ok := idx[n]
		if !ok {
			return nil, fmt.Errorf("falta la columna %q", n)
		}
		out[n] = i
	}
	return out, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// parseCatalog normaliza códigos a mayúsculas, descarta filas incompletas o duplicadas
// y devuelve el catálogo ordenado para una salida estable.
func parseCatalog(matRows, locRows [][]string) (catalog, []string) {
	var cat catalog
	var warnings []string

	mats := map[string]material{}
	if len(matRows) > 0 {
		h, err := headerIndex(matRows[0], "material_id", "name", "type", "uom")
		if err != nil {
			warnings = append(warnings, sheetMaterials+": "+err.Error())
		} else {
			for n, r := range matRows[1:] {
				m := material{
					ID:   code(cell(r, h["material_id"])),
					Name: cell(r, h["name"]),
					Type: code(cell(r, h["type"])),
					UOM:  code(cell(r, h["uom"])),
				}
				if m.ID == "" || m.Name == "" {
					continue
				}
				if !validTypes[m.Type] {
					warnings = append(warnings, fmt.Sprintf("%s fila %d: tipo %q inválido", sheetMaterials, n+2, m.Type))
					continue
				}
				mats[m.ID] = m
			}
		}
	}

	locs := map[location]struct{}{}
	maps := map[mapping]struct{}{}
	if len(locRows) > 0 {
		h, err := headerIndex(locRows[0], "plant_code", "location_code", "material_id")
		if err != nil {
			warnings = append(warnings, sheetLocations+": "+err.Error())
		} else {
			for n, r := range locRows[1:] {
				l := location{PlantCode: code(cell(r, h["plant_code"])), Code: code(cell(r, h["location_code"]))}
				if l.PlantCode == "" || l.Code == "" {
					continue
				}
				locs[l] = struct{}{}
				matID := code(cell(r, h["material_id"]))
				if matID == "" {
					continue
				}
				if _, ok := mats[matID]; !ok {
					warnings = append(warnings, fmt.Sprintf("%s fila %d: material %s no existe", sheetLocations, n+2, matID))
					continue
				}
				maps[mapping{PlantCode: l.PlantCode, LocationCode: l.Code, MaterialID: matID}] = struct{}{}
			}
		}
	}

	for _, m := range mats {
		cat.Materials = append(cat.Materials, m)
	}
	sort.Slice(cat.Materials, func(i, j int) bool { return cat.Materials[i].ID < cat.Materials[j].ID })
	for l := range locs {
		cat.Locations = append(cat.Locations, l)
	}
	sort.Slice(cat.Locations, func(i, j int) bool {
		a, b := cat.Locations[i], cat.Locations[j]
		if a.PlantCode != b.PlantCode {
			return a.PlantCode < b.PlantCode
		}
		return a.Code < b.Code
	})
	for m := range maps {
		cat.Mappings = append(cat.Mappings, m)
	}
	sort.Slice(cat.Mappings, func(i, j int) bool {
		a, b := cat.Mappings[i], cat.Mappings[j]
		if a.PlantCode != b.PlantCode {
			return a.PlantCode < b.PlantCode
		}
		if a.LocationCode != b.LocationCode {
			return a.LocationCode < b.LocationCode
		}
		return a.MaterialID < b.MaterialID
	})
	return cat, warnings
}

// writeSQL emite upserts idempotentes. Las ubicaciones de plantas inexistentes no se insertan.
func writeSQL(w io.Writer, cat catalog, source string) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de materiales y ubicaciones\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", source)

	if len(cat.Materials) > 0 {
		b.WriteString("-- 1. Materiales\n")
		b.WriteString("INSERT INTO materials (material_id, material_name, material_type, entry_uom) VALUES\n")
		for i, m := range cat.Materials {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s')", escapeSQL(m.ID), escapeSQL(m.Name), m.Type, escapeSQL(m.UOM))
			b.WriteString(sep(i, len(cat.Materials)))
		}
		b.WriteString("ON CONFLICT (material_id) DO UPDATE SET material_name = EXCLUDED.material_name,\n")
		b.WriteString("  material_type = EXCLUDED.material_type, entry_uom = EXCLUDED.entry_uom, is_active = TRUE;\n\n")
	}

	if len(cat.Locations) > 0 {
		b.WriteString("-- 2. Ubicaciones\n")
		for _, l := range cat.Locations {
			b.WriteString("INSERT INTO locations (location_code, plant_id, plant_code)\n")
			fmt.Fprintf(&b, "SELECT '%s', plant_id, plant_code FROM plants WHERE plant_code = '%s'\n",
				escapeSQL(l.Code), escapeSQL(l.PlantCode))
			b.WriteString("ON CONFLICT (plant_code, location_code) DO NOTHING;\n")
		}
		b.WriteString("\n")
	}

	if len(cat.Mappings) > 0 {
		b.WriteString("-- 3. Materiales por ubicación\n")
		b.WriteString("INSERT INTO material_location_map (plant_code, location_code, material_id)\n")
		b.WriteString("SELECT v.plant_code, v.location_code, v.material_id FROM (VALUES\n")
		for i, m := range cat.Mappings {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s')", escapeSQL(m.PlantCode), escapeSQL(m.LocationCode), escapeSQL(m.MaterialID))
			if i < len(cat.Mappings)-1 {
				b.WriteString(",\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(") AS v (plant_code, location_code, material_id)\n")
		b.WriteString("JOIN locations l ON l.plant_code = v.plant_code AND l.location_code = v.location_code\n")
		b.WriteString("ON CONFLICT DO NOTHING;\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func sep(i, n int) string {
	if i < n-1 {
		return ",\n"
	}
	return "\n"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
